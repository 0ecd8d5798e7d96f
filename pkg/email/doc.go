// Package email sends rendered documents as test messages.
//
// Two senders implement EmailSender: a Postmark client for real delivery
// and DevSender, which writes each message as an HTML file plus a JSON
// metadata file into a file.Storage so it can be opened in a browser.
//
//	sender, err := email.New(cfg, storage)
//	err = sender.SendEmail(ctx, email.Message{
//		To:      "qa@example.com",
//		Subject: doc.TitleText,
//		HTML:    html,
//	})
package email
