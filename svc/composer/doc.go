// Package composer runs e-mail editing sessions.
//
// A session owns one document editor with its undo history and the id of the
// block selected in the canvas. Every change is published on the session's
// broadcast topic so open preview streams can re-render:
//
//	svc := composer.New(resolver, templates, storage,
//		composer.WithSender(sender),
//		composer.WithLogger(log),
//	)
//	st := svc.Create(ctx, nil)
//	b, _ := svc.AddBlock(ctx, st.ID, document.TypeImage)
//	html, _ := svc.Preview(ctx, st.ID)
//
// Sessions live in memory. Idle sessions are dropped by Sweep, which
// RunJanitor calls on an interval.
package composer
