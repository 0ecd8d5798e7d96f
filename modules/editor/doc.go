// Package editor exposes the composer over HTTP.
//
// All JSON endpoints answer with the {data, meta, error} envelope. The live
// preview stream is a datastar SSE endpoint that patches a preview iframe
// whenever the session changes:
//
//	mod := editor.New(svc, editor.WithLogger(log))
//	r := editor.Router(editor.RouterOptions{
//		Editor: mod,
//		Health: httpserver.HealthHandler(log, time.Second, checks...),
//	})
package editor
