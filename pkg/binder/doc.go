// Package binder decodes HTTP requests into typed structs.
//
// JSON decodes a strict JSON body. String values are kept verbatim, so
// block HTML survives binding unchanged. Path fills fields tagged `path`
// from route parameters:
//
//	type updateBlock struct {
//		SessionID string  `path:"id"`
//		BlockID   string  `path:"blockID"`
//		Src       *string `json:"src"`
//	}
package binder
