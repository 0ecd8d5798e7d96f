// Package validator provides rule based validation for request payloads.
//
// Each rule pairs a check with the error it reports; Apply runs them all and
// returns ValidationErrors listing every failed field:
//
//	err := validator.Apply(
//		validator.RequiredString("name", req.Name),
//		validator.MaxLenString("name", req.Name, 200),
//		validator.ValidEmail("to", req.To),
//	)
package validator
