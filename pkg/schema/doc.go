// Package schema defines the wire-level request and response types shared
// by the HTTP and MCP surfaces, plus the validation applied to incoming
// resources before they reach the controller.
//
// Validation failures are aggregated: a request with several problems
// reports all of them at once instead of failing on the first.
//
// Basic usage:
//
//	req := schema.OpenRequest{Resource: "https://example.com"}
//	if err := req.Validate(); err != nil {
//	    for _, e := range schema.ValidationErrors(err) {
//	        // Handle each field failure
//	    }
//	}
//
// This package is designed to be transport-agnostic: the same types and
// checks back the REST API, the MCP tools and the CLI flags.
package schema
