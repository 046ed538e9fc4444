/*
Package policy provides a fluent builder for assembling opener routing
programmatically.

It lets hosts declare which schemes are handled by which openers, with
per-route host filters, instead of wiring a registry by hand. This is
particularly useful for embedding, unit tests and leveraging IDE
autocompletion over configuration files.

Example usage:

	package main

	import (
		"github.com/aretw0/usher/pkg/adapters/browser"
		"github.com/aretw0/usher/pkg/policy"
	)

	func main() {
		web, _ := browser.New()

		b := policy.New()

		b.Route("https").
			Use(web).
			Deny("internal.example.com")

		b.Route("http").
			Use(web).
			Allow("localhost", "127.0.0.1")

		// The resulting registry is a ports.Opener.
		opener, err := b.Build()
		_ = opener
		_ = err
		// ... pass opener to usher.New(...)
	}
*/
package policy
