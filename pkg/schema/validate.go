package schema

import (
	"net/url"
	"strings"
)

// MaxResourceLength bounds incoming resources. Longer values are refused
// before any capability check runs.
const MaxResourceLength = 2048

// ValidateResource checks that a resource is usable as an open target: not
// blank, within bounds, parseable as a URL and carrying a scheme. All
// failures are reported together as an AggregateError.
func ValidateResource(resource string) error {
	if strings.TrimSpace(resource) == "" {
		return &AggregateError{Errors: []error{
			&ValidationError{Key: "resource", Reason: "required"},
		}}
	}

	var errs []error

	if strings.TrimSpace(resource) != resource {
		errs = append(errs, &ValidationError{
			Key:    "resource",
			Reason: "must not carry leading or trailing whitespace",
			Value:  resource,
		})
	}
	if len(resource) > MaxResourceLength {
		errs = append(errs, &ValidationError{
			Key:    "resource",
			Reason: "too long",
		})
	}

	u, err := url.Parse(strings.TrimSpace(resource))
	switch {
	case err != nil:
		errs = append(errs, &ValidationError{
			Key:    "resource",
			Reason: "not a valid URL: " + err.Error(),
			Value:  resource,
		})
	case u.Scheme == "":
		errs = append(errs, &ValidationError{
			Key:    "resource",
			Reason: "missing scheme",
			Value:  resource,
		})
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
