package usher

import (
	"github.com/aretw0/usher/pkg/domain"
	"github.com/aretw0/usher/pkg/ports"
)

// Support is the capability verdict for a resource, decided before any
// attempt is made.
type Support string

const (
	// Supported means the capability accepts the resource and an attempt
	// may follow.
	Supported Support = "supported"
	// Unsupported means the capability declined. The cycle resolves to a
	// KindUnsupported outcome without ever invoking Open.
	Unsupported Support = "unsupported"
)

// Classifier turns raw capability signals into classified decisions. It has
// no side effects beyond consulting the capability it wraps.
type Classifier struct {
	opener ports.Opener
}

// NewClassifier creates a classifier over the given capability.
func NewClassifier(opener ports.Opener) *Classifier {
	return &Classifier{opener: opener}
}

// ClassifyCapability decides whether a resource may be attempted at all.
// A nil capability supports nothing.
func (c *Classifier) ClassifyCapability(resource string) Support {
	if c == nil || c.opener == nil || !c.opener.CanOpen(resource) {
		return Unsupported
	}
	return Supported
}

// ClassifyAttempt maps the result of one finished attempt onto outcome data:
// nil becomes an opened outcome, anything else open_failed with the error
// text as detail. Attempt problems are data for the host to render, never
// errors for the controller to propagate.
func ClassifyAttempt(resource string, err error) domain.Outcome {
	if err != nil {
		return domain.OpenFailed(resource, err)
	}
	return domain.Opened(resource)
}
