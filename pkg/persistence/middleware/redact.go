package middleware

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/aretw0/usher/pkg/domain"
	"github.com/aretw0/usher/pkg/ports"
)

type redactJournal struct {
	next     ports.OutcomeJournal
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks credentials embedded
// in recorded resources: the URL userinfo is always stripped, and query
// parameters whose names match one of the patterns have their values
// replaced with "***". Reads pass through untouched, what was stored is
// already clean.
func NewRedactMiddleware(paramPatterns []string) Middleware {
	patterns := make([]*regexp.Regexp, len(paramPatterns))
	for i, p := range paramPatterns {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.OutcomeJournal) ports.OutcomeJournal {
		return &redactJournal{next: next, patterns: patterns}
	}
}

func (m *redactJournal) Record(ctx context.Context, out domain.Outcome) error {
	clean := redactResource(out.Resource, m.patterns)
	if clean != out.Resource {
		// The detail often embeds the resource (error texts do); keep it
		// consistent with the masked form.
		if out.Detail != "" {
			out.Detail = strings.ReplaceAll(out.Detail, out.Resource, clean)
		}
		out.Resource = clean
	}
	return m.next.Record(ctx, out)
}

func (m *redactJournal) Recent(ctx context.Context, limit int) ([]domain.Outcome, error) {
	return m.next.Recent(ctx, limit)
}

func (m *redactJournal) Last(ctx context.Context) (domain.Outcome, error) {
	return m.next.Last(ctx)
}

// Helpers

func redactResource(resource string, patterns []*regexp.Regexp) string {
	u, err := url.Parse(resource)
	if err != nil {
		return resource
	}

	changed := false
	if u.User != nil {
		u.User = url.User("***")
		changed = true
	}

	if u.RawQuery != "" && len(patterns) > 0 {
		q := u.Query()
		queryChanged := false
		for key := range q {
			for _, p := range patterns {
				if p.MatchString(key) {
					q.Set(key, "***")
					queryChanged = true
					break
				}
			}
		}
		if queryChanged {
			u.RawQuery = q.Encode()
			changed = true
		}
	}

	if !changed {
		return resource
	}
	return u.String()
}
