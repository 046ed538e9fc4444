// Package loam loads handler policies from a Loam document repository.
// Each markdown file describes one scheme's handler in its frontmatter;
// the body is free-form documentation for humans and the routes report.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"
)

// Policy is one loaded handler policy: frontmatter plus the document body.
type Policy struct {
	ID          string
	Scheme      string
	Command     string
	Args        []string
	Environment map[string]string
	Allow       []string
	Deny        []string
	Disabled    bool
	Description string
}

// Loader adapts the Loam library to a handler policy source.
type Loader struct {
	Repo *loam.TypedRepository[HandlerMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[HandlerMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// GetPolicy retrieves one policy by document ID (extension optional).
func (l *Loader) GetPolicy(ctx context.Context, id string) (Policy, error) {
	doc, err := l.Repo.Get(ctx, id)
	if err != nil {
		return Policy{}, fmt.Errorf("loam get failed for %s: %w", id, err)
	}
	return l.build(doc.ID, doc.Data, doc.Content), nil
}

// ListPolicies returns every enabled policy in the repository. Two documents
// claiming the same scheme is a configuration error, not a silent override.
func (l *Loader) ListPolicies(ctx context.Context) ([]Policy, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	policies := make([]Policy, 0, len(docs))

	for _, doc := range docs {
		p := l.build(doc.ID, doc.Data, doc.Content)
		if p.Disabled {
			continue
		}

		// Collision Detection
		if existingPath, ok := seen[p.Scheme]; ok {
			return nil, fmt.Errorf("collision detected: scheme '%s' is defined in both '%s' and '%s'", p.Scheme, existingPath, doc.ID)
		}
		seen[p.Scheme] = doc.ID
		policies = append(policies, p)
	}
	return policies, nil
}

func (l *Loader) build(docID string, meta HandlerMetadata, content string) Policy {
	scheme := meta.Scheme
	if scheme == "" {
		scheme = trimExtension(docID)
	}

	return Policy{
		ID:          trimExtension(docID),
		Scheme:      strings.ToLower(scheme),
		Command:     meta.Command,
		Args:        meta.Args,
		Environment: meta.Environment,
		Allow:       meta.Allow,
		Deny:        meta.Deny,
		Disabled:    meta.Disabled,
		Description: strings.TrimSpace(content),
	}
}

// Watch emits the ID of every policy document that changes on disk, until
// the context is canceled.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	// Watch all relevant files (recursive) using the doublestar pattern
	// supported by Loam.
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				// Loam debounces bursts itself. Pass the changed ID up the
				// chain, respecting context cancellation.
				select {
				case ch <- evt.ID:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
