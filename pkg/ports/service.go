package ports

import (
	"context"

	"github.com/aretw0/usher/pkg/domain"
)

// OpenService is the application-facing surface consumed by the transport
// adapters (HTTP, MCP) and the CLI. pkg/service provides the canonical
// implementation, built on the controller and the runner loop.
type OpenService interface {
	// Open runs one full cycle for the resource and returns its outcome.
	// The error channel is reserved for transport-level problems: context
	// cancellation, domain.ErrBusy while an attempt is outstanding, or
	// domain.ErrInvalidResource. Open failures arrive as outcome data.
	Open(ctx context.Context, resource string) (domain.Outcome, error)

	// Status returns the current pending state.
	Status(ctx context.Context) (domain.Request, error)

	// Recent returns recorded outcomes, newest first, up to limit.
	Recent(ctx context.Context, limit int) ([]domain.Outcome, error)
}
