package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/usher"
	"github.com/aretw0/usher/internal/presentation/graph"
	"github.com/aretw0/usher/internal/presentation/tui"
	"github.com/aretw0/usher/pkg/domain"
	"github.com/aretw0/usher/pkg/registry"
	"github.com/aretw0/usher/pkg/schema"
)

// RunOpen executes one open cycle for the resource and reports the outcome.
// A failed or unsupported open is carried in the returned outcome, not the
// error; callers map it to the exit code.
func RunOpen(opts Options, resource string, jsonOut bool) (domain.Outcome, error) {
	logger := createLogger(opts.Debug)

	if err := schema.ValidateResource(resource); err != nil {
		return domain.Outcome{}, err
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	app, err := BuildApp(sigCtx, opts, logger)
	if err != nil {
		return domain.Outcome{}, err
	}
	defer app.Close()

	out, err := app.Service.Open(sigCtx, resource)
	if err != nil {
		if errors.Is(err, domain.ErrBusy) {
			return domain.Outcome{}, fmt.Errorf("another open attempt is in flight: %w", err)
		}
		return domain.Outcome{}, err
	}

	if jsonOut {
		return out, printJSON(out)
	}
	if !opts.Quiet {
		printMarkdown(tui.OutcomeMarkdown(out))
	}
	return out, nil
}

// RunCheck reports the capability verdict for a resource without opening it.
func RunCheck(opts Options, resource string, jsonOut bool) (usher.Support, error) {
	logger := createLogger(opts.Debug)

	if err := schema.ValidateResource(resource); err != nil {
		return usher.Unsupported, err
	}

	ctx := context.Background()
	app, err := BuildApp(ctx, opts, logger)
	if err != nil {
		return usher.Unsupported, err
	}
	defer app.Close()

	support := app.Service.Controller().Classifier().ClassifyCapability(resource)

	if jsonOut {
		return support, printJSON(map[string]string{
			"resource": resource,
			"support":  string(support),
		})
	}
	if !opts.Quiet {
		if support == usher.Supported {
			printSystemMessage("'%s' is supported.", resource)
		} else {
			printSystemMessage("'%s' has no handler.", resource)
		}
	}
	return support, nil
}

// RunHistory prints the recorded outcomes, newest first.
func RunHistory(opts Options, limit int, jsonOut bool) error {
	logger := createLogger(opts.Debug)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	app, err := BuildApp(sigCtx, opts, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	outcomes, err := app.Service.Recent(sigCtx, limit)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}

	if jsonOut {
		return printJSON(schema.OutcomesResponse{Outcomes: outcomes, Count: len(outcomes)})
	}
	printMarkdown(tui.HistoryMarkdown(outcomes))
	return nil
}

// RunRoutes prints the scheme routing table as a Mermaid diagram, with the
// recent outcome per scheme overlaid. Pipe it into mermaid.live to render.
func RunRoutes(opts Options, jsonOut bool) error {
	logger := createLogger(opts.Debug)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	app, err := BuildApp(sigCtx, opts, logger)
	if err != nil {
		return err
	}
	defer app.Close()

	if jsonOut {
		return printJSON(app.Routes)
	}

	overlay := buildOverlay(sigCtx, app)
	fmt.Print(graph.GenerateMermaid(app.Routes, overlay))
	return nil
}

// buildOverlay derives per-scheme styling from the journal and the pending
// state. Best effort: an empty journal yields an empty overlay.
func buildOverlay(ctx context.Context, app *App) *graph.Overlay {
	overlay := &graph.Overlay{}

	if status, err := app.Service.Status(ctx); err == nil {
		if resource, ok := status.Resource(); ok {
			overlay.Active = registry.Scheme(resource)
		}
	}

	outcomes, err := app.Service.Recent(ctx, 50)
	if err != nil {
		return overlay
	}

	// Newest first: the first outcome seen for a scheme is its latest.
	latest := make(map[string]domain.Kind)
	for _, out := range outcomes {
		scheme := registry.Scheme(out.Resource)
		if scheme == "" {
			continue
		}
		if _, seen := latest[scheme]; seen {
			continue
		}
		latest[scheme] = out.Kind
		switch out.Kind {
		case domain.KindOpened:
			overlay.Opened = append(overlay.Opened, scheme)
		case domain.KindOpenFailed:
			overlay.Failed = append(overlay.Failed, scheme)
		}
	}
	return overlay
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
