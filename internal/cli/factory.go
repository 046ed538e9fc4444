package cli

import (
	"context"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	goredis "github.com/redis/go-redis/v9"

	"github.com/aretw0/usher/internal/presentation/graph"
	"github.com/aretw0/usher/pkg/adapters/browser"
	"github.com/aretw0/usher/pkg/adapters/command"
	loamadapter "github.com/aretw0/usher/pkg/adapters/loam"
	"github.com/aretw0/usher/pkg/adapters/memory"
	redisadapter "github.com/aretw0/usher/pkg/adapters/redis"
	"github.com/aretw0/usher/pkg/adapters/sqlite"
	"github.com/aretw0/usher/pkg/domain"
	"github.com/aretw0/usher/pkg/observability"
	"github.com/aretw0/usher/pkg/persistence/middleware"
	"github.com/aretw0/usher/pkg/policy"
	"github.com/aretw0/usher/pkg/ports"
	"github.com/aretw0/usher/pkg/registry"
	"github.com/aretw0/usher/pkg/service"
)

// Options carries the flag-level configuration shared by the usher commands.
type Options struct {
	HandlersPath string // YAML or JSON handler registry, optional
	PolicyDir    string // Loam policy repository, optional
	Browser      bool   // route http/https to the in-process browser launcher

	JournalBackend string // memory | sqlite | redis
	JournalPath    string // sqlite database location
	RedisURL       string // redis://... for the journal and the gate

	EncryptKey     string   // hex-encoded 32-byte key, enables at-rest encryption
	RedactPatterns []string // query parameters to redact before recording

	Debug bool
	Quiet bool
}

// App bundles the collaborators assembled for one command invocation.
type App struct {
	Service *service.Service
	Opener  ports.Opener
	Routes  []graph.Route
	Loam    *loamadapter.Loader
	Close   func()
}

// BuildApp assembles the service from the options: the scheme-routed opener,
// the journal backend with its middleware chain, and the cross-instance gate
// when Redis is configured. Extra hooks (hub, metrics) are combined with the
// debug logging hooks.
func BuildApp(ctx context.Context, opts Options, logger *slog.Logger, extra ...domain.LifecycleHooks) (*App, error) {
	opener, routes, loader, err := buildOpener(ctx, opts)
	if err != nil {
		return nil, err
	}

	var client *goredis.Client
	if opts.RedisURL != "" {
		redisOpts, err := goredis.ParseURL(opts.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		client = goredis.NewClient(redisOpts)
	}

	closeClient := func() {
		if client == nil {
			return
		}
		if err := client.Close(); err != nil {
			logger.Warn("failed to close redis client", "err", err)
		}
	}

	journal, closeJournal, err := buildJournal(opts, client, logger)
	if err != nil {
		closeClient()
		return nil, err
	}

	svcOpts := []service.Option{
		service.WithJournal(journal),
		service.WithLogger(logger),
	}
	if client != nil {
		svcOpts = append(svcOpts, service.WithGate(redisadapter.NewGate(client, "")))
	}

	hooks := extra
	if opts.Debug {
		hooks = append(hooks, observability.LogHooks(logger))
	}
	if len(hooks) > 0 {
		svcOpts = append(svcOpts, service.WithLifecycleHooks(observability.Combine(hooks...)))
	}

	svc, err := service.New(opener, svcOpts...)
	if err != nil {
		closeJournal()
		closeClient()
		return nil, err
	}

	return &App{
		Service: svc,
		Opener:  opener,
		Routes:  routes,
		Loam:    loader,
		Close: func() {
			closeJournal()
			closeClient()
		},
	}, nil
}

// buildOpener assembles the scheme registry: platform defaults, the handlers
// file, the optional browser launcher, and Loam policies, in that order, so
// later sources win their schemes.
func buildOpener(ctx context.Context, opts Options) (ports.Opener, []graph.Route, *loamadapter.Loader, error) {
	reg := registry.New()
	routeLabels := make(map[string]string)

	// 1. Platform defaults + handlers file (single command opener)
	cmdOpts := []command.Option{command.WithPlatformDefaults()}
	if opts.HandlersPath != "" {
		handlers, err := command.LoadHandlers(opts.HandlersPath)
		if err != nil {
			return nil, nil, nil, err
		}
		cmdOpts = append(cmdOpts, command.WithRegistry(handlers))
	}
	cmdOpener := command.New(cmdOpts...)
	for _, scheme := range cmdOpener.Schemes() {
		reg.Register(scheme, cmdOpener)
		if h, ok := cmdOpener.Lookup(scheme); ok {
			routeLabels[scheme] = h.Command
		}
	}

	// 2. Browser launcher takes over the web schemes when asked
	if opts.Browser {
		b := browser.New()
		reg.Register("http", b)
		reg.Register("https", b)
		routeLabels["http"] = "browser"
		routeLabels["https"] = "browser"
	}

	// 3. Loam policies win their schemes last
	var loader *loamadapter.Loader
	if opts.PolicyDir != "" {
		absPath, err := filepath.Abs(opts.PolicyDir)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to resolve policy dir: %w", err)
		}
		repo, err := loam.Init(absPath,
			loam.WithStrict(true),
			loam.WithReadOnly(true),
		)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to init policy repository: %w", err)
		}
		loader = loamadapter.New(loam.NewTypedRepository[loamadapter.HandlerMetadata](repo))

		policies, err := loader.ListPolicies(ctx)
		if err != nil {
			return nil, nil, nil, err
		}
		if len(policies) > 0 {
			policyReg, err := buildPolicyRoutes(policies)
			if err != nil {
				return nil, nil, nil, err
			}
			for _, p := range policies {
				reg.Register(p.Scheme, policyReg)
				routeLabels[p.Scheme] = p.Command
			}
		}
	}

	routes := make([]graph.Route, 0, len(routeLabels))
	for scheme, handler := range routeLabels {
		routes = append(routes, graph.Route{Scheme: scheme, Handler: handler})
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].Scheme < routes[j].Scheme })

	return reg, routes, loader, nil
}

// buildPolicyRoutes compiles Loam policies into a registry with their
// allow/deny host filters applied.
func buildPolicyRoutes(policies []loamadapter.Policy) (ports.Opener, error) {
	handlers := make(map[string]command.HandlerConfig, len(policies))
	for _, p := range policies {
		handlers[p.Scheme] = command.HandlerConfig{
			Scheme:      p.Scheme,
			Command:     p.Command,
			Args:        p.Args,
			Environment: p.Environment,
		}
	}
	cmdOpener := command.New(command.WithRegistry(handlers))

	pb := policy.New()
	for _, p := range policies {
		rb := pb.Route(p.Scheme).Use(cmdOpener)
		if len(p.Allow) > 0 {
			rb.Allow(p.Allow...)
		}
		if len(p.Deny) > 0 {
			rb.Deny(p.Deny...)
		}
	}
	reg, err := pb.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to compile policies: %w", err)
	}
	return reg, nil
}

// buildJournal selects the journal backend and wraps it with the configured
// middleware chain (redaction first, then encryption, so stored records hold
// the redacted form).
func buildJournal(opts Options, client *goredis.Client, logger *slog.Logger) (ports.OutcomeJournal, func(), error) {
	var (
		journal ports.OutcomeJournal
		closer  = func() {}
	)

	switch strings.ToLower(opts.JournalBackend) {
	case "", "memory":
		journal = memory.NewJournal()
	case "sqlite":
		path := opts.JournalPath
		if path == "" {
			path = filepath.Join(".usher", "journal.db")
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("failed to create journal directory: %w", err)
			}
		}
		db, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite journal: %w", err)
		}
		journal = db
		closer = func() {
			if err := db.Close(); err != nil {
				logger.Warn("failed to close sqlite journal", "err", err)
			}
		}
	case "redis":
		if client == nil {
			return nil, nil, fmt.Errorf("redis journal requires --redis-url")
		}
		journal = redisadapter.NewFromClient(client)
	default:
		return nil, nil, fmt.Errorf("unknown journal backend %q (supported: memory, sqlite, redis)", opts.JournalBackend)
	}

	var mws []middleware.Middleware
	if len(opts.RedactPatterns) > 0 {
		mws = append(mws, middleware.NewRedactMiddleware(opts.RedactPatterns))
	}
	if opts.EncryptKey != "" {
		key, err := hex.DecodeString(opts.EncryptKey)
		if err != nil {
			closer()
			return nil, nil, fmt.Errorf("failed to parse encryption key: %w", err)
		}
		if len(key) != 32 {
			closer()
			return nil, nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	if len(mws) > 0 {
		journal = middleware.Chain(mws...)(journal)
	}

	return journal, closer, nil
}
