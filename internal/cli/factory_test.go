package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/usher/internal/logging"
	"github.com/aretw0/usher/internal/presentation/graph"
	"github.com/aretw0/usher/internal/testutils"
	"github.com/aretw0/usher/pkg/adapters/memory"
	"github.com/aretw0/usher/pkg/domain"
)

func findRoute(routes []graph.Route, scheme string) (graph.Route, bool) {
	for _, r := range routes {
		if r.Scheme == scheme {
			return r, true
		}
	}
	return graph.Route{}, false
}

func TestBuildJournal(t *testing.T) {
	logger := logging.NewNop()

	t.Run("Defaults to memory", func(t *testing.T) {
		journal, closer, err := buildJournal(Options{}, nil, logger)
		require.NoError(t, err)
		defer closer()
		assert.IsType(t, &memory.Journal{}, journal)
	})

	t.Run("Sqlite creates the parent directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "journal.db")
		journal, closer, err := buildJournal(Options{JournalBackend: "sqlite", JournalPath: path}, nil, logger)
		require.NoError(t, err)
		defer closer()

		_, statErr := os.Stat(filepath.Dir(path))
		assert.NoError(t, statErr, "parent directory should exist")

		require.NoError(t, journal.Record(context.Background(), domain.Opened("http://example.com")))
	})

	t.Run("Redis requires a client", func(t *testing.T) {
		_, _, err := buildJournal(Options{JournalBackend: "redis"}, nil, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis journal requires")
	})

	t.Run("Unknown backend is rejected", func(t *testing.T) {
		_, _, err := buildJournal(Options{JournalBackend: "etcd"}, nil, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown journal backend")
	})

	t.Run("Malformed encryption key is rejected", func(t *testing.T) {
		_, _, err := buildJournal(Options{EncryptKey: "not-hex"}, nil, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse encryption key")
	})

	t.Run("Short encryption key is rejected", func(t *testing.T) {
		_, _, err := buildJournal(Options{EncryptKey: "deadbeef"}, nil, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be 32 bytes")
	})

	t.Run("Encrypted journal round-trips records", func(t *testing.T) {
		key := "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
		journal, closer, err := buildJournal(Options{EncryptKey: key}, nil, logger)
		require.NoError(t, err)
		defer closer()

		_, bare := journal.(*memory.Journal)
		assert.False(t, bare, "middleware should wrap the backend")

		ctx := context.Background()
		require.NoError(t, journal.Record(ctx, domain.Opened("http://example.com")))

		recent, err := journal.Recent(ctx, 1)
		require.NoError(t, err)
		require.Len(t, recent, 1)
		assert.Equal(t, "http://example.com", recent[0].Resource)
	})

	t.Run("Redaction masks matched query parameters", func(t *testing.T) {
		journal, closer, err := buildJournal(Options{RedactPatterns: []string{"token"}}, nil, logger)
		require.NoError(t, err)
		defer closer()

		ctx := context.Background()
		require.NoError(t, journal.Record(ctx, domain.Opened("http://example.com/cb?token=hunter2&page=1")))

		recent, err := journal.Recent(ctx, 1)
		require.NoError(t, err)
		require.Len(t, recent, 1)
		assert.NotContains(t, recent[0].Resource, "hunter2")
		assert.Contains(t, recent[0].Resource, "page=1")
	})
}

func TestBuildOpener(t *testing.T) {
	ctx := context.Background()

	t.Run("Platform defaults serve the web schemes", func(t *testing.T) {
		opener, routes, loader, err := buildOpener(ctx, Options{})
		require.NoError(t, err)
		assert.Nil(t, loader)

		assert.True(t, opener.CanOpen("http://example.com"))
		assert.False(t, opener.CanOpen("gopher://localhost:10000"))

		httpRoute, ok := findRoute(routes, "http")
		require.True(t, ok)
		assert.NotEmpty(t, httpRoute.Handler)
		_, ok = findRoute(routes, "https")
		assert.True(t, ok)
	})

	t.Run("Handlers file extends the registry", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "handlers.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`handlers:
  - scheme: gopher
    command: lynx
    args: ["{url}"]
`), 0644))

		opener, routes, _, err := buildOpener(ctx, Options{HandlersPath: path})
		require.NoError(t, err)

		assert.True(t, opener.CanOpen("gopher://localhost:10000"))
		route, ok := findRoute(routes, "gopher")
		require.True(t, ok)
		assert.Equal(t, "lynx", route.Handler)
	})

	t.Run("Browser flag relabels the web schemes", func(t *testing.T) {
		_, routes, _, err := buildOpener(ctx, Options{Browser: true})
		require.NoError(t, err)

		route, ok := findRoute(routes, "http")
		require.True(t, ok)
		assert.Equal(t, "browser", route.Handler)
	})

	t.Run("Policies win their scheme", func(t *testing.T) {
		tmpDir, _ := testutils.SetupTestRepo(t)
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "https.md"), []byte(`---
scheme: https
command: firefox
args: ["--new-window", "{url}"]
---
Web pages open in Firefox.`), 0644))

		opener, routes, loader, err := buildOpener(ctx, Options{PolicyDir: tmpDir})
		require.NoError(t, err)
		require.NotNil(t, loader)

		assert.True(t, opener.CanOpen("https://example.com"))
		route, ok := findRoute(routes, "https")
		require.True(t, ok)
		assert.Equal(t, "firefox", route.Handler)
	})

	t.Run("Scheme collisions surface as errors", func(t *testing.T) {
		tmpDir, _ := testutils.SetupTestRepo(t)
		files := map[string]string{
			"https.md": "---\nscheme: https\ncommand: firefox\n---\nOne",
			"web.md":   "---\nscheme: HTTPS\ncommand: chromium\n---\nTwo",
		}
		for name, content := range files {
			require.NoError(t, os.WriteFile(filepath.Join(tmpDir, name), []byte(content), 0644))
		}

		_, _, _, err := buildOpener(ctx, Options{PolicyDir: tmpDir})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "collision")
	})
}

func TestBuildApp(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewNop()

	t.Run("Defaults to an idle memory-backed service", func(t *testing.T) {
		app, err := BuildApp(ctx, Options{}, logger)
		require.NoError(t, err)
		defer app.Close()

		require.NotNil(t, app.Service)
		status, err := app.Service.Status(ctx)
		require.NoError(t, err)
		assert.False(t, status.IsPending())

		recent, err := app.Service.Recent(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, recent)
	})

	t.Run("Malformed redis url is rejected", func(t *testing.T) {
		_, err := BuildApp(ctx, Options{RedisURL: "http://localhost:6379"}, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse redis url")
	})

	t.Run("Redis journal without a url is rejected", func(t *testing.T) {
		_, err := BuildApp(ctx, Options{JournalBackend: "redis"}, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis journal requires")
	})
}
