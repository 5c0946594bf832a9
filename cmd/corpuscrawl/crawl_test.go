package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/corpuscrawl/internal/config"
	"github.com/nao1215/corpuscrawl/internal/database"
	"github.com/nao1215/corpuscrawl/internal/state"
)

// TestNewCrawlCmd tests the crawl command creation.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "crawl [seed-url...]" {
			t.Errorf("expected use 'crawl [seed-url...]', got %q", cmd.Use)
		}
	})

	t.Run("has descriptions", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" || cmd.Long == "" {
			t.Error("expected non-empty short and long descriptions")
		}
	})

	flags := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{"config", "c", ""},
		{"output", "o", "corpus"},
		{"state-backend", "", "file"},
		{"redis-key", "", config.DefaultRedisKey},
		{"resume", "r", "false"},
		{"max-pages", "p", "0"},
		{"delay", "d", "1s"},
		{"timeout", "t", "20s"},
		{"retries", "", "2"},
		{"checkpoint-every", "", "50"},
		{"min-words", "", "50"},
		{"format", "f", "markdown"},
		{"ignore-robots", "", "false"},
		{"proxy", "", ""},
		{"metrics-addr", "", ""},
		{"log-json", "", "false"},
	}
	for _, tt := range flags {
		t.Run("has "+tt.name+" flag", func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".corpuscrawl")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestBuildCrawlConfig(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfigFile(t, `seeds:
  - https://www.example.edu/
sitemaps:
  - https://www.example.edu/sitemap.xml
hosts:
  - example.edu
min_words: 20
respect_robots: false
`)

	t.Run("config file values", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"-c", cfgPath, "-p", "10", "--resume", "-d", "0s"}); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}
		cfg, err := buildCrawlConfig(cmd, nil)
		if err != nil {
			t.Fatalf("buildCrawlConfig() error = %v", err)
		}
		if len(cfg.Seeds) != 1 || cfg.Seeds[0] != "https://www.example.edu/" {
			t.Errorf("Seeds = %v", cfg.Seeds)
		}
		if len(cfg.Sitemaps) != 1 || len(cfg.Hosts) != 1 {
			t.Errorf("Sitemaps = %v, Hosts = %v", cfg.Sitemaps, cfg.Hosts)
		}
		if cfg.MinWords != 20 {
			t.Errorf("MinWords = %d, want 20 from the file", cfg.MinWords)
		}
		if cfg.RespectRobots {
			t.Error("RespectRobots should come from the file")
		}
		if cfg.MaxPages != 10 || !cfg.Resume || cfg.CrawlDelay != 0 {
			t.Errorf("flags not applied: %+v", cfg)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("flags override the file when given", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"-c", cfgPath, "--min-words", "3", "--user-agent", "test-agent"}); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}
		cfg, err := buildCrawlConfig(cmd, nil)
		if err != nil {
			t.Fatalf("buildCrawlConfig() error = %v", err)
		}
		if cfg.MinWords != 3 || cfg.UserAgent != "test-agent" {
			t.Errorf("MinWords = %d, UserAgent = %q", cfg.MinWords, cfg.UserAgent)
		}
	})

	t.Run("seed arguments replace the target", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"-c", cfgPath}); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}
		cfg, err := buildCrawlConfig(cmd, []string{"https://lib.other.org/faq"})
		if err != nil {
			t.Fatalf("buildCrawlConfig() error = %v", err)
		}
		if len(cfg.Seeds) != 1 || cfg.Seeds[0] != "https://lib.other.org/faq" {
			t.Errorf("Seeds = %v", cfg.Seeds)
		}
		if cfg.Sitemaps != nil || cfg.Hosts != nil {
			t.Errorf("Sitemaps = %v, Hosts = %v, want nil", cfg.Sitemaps, cfg.Hosts)
		}
		if got := strings.Join(cfg.ScopeHosts(), ","); got != "lib.other.org" {
			t.Errorf("ScopeHosts() = %q", got)
		}
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		missing := filepath.Join(t.TempDir(), "nope.yaml")
		if err := cmd.ParseFlags([]string{"-c", missing}); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}
		_, err := buildCrawlConfig(cmd, nil)
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("buildCrawlConfig() error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("ignore-robots flag", func(t *testing.T) {
		t.Parallel()

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"-c", cfgPath, "--ignore-robots=false"}); err != nil {
			t.Fatalf("ParseFlags() error = %v", err)
		}
		cfg, err := buildCrawlConfig(cmd, nil)
		if err != nil {
			t.Fatalf("buildCrawlConfig() error = %v", err)
		}
		if !cfg.RespectRobots {
			t.Error("an explicit --ignore-robots=false should re-enable robots.txt")
		}
	})
}

// newSite serves a small site with an FAQ page and a robots.txt that
// disallows /private.
func newSite(t *testing.T) *httptest.Server {
	t.Helper()

	pages := map[string]string{
		"/": `<html><head><title>Home</title></head><body><main>
<p>Welcome to the example university home page for visitors.</p>
<a href="/faq">FAQ</a> <a href="/about">About</a> <a href="/private">Private</a>
</main></body></html>`,
		"/faq": `<html><head><title>FAQ</title></head><body><main>
<h2>How do I apply?</h2><p>Apply online through the admissions portal.</p>
</main></body></html>`,
		"/about": `<html><head><title>About</title></head><body><main>
<p>The university was founded long ago beside a large lake.</p>
</main></body></html>`,
		"/private": `<html><body><main><p>This page must never be fetched by the crawler.</p></main></body></html>`,
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			w.Header().Set("Content-Type", "text/plain")
			fmt.Fprint(w, "User-agent: *\nDisallow: /private\n")
			return
		}
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// testCrawlConfig targets srv with storage under a temporary directory.
func testCrawlConfig(t *testing.T, srv *httptest.Server) *config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := config.NewConfig()
	cfg.Seeds = []string{srv.URL + "/"}
	cfg.Sitemaps = nil
	cfg.Hosts = nil
	cfg.OutputDir = filepath.Join(dir, "corpus")
	cfg.DBDir = filepath.Join(dir, "db")
	cfg.CrawlDelay = 0
	cfg.Timeout = 5 * time.Second
	cfg.MinWords = 5
	return cfg
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunCrawl(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	cfg := testCrawlConfig(t, srv)

	var out bytes.Buffer
	if err := runCrawl(t.Context(), cfg, discardLogger(), &out); err != nil {
		t.Fatalf("runCrawl() error = %v", err)
	}

	output := out.String()
	for _, want := range []string{"CRAWL SUMMARY", "Pages Scraped:   3", "disallowed 1", "Corpus written to " + cfg.OutputDir} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}

	for _, name := range []string{"index.md", "faq.md", "about.md"} {
		if _, err := os.Stat(filepath.Join(cfg.OutputDir, name)); err != nil {
			t.Errorf("artifact %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "private.md")); !os.IsNotExist(err) {
		t.Error("disallowed page should not be written")
	}

	snap, err := state.NewFileStore(cfg.StatePath()).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(snap.Frontier) != 0 || snap.Stats.FinishedAt.IsZero() {
		t.Errorf("checkpoint not drained: frontier=%d finished=%v", len(snap.Frontier), snap.Stats.FinishedAt)
	}

	db, err := database.Open(cfg.DatabaseDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("database.Open() error = %v", err)
	}
	defer db.Close()
	n, err := db.CountDocuments(context.Background())
	if err != nil {
		t.Fatalf("CountDocuments() error = %v", err)
	}
	if n != 3 {
		t.Errorf("CountDocuments() = %d, want 3", n)
	}
}

func TestRunCrawl_SQLiteStateAndJSON(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	cfg := testCrawlConfig(t, srv)
	cfg.StateBackend = config.BackendSQLite
	cfg.Format = "json"
	cfg.RespectRobots = false

	var out bytes.Buffer
	if err := runCrawl(t.Context(), cfg, discardLogger(), &out); err != nil {
		t.Fatalf("runCrawl() error = %v", err)
	}
	if !strings.Contains(out.String(), "Pages Scraped:   4") {
		t.Errorf("output:\n%s", out.String())
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "faq.json")); err != nil {
		t.Errorf("json artifact: %v", err)
	}
	if _, err := os.Stat(cfg.StatePath()); !os.IsNotExist(err) {
		t.Error("sqlite backend should not write the state file")
	}

	var status bytes.Buffer
	if err := runStatus(context.Background(), cfg, false, &status); err != nil {
		t.Fatalf("runStatus() error = %v", err)
	}
	if !strings.Contains(status.String(), "Visited:         4") {
		t.Errorf("status:\n%s", status.String())
	}
}

func TestRunCrawl_Interrupted(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	cfg := testCrawlConfig(t, srv)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	var out bytes.Buffer
	if err := runCrawl(ctx, cfg, discardLogger(), &out); err != nil {
		t.Fatalf("runCrawl() error = %v, an interrupt is not a failure", err)
	}
	if !strings.Contains(out.String(), "--resume") {
		t.Errorf("output should hint at --resume:\n%s", out.String())
	}

	cfg.Resume = true
	out.Reset()
	if err := runCrawl(t.Context(), cfg, discardLogger(), &out); err != nil {
		t.Fatalf("resumed runCrawl() error = %v", err)
	}
	if !strings.Contains(out.String(), "Pages Scraped:   3") {
		t.Errorf("resumed output:\n%s", out.String())
	}
}

func TestRunCrawl_InvalidBackend(t *testing.T) {
	t.Parallel()

	srv := newSite(t)
	cfg := testCrawlConfig(t, srv)
	cfg.StateBackend = "etcd"

	err := runCrawl(t.Context(), cfg, discardLogger(), io.Discard)
	if !errors.Is(err, config.ErrInvalidStateBackend) {
		t.Errorf("runCrawl() error = %v, want ErrInvalidStateBackend", err)
	}
}
