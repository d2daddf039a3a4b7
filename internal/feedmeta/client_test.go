package feedmeta_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"feedrebuild/internal/feedmeta"
	"feedrebuild/internal/testsupport"
)

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/rss", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "feedrebuild-test" {
			http.Error(w, "bad agent "+got, http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(testsupport.RSS("A News", "http://a.com")))
	})
	mux.HandleFunc("/atom", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testsupport.Atom("B Blog", "http://b.com/")))
	})
	mux.HandleFunc("/garbage", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>not a feed</body></html>"))
	})
	mux.HandleFunc("/untitled", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testsupport.RSS("", "http://c.com")))
	})
	mux.HandleFunc("/unlinked", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(testsupport.RSS("C", "")))
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestFetchRSSAndAtom(t *testing.T) {
	server := newFeedServer(t)
	client := feedmeta.NewClient(feedmeta.WithUserAgent("feedrebuild-test"))

	meta, err := client.Fetch(context.Background(), server.URL+"/rss")
	if err != nil {
		t.Fatalf("Fetch rss: %v", err)
	}
	if meta.Title != "A News" || meta.SiteLink != "http://a.com" || meta.Format != "rss" {
		t.Fatalf("unexpected rss metadata: %+v", meta)
	}

	meta, err = client.Fetch(context.Background(), server.URL+"/atom")
	if err != nil {
		t.Fatalf("Fetch atom: %v", err)
	}
	if meta.Title != "B Blog" || meta.SiteLink != "http://b.com/" || meta.Format != "atom" {
		t.Fatalf("unexpected atom metadata: %+v", meta)
	}
}

func TestFetchMalformedDocuments(t *testing.T) {
	server := newFeedServer(t)
	client := feedmeta.NewClient()

	for _, path := range []string{"/garbage", "/untitled", "/unlinked"} {
		_, err := client.Fetch(context.Background(), server.URL+path)
		if !errors.Is(err, feedmeta.ErrMalformed) {
			t.Fatalf("%s: expected ErrMalformed, got %v", path, err)
		}
		var malformed *feedmeta.MalformedError
		if !errors.As(err, &malformed) || malformed.URL != server.URL+path {
			t.Fatalf("%s: expected MalformedError with url, got %v", path, err)
		}
		if errors.Is(err, feedmeta.ErrFetch) {
			t.Fatalf("%s: malformed document must not be a fetch error", path)
		}
	}
}

func TestFetchHTTPErrorStatus(t *testing.T) {
	server := newFeedServer(t)
	_, err := feedmeta.NewClient().Fetch(context.Background(), server.URL+"/gone")
	if !errors.Is(err, feedmeta.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	if !strings.Contains(err.Error(), "http 410") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestFetchTimeout(t *testing.T) {
	server := newFeedServer(t)
	client := feedmeta.NewClient(feedmeta.WithTimeout(50 * time.Millisecond))
	started := time.Now()
	_, err := client.Fetch(context.Background(), server.URL+"/slow")
	if !errors.Is(err, feedmeta.ErrFetch) {
		t.Fatalf("expected ErrFetch on timeout, got %v", err)
	}
	if elapsed := time.Since(started); elapsed > time.Second {
		t.Fatalf("timeout not honoured, took %s", elapsed)
	}
}

func TestWithTimeoutLeavesSharedClientAlone(t *testing.T) {
	server := newFeedServer(t)
	for name, opts := range map[string]func(*http.Client) []feedmeta.Option{
		"client first": func(hc *http.Client) []feedmeta.Option {
			return []feedmeta.Option{feedmeta.WithHTTPClient(hc), feedmeta.WithTimeout(50 * time.Millisecond)}
		},
		"timeout first": func(hc *http.Client) []feedmeta.Option {
			return []feedmeta.Option{feedmeta.WithTimeout(50 * time.Millisecond), feedmeta.WithHTTPClient(hc)}
		},
	} {
		t.Run(name, func(t *testing.T) {
			shared := &http.Client{}
			client := feedmeta.NewClient(opts(shared)...)
			if shared.Timeout != 0 {
				t.Fatalf("shared client timeout changed to %s", shared.Timeout)
			}
			started := time.Now()
			if _, err := client.Fetch(context.Background(), server.URL+"/slow"); !errors.Is(err, feedmeta.ErrFetch) {
				t.Fatalf("expected ErrFetch on timeout, got %v", err)
			}
			if elapsed := time.Since(started); elapsed > time.Second {
				t.Fatalf("timeout not applied to copy, took %s", elapsed)
			}
		})
	}
	if http.DefaultClient.Timeout != 0 {
		t.Fatalf("default client timeout changed to %s", http.DefaultClient.Timeout)
	}
}

func TestFetchFileURL(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "local.xml")
	testsupport.WriteFile(t, path, []byte(testsupport.RSS("Local", "file:///local")))

	client := feedmeta.NewClient()
	meta, err := client.Fetch(context.Background(), "file://"+filepath.ToSlash(path))
	if err != nil {
		t.Fatalf("Fetch file: %v", err)
	}
	if meta.Title != "Local" || meta.SiteLink != "file:///local" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}

	_, err = client.Fetch(context.Background(), "file://"+filepath.ToSlash(filepath.Join(dir, "missing.xml")))
	if !errors.Is(err, feedmeta.ErrFetch) {
		t.Fatalf("expected ErrFetch for missing file, got %v", err)
	}
}

func TestFetchInvalidURL(t *testing.T) {
	_, err := feedmeta.NewClient().Fetch(context.Background(), "::not a url")
	if !errors.Is(err, feedmeta.ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}
