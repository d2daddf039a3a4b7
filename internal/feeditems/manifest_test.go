package feeditems

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestParsePreservesOrderAndFields(t *testing.T) {
	data := []byte(`{
  "<b@x>": {"feedURLs": ["https://b.example/rss"], "lastSeenTime": 200},
  "<a@x>": {"feedURLs": ["https://a.example/rss", "https://b.example/rss"], "lastSeenTime": 100.9}
}`)
	manifest, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(manifest.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(manifest.Entries))
	}
	first := manifest.Entries[0]
	if first.MessageID != "<b@x>" || first.LastSeenTime != 200 {
		t.Fatalf("unexpected first entry: %+v", first)
	}
	second := manifest.Entries[1]
	if second.LastSeenTime != 100 {
		t.Fatalf("expected truncated float timestamp 100, got %d", second.LastSeenTime)
	}
	if !slices.Equal(second.FeedURLs, []string{"https://a.example/rss", "https://b.example/rss"}) {
		t.Fatalf("unexpected feed urls: %v", second.FeedURLs)
	}
}

func TestParseToleratesControlCharacters(t *testing.T) {
	data := []byte("{\"<m1>\": {\"feedURLs\": [\"https://example.com/feed\"], \"lastSeenTime\": 5, \"title\": \"line\x01one\ttab\"}}")
	manifest, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if manifest.RepairedChars != 2 {
		t.Fatalf("expected 2 repaired chars, got %d", manifest.RepairedChars)
	}
	if got := manifest.Entries[0].FeedURLs; len(got) != 1 || got[0] != "https://example.com/feed" {
		t.Fatalf("unexpected feed urls: %v", got)
	}
}

func TestParseTracksIncompleteEntries(t *testing.T) {
	data := []byte(`{"<m1>": {"lastSeenTime": 1}, "<m2>": {"feedURLs": ["u"]}, "<m3>": null}`)
	manifest, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := manifest.Incomplete(); !slices.Equal(got, []string{"<m1>", "<m3>"}) {
		t.Fatalf("unexpected incomplete ids: %v", got)
	}
	if manifest.Entries[1].LastSeenTime != 0 {
		t.Fatalf("missing lastSeenTime should default to 0, got %d", manifest.Entries[1].LastSeenTime)
	}
}

func TestParseDuplicateKeyKeepsFirstPosition(t *testing.T) {
	data := []byte(`{"<a>": {"feedURLs": ["u1"]}, "<b>": {"feedURLs": ["u2"]}, "<a>": {"feedURLs": ["u3"]}}`)
	manifest, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(manifest.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(manifest.Entries))
	}
	if manifest.Entries[0].MessageID != "<a>" || manifest.Entries[0].FeedURLs[0] != "u3" {
		t.Fatalf("expected <a> to keep first slot with last value, got %+v", manifest.Entries[0])
	}
}

func TestParseRejectsCorruptManifest(t *testing.T) {
	cases := map[string]string{
		"truncated":  `{"<a>": {"feedURLs": ["u1"]`,
		"not object": `["u1"]`,
		"trailing":   `{} {}`,
		"empty":      ``,
		"bad entry":  `{"<a>": {"feedURLs": "u1"}}`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			if !errors.Is(err, ErrCorruptManifest) {
				t.Fatalf("expected ErrCorruptManifest, got %v", err)
			}
		})
	}
}

func TestParseInvalidUTF8(t *testing.T) {
	data := []byte("{\"<caf\xe9>\": {\"feedURLs\": [\"u\"]}}")
	manifest, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := manifest.Entries[0].MessageID; got != "<caf�>" {
		t.Fatalf("expected replacement character, got %q", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "feeditems.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
