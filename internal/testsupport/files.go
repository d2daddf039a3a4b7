package testsupport

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteIndex writes an index file at root/rel whose body mentions every
// needle, surrounded by filler resembling a mork table.
func WriteIndex(t testing.TB, root, rel string, needles ...string) string {
	t.Helper()

	var b strings.Builder
	b.WriteString("// <!-- <mdb:mork:z v=\"1.4\"/> -->\n< <(a=c)> // (f=iso-8859-1)\n")
	for i, needle := range needles {
		fmt.Fprintf(&b, "[%d:^80(^8A=%s)]\n", i+1, needle)
	}
	path := filepath.Join(root, filepath.FromSlash(rel))
	WriteFile(t, path, []byte(b.String()))
	return path
}

// ManifestEntry is one feeditems.json record.
type ManifestEntry struct {
	MessageID    string
	FeedURLs     []string
	LastSeenTime int64
}

// ManifestJSON renders entries as a feeditems.json document in order.
func ManifestJSON(t testing.TB, entries ...ManifestEntry) []byte {
	t.Helper()

	var b strings.Builder
	b.WriteString("{")
	for i, entry := range entries {
		if i > 0 {
			b.WriteString(",")
		}
		key, err := json.Marshal(entry.MessageID)
		if err != nil {
			t.Fatalf("marshal message id: %v", err)
		}
		body, err := json.Marshal(struct {
			FeedURLs     []string `json:"feedURLs"`
			LastSeenTime int64    `json:"lastSeenTime"`
		}{entry.FeedURLs, entry.LastSeenTime})
		if err != nil {
			t.Fatalf("marshal entry: %v", err)
		}
		b.Write(key)
		b.WriteString(":")
		b.Write(body)
	}
	b.WriteString("}")
	return []byte(b.String())
}

// WriteManifest writes entries to path as feeditems.json.
func WriteManifest(t testing.TB, path string, entries ...ManifestEntry) {
	t.Helper()
	WriteFile(t, path, ManifestJSON(t, entries...))
}

// RSS returns a minimal RSS 2.0 document.
func RSS(title, link string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>%s</title>
    <link>%s</link>
    <description>test feed</description>
    <item><title>first</title><link>%s/1</link></item>
  </channel>
</rss>
`, title, link, link)
}

// Atom returns a minimal Atom document with an alternate link.
func Atom(title, link string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>%s</title>
  <link rel="alternate" href="%s"/>
  <id>urn:test</id>
  <updated>2024-01-01T00:00:00Z</updated>
</feed>
`, title, link)
}
