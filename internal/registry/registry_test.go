package registry_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"feedrebuild/internal/registry"
)

func TestBuildRecord(t *testing.T) {
	rec := registry.Build("Feeds/News", "http://a.com/rss", "A News", "http://a.com", 2000)

	if rec.DestFolder != "mailbox://nobody@Feeds/News" {
		t.Fatalf("unexpected destFolder %q", rec.DestFolder)
	}
	if rec.LastModified != "Thu, 01 Jan 1970 00:00:02 GMT" {
		t.Fatalf("unexpected lastModified %q", rec.LastModified)
	}
	if rec.Options.Updates.LastUpdateTime != 2000 {
		t.Fatalf("unexpected lastUpdateTime %d", rec.Options.Updates.LastUpdateTime)
	}
	if rec.Title != "A News" || rec.Link != "http://a.com" || rec.URL != "http://a.com/rss" {
		t.Fatalf("unexpected identity fields: %+v", rec)
	}
}

func TestDestinationEscapesOnlySpaces(t *testing.T) {
	cases := map[string]string{
		"My Feeds":        "mailbox://nobody@My%20Feeds",
		"C++":             "mailbox://nobody@C++",
		"Feeds/A B/C & D": "mailbox://nobody@Feeds/A%20B/C%20&%20D",
		"Feeds/Zürich":    "mailbox://nobody@Feeds/Zürich",
	}
	for folder, want := range cases {
		if got := registry.Destination(folder); got != want {
			t.Fatalf("Destination(%q) = %q, want %q", folder, got, want)
		}
	}
}

func TestLastModifiedUsesUTC(t *testing.T) {
	if got := registry.LastModified(1642811688000); got != "Sat, 22 Jan 2022 00:34:48 GMT" {
		t.Fatalf("unexpected date %q", got)
	}
}

func TestEncodeMatchesRegistryShape(t *testing.T) {
	rec := registry.Build("Feeds/News", "http://a.com/rss?x=1&y=<2>", "Zürich", "http://a.com", 2000)
	data, err := registry.Encode([]registry.Record{rec})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	text := string(data)
	for _, r := range text {
		if r > 0x7f {
			t.Fatalf("non-ASCII rune %q in output %s", r, text)
		}
	}
	for _, want := range []string{
		`"destFolder":"mailbox://nobody@Feeds/News"`,
		`"title":"Z\u00fcrich"`,
		`"url":"http://a.com/rss?x=1&y=<2>"`,
		`"lastDownloadTime":null`,
		`"category":{"enabled":false,"prefix":"","prefixEnabled":false}`,
		`"updateMinutes":100`,
		`"updateUnits":"min"`,
		`"version":2`,
		`"quickMode":false`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected %s in %s", want, text)
		}
	}
	if !strings.HasPrefix(text, `[{"destFolder"`) {
		t.Fatalf("unexpected field order: %s", text)
	}

	var decoded []registry.Record
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid json: %v", err)
	}
	if decoded[0].Title != "Zürich" {
		t.Fatalf("title did not round-trip: %q", decoded[0].Title)
	}
}

func TestEncodeEmpty(t *testing.T) {
	data, err := registry.Encode(nil)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Fatalf("expected empty array, got %q", data)
	}
}

func TestWriterWritesBothFiles(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "feeditems.json")
	if err := os.WriteFile(manifest, []byte("{}"), 0o644); err != nil {
		t.Fatalf("seed manifest: %v", err)
	}
	writer := registry.NewWriter(dir, nil)
	records := []registry.Record{registry.Build("Feeds/News", "u", "T", "l", 1)}

	out, err := writer.Write(records)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if out.Path != filepath.Join(dir, "feeds.json.rebuild") || out.PrettyPath != out.Path+".pretty" {
		t.Fatalf("unexpected output paths: %+v", out)
	}
	compact, err := os.ReadFile(out.Path)
	if err != nil {
		t.Fatalf("read compact: %v", err)
	}
	pretty, err := os.ReadFile(out.PrettyPath)
	if err != nil {
		t.Fatalf("read pretty: %v", err)
	}
	if strings.Count(string(compact), "\n") != 1 {
		t.Fatalf("compact output should be a single line: %q", compact)
	}
	if !strings.Contains(string(pretty), "\n  {\n    \"destFolder\"") {
		t.Fatalf("pretty output not indented: %s", pretty)
	}
	if data, _ := os.ReadFile(manifest); string(data) != "{}" {
		t.Fatalf("manifest modified: %q", data)
	}
}

func TestWriterRespectsLock(t *testing.T) {
	dir := t.TempDir()
	held := flock.New(filepath.Join(dir, ".feeds.json.rebuild.lock"))
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("hold lock: ok=%v err=%v", ok, err)
	}
	defer held.Unlock()

	_, err = registry.NewWriter(dir, nil).Write(nil)
	if !errors.Is(err, registry.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}
