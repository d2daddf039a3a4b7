package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/gofrs/flock"

	"feedrebuild/internal/fileutil"
	"feedrebuild/internal/logging"
	"feedrebuild/internal/textutil"
)

const (
	// RebuildName is the compact registry written beside the manifest.
	RebuildName = "feeds.json.rebuild"
	// PrettySuffix names the indented copy for inspection.
	PrettySuffix = ".pretty"
	lockName     = ".feeds.json.rebuild.lock"
)

// ErrLocked is returned when another run holds the output lock.
var ErrLocked = errors.New("registry output locked by another run")

// Output describes files produced by a Writer.
type Output struct {
	Path       string
	PrettyPath string
	Records    int
}

// Writer emits the rebuilt registry into a directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter returns a Writer targeting dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logging.NewComponentLogger(logger, "registry")}
}

// Paths returns the compact and pretty output paths.
func (w *Writer) Paths() (string, string) {
	path := filepath.Join(w.dir, RebuildName)
	return path, path + PrettySuffix
}

// Write encodes records and replaces both output files atomically while
// holding an advisory lock.
func (w *Writer) Write(records []Record) (Output, error) {
	path, prettyPath := w.Paths()
	out := Output{Path: path, PrettyPath: prettyPath, Records: len(records)}

	compact, err := Encode(records)
	if err != nil {
		return out, err
	}
	pretty, err := EncodePretty(records)
	if err != nil {
		return out, err
	}

	lock := flock.New(filepath.Join(w.dir, lockName))
	ok, err := lock.TryLock()
	if err != nil {
		return out, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return out, ErrLocked
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			w.logger.Warn("failed to release output lock", logging.Error(err))
		}
	}()

	if err := fileutil.WriteFileAtomic(path, compact, 0o644); err != nil {
		return out, fmt.Errorf("write %s: %w", path, err)
	}
	if err := fileutil.WriteFileAtomic(prettyPath, pretty, 0o644); err != nil {
		return out, fmt.Errorf("write %s: %w", prettyPath, err)
	}
	w.logger.Info("registry written",
		logging.String("path", path),
		logging.String("pretty_path", prettyPath),
		logging.Int("records", len(records)),
	)
	return out, nil
}

// Encode renders records as a compact JSON array containing only ASCII.
func Encode(records []Record) ([]byte, error) {
	data, err := marshal(records, "")
	if err != nil {
		return nil, err
	}
	return textutil.EscapeNonASCII(data), nil
}

// EncodePretty renders records as indented JSON, leaving text readable.
func EncodePretty(records []Record) ([]byte, error) {
	return marshal(records, "  ")
}

func marshal(records []Record, indent string) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encode registry: %w", err)
	}
	return buf.Bytes(), nil
}
