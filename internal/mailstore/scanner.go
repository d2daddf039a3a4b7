package mailstore

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"feedrebuild/internal/logging"
	"feedrebuild/internal/textutil"
)

// Scanner walks the folder tree on every Locate call.
type Scanner struct {
	root   string
	layout Layout
	logger *slog.Logger
}

// NewScanner builds a Scanner rooted at root.
func NewScanner(root string, layout Layout, logger *slog.Logger) *Scanner {
	return &Scanner{
		root:   root,
		layout: layout.withDefaults(),
		logger: logging.NewComponentLogger(logger, "mailstore"),
	}
}

// Locate returns every folder whose index file contains needle. An empty
// needle matches nothing. Unreadable files are logged and treated as
// non-matching.
func (s *Scanner) Locate(ctx context.Context, needle string) (FolderSet, error) {
	found := NewFolderSet()
	if needle == "" {
		return found, nil
	}
	err := walkIndexFiles(ctx, s.root, s.layout, s.logger, func(folder FolderPath, text string) {
		if strings.Contains(text, needle) {
			found.Add(folder)
		}
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// walkIndexFiles calls visit for every readable index file below root.
func walkIndexFiles(ctx context.Context, root string, layout Layout, logger *slog.Logger, visit func(FolderPath, string)) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			warnUnreadable(logger, path, walkErr)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), layout.IndexSuffix) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			warnUnreadable(logger, path, err)
			return nil
		}
		folder, err := layout.FolderPath(root, path)
		if err != nil {
			warnUnreadable(logger, path, err)
			return nil
		}
		visit(folder, textutil.DecodeBestEffort(data))
		return nil
	})
}

func warnUnreadable(logger *slog.Logger, path string, err error) {
	logging.WarnWithContext(logger, "index file unreadable",
		"index_unreadable",
		logging.String("path", path),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check file permissions under the feeds root"),
		logging.String(logging.FieldImpact, "file contributes no folder matches"),
	)
}
