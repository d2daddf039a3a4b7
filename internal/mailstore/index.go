package mailstore

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"feedrebuild/internal/logging"
)

type indexedFile struct {
	folder FolderPath
	text   string
}

// Index loads every index file once and answers Locate from memory.
// Results are memoized per needle. Index is safe for concurrent use.
type Index struct {
	root   string
	layout Layout
	logger *slog.Logger

	loadOnce sync.Once
	loadErr  error
	files    []indexedFile

	mu   sync.Mutex
	memo map[string]FolderSet
}

// NewIndex builds an Index rooted at root. Files are read on first use or
// by an explicit Load.
func NewIndex(root string, layout Layout, logger *slog.Logger) *Index {
	return &Index{
		root:   root,
		layout: layout.withDefaults(),
		logger: logging.NewComponentLogger(logger, "mailstore"),
		memo:   make(map[string]FolderSet),
	}
}

// Load reads every index file below the root. Repeated calls are no-ops.
func (idx *Index) Load(ctx context.Context) error {
	idx.loadOnce.Do(func() {
		idx.loadErr = walkIndexFiles(ctx, idx.root, idx.layout, idx.logger, func(folder FolderPath, text string) {
			idx.files = append(idx.files, indexedFile{folder: folder, text: text})
		})
		if idx.loadErr == nil {
			idx.logger.Debug("index files loaded",
				logging.String("root", idx.root),
				logging.Int("files", len(idx.files)),
			)
		}
	})
	return idx.loadErr
}

// Files returns the number of index files held in memory.
func (idx *Index) Files() int {
	return len(idx.files)
}

// Locate returns every folder whose index file contains needle.
func (idx *Index) Locate(ctx context.Context, needle string) (FolderSet, error) {
	if needle == "" {
		return NewFolderSet(), nil
	}
	if err := idx.Load(ctx); err != nil {
		return nil, err
	}

	idx.mu.Lock()
	cached, ok := idx.memo[needle]
	idx.mu.Unlock()
	if ok {
		return cloneSet(cached), nil
	}

	found := NewFolderSet()
	for _, file := range idx.files {
		if strings.Contains(file.text, needle) {
			found.Add(file.folder)
		}
	}

	idx.mu.Lock()
	idx.memo[needle] = found
	idx.mu.Unlock()
	return cloneSet(found), nil
}

func cloneSet(s FolderSet) FolderSet {
	out := make(FolderSet, len(s))
	out.Union(s)
	return out
}
