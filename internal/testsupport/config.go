package testsupport

import (
	"path/filepath"
	"testing"

	"feedrebuild/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The feeds root is <base>/profile/Mail/Feeds and the manifest lives there.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ThunderbirdDir = filepath.Join(base, "thunderbird")
	cfgVal.Paths.ProfileDir = filepath.Join(base, "profile")
	cfgVal.Paths.FeedItemsPath = filepath.Join(base, "profile", "Mail", "Feeds", "feeditems.json")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.HistoryPath = filepath.Join(base, "state", "history.db")
	cfgVal.Fetch.UserAgent = "feedrebuild-test"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithWorkers overrides the fetch worker count.
func WithWorkers(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Fetch.Workers = n
	}
}

// WithoutHistory disables the run history store.
func WithoutHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithScanIndex toggles the one-time index.
func WithScanIndex(preload bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Scan.PreloadIndex = preload
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}

// FeedsRoot returns the directory holding the manifest and index files.
func FeedsRoot(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.FeedItemsPath)
}
