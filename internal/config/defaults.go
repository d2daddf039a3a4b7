package config

import "path/filepath"

const (
	defaultConfigPath      = "~/.config/feedrebuild/config.toml"
	defaultThunderbirdDir  = "~/.thunderbird"
	defaultIndexSuffix     = ".msf"
	defaultContainerSuffix = ".sbd"
	defaultFolderMarker    = "Feeds"
	defaultTrashName       = "Trash"
	defaultFetchTimeout    = 5
	defaultFetchUserAgent  = "feedrebuild/dev"
	defaultFetchWorkers    = 4
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultHistoryFile     = "history.db"

	// FeedItemsEnv overrides paths.feeditems_path when the config leaves it empty.
	FeedItemsEnv = "FEEDREBUILD_FEEDITEMS"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	stateDir := defaultStateDir()
	return Config{
		Paths: Paths{
			ThunderbirdDir: defaultThunderbirdDir,
			LogDir:         filepath.Join(stateDir, "logs"),
			HistoryPath:    filepath.Join(stateDir, defaultHistoryFile),
		},
		Scan: Scan{
			IndexSuffix:     defaultIndexSuffix,
			ContainerSuffix: defaultContainerSuffix,
			FolderMarker:    defaultFolderMarker,
			PreloadIndex:    true,
		},
		Fetch: Fetch{
			TimeoutSeconds: defaultFetchTimeout,
			UserAgent:      defaultFetchUserAgent,
			Workers:        defaultFetchWorkers,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: true,
		},
	}
}
