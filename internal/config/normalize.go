package config

import (
	"fmt"
	"os"
	"path"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeScan()
	c.normalizeFetch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.ThunderbirdDir) == "" {
		c.Paths.ThunderbirdDir = defaultThunderbirdDir
	}
	if c.Paths.ThunderbirdDir, err = expandPath(c.Paths.ThunderbirdDir); err != nil {
		return fmt.Errorf("paths.thunderbird_dir: %w", err)
	}
	if c.Paths.ProfileDir, err = expandPath(strings.TrimSpace(c.Paths.ProfileDir)); err != nil {
		return fmt.Errorf("paths.profile_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.FeedItemsPath) == "" {
		if value, ok := os.LookupEnv(FeedItemsEnv); ok {
			c.Paths.FeedItemsPath = strings.TrimSpace(value)
		}
	}
	if c.Paths.FeedItemsPath, err = expandPath(strings.TrimSpace(c.Paths.FeedItemsPath)); err != nil {
		return fmt.Errorf("paths.feeditems_path: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = Default().Paths.LogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.HistoryPath) == "" {
		c.Paths.HistoryPath = Default().Paths.HistoryPath
	}
	if c.Paths.HistoryPath, err = expandPath(c.Paths.HistoryPath); err != nil {
		return fmt.Errorf("paths.history_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeScan() {
	c.Scan.IndexSuffix = strings.TrimSpace(c.Scan.IndexSuffix)
	if c.Scan.IndexSuffix == "" {
		c.Scan.IndexSuffix = defaultIndexSuffix
	}
	c.Scan.ContainerSuffix = strings.TrimSpace(c.Scan.ContainerSuffix)
	if c.Scan.ContainerSuffix == "" {
		c.Scan.ContainerSuffix = defaultContainerSuffix
	}
	c.Scan.FolderMarker = strings.Trim(strings.TrimSpace(c.Scan.FolderMarker), "/")
	if c.Scan.FolderMarker == "" {
		c.Scan.FolderMarker = defaultFolderMarker
	}
	// An unset trash folder follows the marker.
	trash := strings.TrimSpace(c.Scan.TrashFolder)
	if trash == "" {
		trash = path.Join(c.Scan.FolderMarker, defaultTrashName)
	}
	c.Scan.TrashFolder = strings.TrimSuffix(path.Clean(strings.ReplaceAll(trash, "\\", "/")), "/")
}

func (c *Config) normalizeFetch() {
	if c.Fetch.TimeoutSeconds <= 0 {
		c.Fetch.TimeoutSeconds = defaultFetchTimeout
	}
	c.Fetch.UserAgent = strings.TrimSpace(c.Fetch.UserAgent)
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = defaultFetchUserAgent
	}
	if c.Fetch.Workers == 0 {
		c.Fetch.Workers = defaultFetchWorkers
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
