package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateScan(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateScan() error {
	if !strings.HasPrefix(c.Scan.IndexSuffix, ".") {
		return fmt.Errorf("scan.index_suffix must start with a dot, got %q", c.Scan.IndexSuffix)
	}
	if !strings.HasPrefix(c.Scan.ContainerSuffix, ".") {
		return fmt.Errorf("scan.container_suffix must start with a dot, got %q", c.Scan.ContainerSuffix)
	}
	if c.Scan.IndexSuffix == c.Scan.ContainerSuffix {
		return errors.New("scan.index_suffix and scan.container_suffix must differ")
	}
	if strings.Contains(c.Scan.FolderMarker, "/") {
		return errors.New("scan.folder_marker must be a single path segment")
	}
	return nil
}

func (c *Config) validateFetch() error {
	if c.Fetch.TimeoutSeconds <= 0 {
		return errors.New("fetch.timeout_seconds must be positive")
	}
	if c.Fetch.Workers < 1 {
		return errors.New("fetch.workers must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}
