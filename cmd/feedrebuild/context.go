package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"feedrebuild/internal/config"
	"feedrebuild/internal/logging"
	"feedrebuild/internal/profile"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.ToLower(strings.TrimSpace(*c.logLevelFlag)); level != "" {
				cfg.Logging.Level = level
				if err := cfg.Validate(); err != nil {
					c.configErr = err
					return
				}
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// newLogger builds the run logger: console records go to the command's
// stderr and are mirrored into the log directory.
func (c *commandContext) newLogger(cmd *cobra.Command, runID string) (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfigWriter(cfg, runID, cmd.ErrOrStderr())
}

// manifestPath picks the manifest: an explicit path first, then the configured
// path, then the configured profile, then the deduced default profile.
func (c *commandContext) manifestPath(explicit string) (string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return config.ExpandPath(explicit)
	}
	if cfg.Paths.FeedItemsPath != "" {
		return cfg.Paths.FeedItemsPath, nil
	}
	if cfg.Paths.ProfileDir != "" {
		return profile.Profile{Dir: cfg.Paths.ProfileDir}.ManifestPath(cfg.Scan.FolderMarker), nil
	}
	found, err := profile.Deduce(cfg.Paths.ThunderbirdDir)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			return "", fmt.Errorf("%w (pass --feeditems-path or set paths.feeditems_path)", err)
		}
		return "", err
	}
	return found.ManifestPath(cfg.Scan.FolderMarker), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

func printLines(w io.Writer, lines []string) {
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
}
