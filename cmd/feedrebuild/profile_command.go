package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"feedrebuild/internal/profile"
)

type profileReport struct {
	ThunderbirdDir string `json:"thunderbird_dir"`
	Name           string `json:"name,omitempty"`
	ProfileDir     string `json:"profile_dir"`
	Source         string `json:"source"`
	FeedsRoot      string `json:"feeds_root"`
	ManifestPath   string `json:"manifest_path"`
}

func newProfileCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the Thunderbird profile and manifest that rebuild would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			report := profileReport{ThunderbirdDir: cfg.Paths.ThunderbirdDir}
			var found profile.Profile
			if cfg.Paths.ProfileDir != "" {
				found = profile.Profile{Dir: cfg.Paths.ProfileDir}
				report.Source = "config"
			} else {
				found, err = profile.Deduce(cfg.Paths.ThunderbirdDir)
				if err != nil {
					return err
				}
				report.Source = string(found.Source)
			}
			report.Name = found.Name
			report.ProfileDir = found.Dir
			report.FeedsRoot = found.FeedsRoot(cfg.Scan.FolderMarker)
			report.ManifestPath = found.ManifestPath(cfg.Scan.FolderMarker)

			if jsonOutput {
				return writeJSON(cmd, report)
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			lines := renderSectionHeader("Thunderbird profile", colorize)
			lines = append(lines,
				renderStatusLine("Profile dir", statusOK, report.ProfileDir, colorize),
				renderStatusLine("Selected by", statusInfo, report.Source, colorize),
				renderStatusLine("Feeds root", statusInfo, report.FeedsRoot, colorize),
				renderStatusLine("Manifest", statusInfo, report.ManifestPath, colorize),
			)
			if report.Name != "" {
				lines = append(lines, renderStatusLine("Name", statusInfo, report.Name, colorize))
			}
			if cfg.Paths.FeedItemsPath != "" && cfg.Paths.FeedItemsPath != report.ManifestPath {
				lines = append(lines, renderStatusLine("Override", statusWarn,
					fmt.Sprintf("rebuild uses paths.feeditems_path %s", cfg.Paths.FeedItemsPath), colorize))
			}
			printLines(out, lines)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the profile as JSON")
	return cmd
}
