package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"feedrebuild/internal/config"
	"feedrebuild/internal/feeditems"
	"feedrebuild/internal/logging"
	"feedrebuild/internal/resolve"
)

func newLocateCommand(ctx *commandContext) *cobra.Command {
	var rootFlag string
	var feedItemsPath string
	var resolveFlag bool

	cmd := &cobra.Command{
		Use:   "locate NEEDLE",
		Short: "List folders whose index files mention NEEDLE",
		Long: `Locate searches every folder index file below the feeds root for NEEDLE,
typically a feed URL or message id, and prints the matching folders. With
--resolve it applies the rebuild rules instead, including the fallback to the
feed's message ids from the manifest, and prints the single folder a feed
would be bound to.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			root := strings.TrimSpace(rootFlag)
			var manifestPath string
			if root == "" || resolveFlag {
				if manifestPath, err = ctx.manifestPath(feedItemsPath); err != nil {
					return err
				}
			}
			if root != "" {
				if root, err = config.ExpandPath(root); err != nil {
					return err
				}
			} else {
				root = filepath.Dir(manifestPath)
			}

			logger, err := ctx.newLogger(cmd, "")
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			locator := newLocator(cmd.Context(), cfg, root, logger)
			out := cmd.OutOrStdout()

			if resolveFlag {
				messages, err := feedMessages(manifestPath, args[0])
				if err != nil {
					return err
				}
				resolver := resolve.New(locator, cfg.Scan.TrashFolder, logging.NewNop())
				res, err := resolver.Resolve(cmd.Context(), args[0], messages)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t(%s)\n", res.Folder, res.Strategy)
				return nil
			}

			found, err := locator.Locate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Fprintf(out, "No folders under %s mention %q\n", root, args[0])
				return nil
			}
			for _, folder := range found.Strings() {
				fmt.Fprintln(out, folder)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rootFlag, "root", "", "Feeds root to search (default: directory of the manifest)")
	cmd.Flags().StringVarP(&feedItemsPath, "feeditems-path", "f", "", "Manifest whose directory is searched")
	cmd.Flags().BoolVar(&resolveFlag, "resolve", false, "Apply trash exclusion and the single-folder rule, falling back to the feed's message ids from the manifest")
	return cmd
}

// feedMessages returns the message ids the manifest lists for url. A missing
// manifest yields none, leaving only the URL search.
func feedMessages(manifestPath, url string) ([]string, error) {
	manifest, err := feeditems.Load(manifestPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if agg, ok := feeditems.AggregateFeeds(manifest).Get(url); ok {
		return agg.Messages, nil
	}
	return nil, nil
}
