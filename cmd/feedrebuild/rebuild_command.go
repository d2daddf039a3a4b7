package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	pb "github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"feedrebuild/internal/config"
	"feedrebuild/internal/feeditems"
	"feedrebuild/internal/feedmeta"
	"feedrebuild/internal/history"
	"feedrebuild/internal/logging"
	"feedrebuild/internal/mailstore"
	"feedrebuild/internal/rebuild"
	"feedrebuild/internal/registry"
	"feedrebuild/internal/resolve"
)

type rebuildOptions struct {
	feedItemsPath string
	dryRun        bool
	workers       int
	jsonOutput    bool
	noProgress    bool
}

// rebuildSummary is the machine-readable report printed with --json.
type rebuildSummary struct {
	RunID        string            `json:"run_id"`
	ManifestPath string            `json:"manifest_path"`
	OutputPath   string            `json:"output_path,omitempty"`
	PrettyPath   string            `json:"pretty_path,omitempty"`
	DryRun       bool              `json:"dry_run"`
	Stats        rebuild.Stats     `json:"stats"`
	LastSeen     string            `json:"last_seen,omitempty"`
	Incomplete   int               `json:"incomplete_entries"`
	Outcomes     []rebuild.Outcome `json:"outcomes"`
}

func newRebuildCommand(ctx *commandContext) *cobra.Command {
	var opts rebuildOptions

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild feeds.json from feeditems.json and folder index files",
		Long: `Rebuild reads feeditems.json, finds the folder each feed delivered to,
fetches the feed for its title and site link, and writes feeds.json.rebuild
plus feeds.json.rebuild.pretty beside the manifest. Feeds that cannot be
placed or fetched are reported and skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRebuild(cmd, ctx, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.feedItemsPath, "feeditems-path", "f", "", "Path to feeditems.json (default: deduced from the Thunderbird profile)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Resolve and fetch feeds without writing output files")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Concurrent feeds (default: fetch.workers)")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print the run summary as JSON")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Disable the progress bar")
	return cmd
}

func runRebuild(cmd *cobra.Command, ctx *commandContext, opts rebuildOptions) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if opts.workers < 0 {
		return fmt.Errorf("--workers must be positive, got %d", opts.workers)
	}
	workers := cfg.Fetch.Workers
	if opts.workers > 0 {
		workers = opts.workers
	}

	runID := uuid.NewString()
	logger, err := ctx.newLogger(cmd, runID)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	manifestPath, err := ctx.manifestPath(opts.feedItemsPath)
	if err != nil {
		return err
	}
	started := time.Now()
	logger.Info("reading manifest", logging.String("path", manifestPath))
	manifest, err := feeditems.Load(manifestPath)
	if err != nil {
		return err
	}
	reportManifest(logger, manifest)

	feeds := feeditems.AggregateFeeds(manifest)
	for _, url := range feeds.URLs() {
		logger.Debug("found feed", logging.FeedURL(url))
	}

	feedsRoot := filepath.Dir(manifestPath)
	runner := &rebuild.Runner{
		Resolver: resolve.New(newLocator(cmd.Context(), cfg, feedsRoot, logger), cfg.Scan.TrashFolder, logger),
		Fetcher: feedmeta.NewClient(
			feedmeta.WithTimeout(cfg.FetchTimeout()),
			feedmeta.WithUserAgent(cfg.Fetch.UserAgent),
			feedmeta.WithLogger(logger),
		),
		Logger:  logger,
		Workers: workers,
	}
	if bar := newProgressBar(cmd.ErrOrStderr(), feeds.Len(), opts); bar != nil {
		runner.Progress = bar
		defer func() { _ = bar.Finish() }()
	}

	result, err := runner.Run(cmd.Context(), feeds)
	if err != nil {
		return fmt.Errorf("rebuild: %w", err)
	}

	summary := rebuildSummary{
		RunID:        runID,
		ManifestPath: manifestPath,
		DryRun:       opts.dryRun,
		Stats:        result.Stats,
		Incomplete:   len(manifest.Incomplete()),
		Outcomes:     result.Outcomes,
	}
	if result.Stats.MaxLastSeen > 0 {
		summary.LastSeen = registry.LastModified(result.Stats.MaxLastSeen)
	}
	if !opts.dryRun {
		out, err := registry.NewWriter(feedsRoot, logger).Write(result.Records)
		if err != nil {
			return fmt.Errorf("write registry: %w", err)
		}
		summary.OutputPath = out.Path
		summary.PrettyPath = out.PrettyPath
	}

	recordHistory(cmd.Context(), cfg, logger, history.Run{
		ID:           runID,
		StartedAt:    started,
		FinishedAt:   time.Now(),
		ManifestPath: manifestPath,
		OutputPath:   summary.OutputPath,
		DryRun:       opts.dryRun,
		Stats:        result.Stats,
	}, result.Outcomes)

	if opts.jsonOutput {
		return writeJSON(cmd, summary)
	}
	printRebuildSummary(cmd.OutOrStdout(), summary, shouldColorize(cmd.OutOrStdout()))
	return nil
}

func newLocator(ctx context.Context, cfg *config.Config, root string, logger *slog.Logger) mailstore.Locator {
	layout := mailstore.Layout{
		IndexSuffix:     cfg.Scan.IndexSuffix,
		ContainerSuffix: cfg.Scan.ContainerSuffix,
		Marker:          cfg.Scan.FolderMarker,
	}
	if !cfg.Scan.PreloadIndex {
		return mailstore.NewScanner(root, layout, logger)
	}
	index := mailstore.NewIndex(root, layout, logger)
	// Load errors resurface on the first Locate call.
	_ = index.Load(ctx)
	return index
}

func reportManifest(logger *slog.Logger, manifest *feeditems.Manifest) {
	if manifest.RepairedChars > 0 {
		logger.Info("manifest control characters escaped", logging.Int("count", manifest.RepairedChars))
	}
	if incomplete := manifest.Incomplete(); len(incomplete) > 0 {
		logging.WarnWithContext(logger, "manifest entries without feeds",
			"manifest_incomplete",
			logging.Int("entries", len(incomplete)),
			logging.Strings("message_ids", truncateList(incomplete, 5)),
			logging.String(logging.FieldErrorHint, "entries lack feedURLs; their messages cannot be attributed"),
			logging.String(logging.FieldImpact, "entries ignored"),
		)
	}
}

func newProgressBar(w io.Writer, total int, opts rebuildOptions) *pb.ProgressBar {
	if opts.noProgress || opts.jsonOutput || total == 0 || !shouldColorize(w) {
		return nil
	}
	return pb.NewOptions(total,
		pb.OptionSetWriter(w),
		pb.OptionSetDescription("Rebuild"),
		pb.OptionShowCount(),
		pb.OptionClearOnFinish(),
	)
}

func recordHistory(ctx context.Context, cfg *config.Config, logger *slog.Logger, run history.Run, outcomes []rebuild.Outcome) {
	if !cfg.History.Enabled {
		return
	}
	store, err := history.Open(cfg.Paths.HistoryPath)
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable",
			"history_open_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.history_path or disable history.enabled"),
			logging.String(logging.FieldImpact, "run not recorded"),
		)
		return
	}
	defer store.Close()
	if err := store.RecordRun(ctx, run, outcomes); err != nil {
		logging.WarnWithContext(logger, "run history write failed",
			"history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run not recorded"),
		)
	}
}

func printRebuildSummary(w io.Writer, s rebuildSummary, colorize bool) {
	lines := renderSectionHeader("Rebuild summary", colorize)
	lines = append(lines,
		renderStatusLine("Manifest", statusInfo, s.ManifestPath, colorize),
		renderStatusLine("Feeds", statusInfo, fmt.Sprintf("%d", s.Stats.Feeds), colorize),
		renderStatusLine("Recorded", statusOK, fmt.Sprintf("%d", s.Stats.Recorded), colorize),
		renderStatusLine("Unresolved", countStatus(s.Stats.Unresolved, statusWarn), fmt.Sprintf("%d", s.Stats.Unresolved), colorize),
		renderStatusLine("Malformed", countStatus(s.Stats.Malformed, statusWarn), fmt.Sprintf("%d", s.Stats.Malformed), colorize),
		renderStatusLine("Fetch failed", countStatus(s.Stats.FetchFailed, statusWarn), fmt.Sprintf("%d", s.Stats.FetchFailed), colorize),
	)
	if s.LastSeen != "" {
		lines = append(lines, renderStatusLine("Last seen", statusInfo, fmt.Sprintf("%s (%d)", s.LastSeen, s.Stats.MaxLastSeen), colorize))
	}
	if s.DryRun {
		lines = append(lines, renderStatusLine("Output", statusInfo, "dry run, nothing written", colorize))
	} else {
		lines = append(lines, renderStatusLine("Output", statusOK, s.OutputPath, colorize))
	}
	printLines(w, lines)

	var rows [][]string
	for _, o := range s.Outcomes {
		if !o.Status.Skipped() {
			continue
		}
		rows = append(rows, []string{o.URL, string(o.Status), outcomeDetail(o)})
	}
	if len(rows) == 0 {
		return
	}
	fmt.Fprintln(w)
	printLines(w, renderSectionHeader("Skipped feeds", colorize))
	fmt.Fprintln(w, renderTable([]string{"Feed", "Status", "Detail"}, rows, []columnAlignment{alignLeft, alignLeft, alignLeft}))
}

func outcomeDetail(o rebuild.Outcome) string {
	if o.Status == rebuild.StatusUnresolved {
		if len(o.Candidates) == 0 {
			return "no folder found"
		}
		return fmt.Sprintf("%d folders: %s", len(o.Candidates), joinList(o.Candidates))
	}
	return o.Detail
}
