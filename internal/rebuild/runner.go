package rebuild

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"feedrebuild/internal/feeditems"
	"feedrebuild/internal/feedmeta"
	"feedrebuild/internal/logging"
	"feedrebuild/internal/registry"
	"feedrebuild/internal/resolve"
)

// DefaultWorkers bounds concurrent feeds when Runner.Workers is unset.
const DefaultWorkers = 4

// FolderResolver binds a feed to its folder.
type FolderResolver interface {
	Resolve(ctx context.Context, url string, messages []string) (resolve.Resolution, error)
}

// Progress receives one tick per finished feed.
type Progress interface {
	Add(n int) error
}

// Runner rebuilds registry records for a set of feeds.
type Runner struct {
	Resolver FolderResolver
	Fetcher  feedmeta.Fetcher
	Logger   *slog.Logger
	// Workers bounds concurrency; 1 processes feeds sequentially.
	Workers  int
	Progress Progress
}

type slot struct {
	outcome Outcome
	record  *registry.Record
}

// Run processes every feed. Per-feed failures become outcomes; the returned
// error is non-nil only for cancellation or locator failures.
func (r *Runner) Run(ctx context.Context, feeds *feeditems.Feeds) (Result, error) {
	logger := logging.NewComponentLogger(r.Logger, "rebuild")
	aggregates := feeds.All()
	slots := make([]slot, len(aggregates))

	workers := r.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	started := time.Now()
	logger.Info("rebuild started",
		logging.Int("feeds", len(aggregates)),
		logging.Int("workers", workers),
	)

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, agg := range aggregates {
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := r.processFeed(gctx, logger, agg)
			if err != nil {
				return err
			}
			slots[i] = s
			r.tick()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Result{}, err
	}

	result := Result{Outcomes: make([]Outcome, 0, len(slots))}
	for _, s := range slots {
		result.Outcomes = append(result.Outcomes, s.outcome)
		if s.record != nil {
			result.Records = append(result.Records, *s.record)
		}
	}
	result.Stats = summarize(result.Outcomes, feeds.MaxLastSeen())

	logger.Info("rebuild finished",
		logging.Int("feeds", result.Stats.Feeds),
		logging.Int("recorded", result.Stats.Recorded),
		logging.Int("unresolved", result.Stats.Unresolved),
		logging.Int("malformed", result.Stats.Malformed),
		logging.Int("fetch_failed", result.Stats.FetchFailed),
		logging.Int64("max_last_seen", result.Stats.MaxLastSeen),
		logging.Duration("elapsed", time.Since(started)),
	)
	return result, nil
}

func (r *Runner) processFeed(ctx context.Context, logger *slog.Logger, agg *feeditems.Aggregate) (slot, error) {
	outcome := Outcome{
		URL:          agg.URL,
		Messages:     len(agg.Messages),
		LastSeenTime: agg.LastSeenTime,
	}

	resolution, err := r.Resolver.Resolve(ctx, agg.URL, agg.Messages)
	if err != nil {
		var unresolved *resolve.UnresolvedError
		if !errors.As(err, &unresolved) {
			return slot{}, err
		}
		outcome.Status = StatusUnresolved
		outcome.Candidates = folderStrings(unresolved)
		outcome.Detail = unresolved.Error()
		return slot{outcome: outcome}, nil
	}
	outcome.Folder = string(resolution.Folder)

	meta, err := r.Fetcher.Fetch(ctx, agg.URL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return slot{}, ctxErr
		}
		outcome.Detail = err.Error()
		if errors.Is(err, feedmeta.ErrMalformed) {
			outcome.Status = StatusMalformed
			logging.WarnWithContext(logger, "feed document malformed",
				"feed_malformed",
				logging.FeedURL(agg.URL),
				logging.String("folder", outcome.Folder),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the feed still publishes RSS or Atom with a title and link"),
			)
			return slot{outcome: outcome}, nil
		}
		outcome.Status = StatusFetchFailed
		logging.WarnWithContext(logger, "feed fetch failed",
			"feed_fetch_failed",
			logging.FeedURL(agg.URL),
			logging.String("folder", outcome.Folder),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check network access or whether the feed moved"),
		)
		return slot{outcome: outcome}, nil
	}

	record := registry.Build(outcome.Folder, agg.URL, meta.Title, meta.SiteLink, agg.LastSeenTime)
	outcome.Status = StatusRecorded
	outcome.Title = meta.Title
	logger.Info("feed recorded",
		logging.FeedURL(agg.URL),
		logging.String("folder", outcome.Folder),
		logging.String("title", meta.Title),
		logging.String("last_modified", record.LastModified),
	)
	return slot{outcome: outcome, record: &record}, nil
}

func (r *Runner) tick() {
	if r.Progress == nil {
		return
	}
	_ = r.Progress.Add(1)
}

func folderStrings(err *resolve.UnresolvedError) []string {
	out := make([]string, len(err.Candidates))
	for i, c := range err.Candidates {
		out[i] = string(c)
	}
	return out
}
