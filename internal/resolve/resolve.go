package resolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"feedrebuild/internal/logging"
	"feedrebuild/internal/mailstore"
)

// ErrUnresolved marks a feed that maps to zero or several folders.
var ErrUnresolved = errors.New("feed folder unresolved")

// Strategy names how candidates were found.
type Strategy string

const (
	// StrategyURL means the feed URL itself matched.
	StrategyURL Strategy = "url"
	// StrategyMessages means the message-id fallback produced the candidates.
	StrategyMessages Strategy = "messages"
)

// UnresolvedError reports the candidate folders left after trash exclusion.
type UnresolvedError struct {
	URL        string
	Candidates []mailstore.FolderPath
}

func (e *UnresolvedError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("feed %s: no folder found", e.URL)
	}
	return fmt.Sprintf("feed %s: %d candidate folders (%s)", e.URL, len(e.Candidates), strings.Join(e.candidateStrings(), ", "))
}

func (e *UnresolvedError) Unwrap() error { return ErrUnresolved }

// Resolution is a successfully bound feed.
type Resolution struct {
	Folder   mailstore.FolderPath
	Strategy Strategy
	// Excluded lists trash folders dropped from the candidates.
	Excluded []mailstore.FolderPath
}

// Resolver implements PrimaryThenFallbackSearch over a Locator.
type Resolver struct {
	Locator mailstore.Locator
	// Trash is the folder whose subtree never receives a feed.
	Trash  mailstore.FolderPath
	Logger *slog.Logger
}

// New returns a Resolver with a component logger.
func New(locator mailstore.Locator, trash string, logger *slog.Logger) *Resolver {
	return &Resolver{
		Locator: locator,
		Trash:   mailstore.FolderPath(strings.TrimSuffix(trash, "/")),
		Logger:  logging.NewComponentLogger(logger, "resolve"),
	}
}

// Resolve locates the folder for url. Unresolved feeds return an
// *UnresolvedError and are logged as warnings; locator failures are
// returned unchanged.
func (r *Resolver) Resolve(ctx context.Context, url string, messages []string) (Resolution, error) {
	candidates, strategy, err := r.search(ctx, url, messages)
	if err != nil {
		return Resolution{}, err
	}

	var remaining, excluded []mailstore.FolderPath
	for _, folder := range candidates.Sorted() {
		if r.isTrash(folder) {
			excluded = append(excluded, folder)
			continue
		}
		remaining = append(remaining, folder)
	}

	if len(remaining) != 1 {
		unresolved := &UnresolvedError{URL: url, Candidates: remaining}
		logging.WarnWithContext(r.logger(), "feed folder unresolved",
			"feed_unresolved",
			logging.FeedURL(url),
			logging.Int("candidate_count", len(remaining)),
			logging.Strings("candidates", unresolved.candidateStrings()),
			logging.String("strategy", string(strategy)),
			logging.String(logging.FieldErrorHint, unresolvedHint(len(remaining))),
		)
		return Resolution{}, unresolved
	}

	r.logger().Debug("feed folder resolved",
		logging.FeedURL(url),
		logging.String("folder", string(remaining[0])),
		logging.String("strategy", string(strategy)),
	)
	return Resolution{Folder: remaining[0], Strategy: strategy, Excluded: excluded}, nil
}

func (r *Resolver) search(ctx context.Context, url string, messages []string) (mailstore.FolderSet, Strategy, error) {
	found, err := r.Locator.Locate(ctx, url)
	if err != nil {
		return nil, StrategyURL, fmt.Errorf("locate feed %s: %w", url, err)
	}
	if len(found) > 0 {
		return found, StrategyURL, nil
	}

	union := mailstore.NewFolderSet()
	for _, id := range messages {
		matches, err := r.Locator.Locate(ctx, id)
		if err != nil {
			return nil, StrategyMessages, fmt.Errorf("locate message %s: %w", id, err)
		}
		union.Union(matches)
	}
	return union, StrategyMessages, nil
}

func (r *Resolver) isTrash(folder mailstore.FolderPath) bool {
	if r.Trash == "" {
		return false
	}
	return folder == r.Trash || strings.HasPrefix(string(folder), string(r.Trash)+"/")
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger == nil {
		return logging.NewNop()
	}
	return r.Logger
}

func (e *UnresolvedError) candidateStrings() []string {
	out := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		out[i] = string(c)
	}
	return out
}

func unresolvedHint(count int) string {
	if count == 0 {
		return "no index file mentions the feed or its messages; subscribe manually"
	}
	return "feed appears in several folders; pick one and subscribe manually"
}
