// Package logging assembles structured slog loggers and formatting helpers used
// across feedrebuild.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes component loggers so every package tags its lines the same
// way. Per-feed diagnostics carry the feed URL under FieldFeedURL and the run
// identifier under FieldRunID, which lets a single run log be filtered down to
// one subscription.
//
// Components never reach for a process-wide logger: they accept a
// *slog.Logger and fall back to NewNop. Tests capture diagnostics with
// NewRecorder instead of scraping stdout.
package logging
