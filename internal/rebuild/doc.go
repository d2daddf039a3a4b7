// Package rebuild drives the per-feed pipeline: resolve the folder, fetch
// metadata, build the registry record.
//
// Feeds are processed on a bounded worker pool. Each feed writes into its own
// slot so records and outcomes come back in manifest order whatever the
// worker count. A feed that cannot be resolved or fetched is recorded as a
// skipped outcome and never aborts the batch; only cancellation and locator
// I/O failures stop a run.
package rebuild
