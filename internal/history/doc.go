// Package history persists a record of every rebuild run in SQLite so past
// runs and their per-feed outcomes can be reviewed with `feedrebuild history`.
package history
