// Command feedrebuild reconstructs Thunderbird's feeds.json from the
// feeditems.json manifest and the folder index files of a feeds account.
//
// Subcommands:
//   - rebuild: resolve, fetch and write feeds.json.rebuild beside the manifest
//   - profile: show the deduced profile, feeds root and manifest path
//   - locate: list folders whose index files mention a string
//   - history: list previous runs and their per-feed outcomes
//   - config: create or validate the configuration file
package main
