// Package textutil provides byte-level text helpers shared by the manifest
// parser, the index scanner, and the output writers.
//
// The primary use cases are:
//   - Decoding index files best-effort so substring search never fails on bad bytes
//   - Escaping raw control characters inside JSON strings before strict decoding
//   - Producing ASCII-safe JSON output
package textutil
