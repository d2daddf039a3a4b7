// Package registry builds feed subscription records in the shape of
// Thunderbird's feeds.json and writes the rebuilt registry to disk.
package registry
