// Package feeditems reads Thunderbird's feeditems.json manifest and folds it
// into one aggregate per feed URL.
//
// The manifest maps message identifiers to the feeds that produced them. It
// is frequently damaged: raw control characters inside strings are repaired
// before decoding, while structural corruption is reported as
// ErrCorruptManifest. Entry order is preserved because it decides the order
// of the rebuilt subscription list.
package feeditems
