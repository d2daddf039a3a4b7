// Package resolve binds a feed to the single mailbox folder holding its
// messages.
//
// The feed URL is searched first; when no index file mentions it, every
// message identifier the manifest recorded for the feed is searched and the
// results are unioned. Trash folders are dropped and the feed resolves only
// when exactly one folder remains. Ambiguity is never broken by guessing.
package resolve
