// Package mailstore finds the mailbox folders whose index files mention a
// given string.
//
// Index files (*.msf) are treated as opaque text: they are decoded
// best-effort and searched by substring. Scanner walks the tree on every
// call; Index reads it once and memoizes answers. Both return the same
// folder sets for the same tree.
package mailstore
