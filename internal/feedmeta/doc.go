// Package feedmeta fetches a feed document and extracts the title and site
// link needed for a subscription record.
//
// Client speaks HTTP(S) and file:// URLs through one http.Client with a
// bounded timeout. Documents are parsed with gofeed, so RSS, Atom and JSON
// Feed are all accepted. A document that cannot be parsed, or that lacks a
// title or site link, is reported as a MalformedError; transport failures
// and error statuses wrap ErrFetch.
package feedmeta
