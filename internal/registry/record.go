package registry

import (
	"net/http"
	"strings"
	"time"
)

const (
	destinationPrefix = "mailbox://nobody@"
	updateMinutes     = 100
	optionsVersion    = 2
)

// Record is one feeds.json subscription. Field order matches the file
// Thunderbird writes.
type Record struct {
	DestFolder   string  `json:"destFolder"`
	LastModified string  `json:"lastModified"`
	Link         string  `json:"link"`
	Options      Options `json:"options"`
	QuickMode    bool    `json:"quickMode"`
	Title        string  `json:"title"`
	URL          string  `json:"url"`
}

// Options holds per-subscription settings.
type Options struct {
	Category Category `json:"category"`
	Updates  Updates  `json:"updates"`
	Version  int      `json:"version"`
}

// Category controls item category prefixes.
type Category struct {
	Enabled       bool   `json:"enabled"`
	Prefix        string `json:"prefix"`
	PrefixEnabled bool   `json:"prefixEnabled"`
}

// Updates controls the refresh schedule. LastDownloadTime is always null in
// rebuilt records.
type Updates struct {
	Enabled          bool   `json:"enabled"`
	LastDownloadTime *int64 `json:"lastDownloadTime"`
	LastUpdateTime   int64  `json:"lastUpdateTime"`
	UpdateBase       string `json:"updateBase"`
	UpdateFrequency  string `json:"updateFrequency"`
	UpdateMinutes    int    `json:"updateMinutes"`
	UpdatePeriod     string `json:"updatePeriod"`
	UpdateUnits      string `json:"updateUnits"`
}

// Build assembles the record for a resolved and fetched feed. lastSeenMs is
// epoch milliseconds.
func Build(folder, url, title, link string, lastSeenMs int64) Record {
	return Record{
		DestFolder:   Destination(folder),
		LastModified: LastModified(lastSeenMs),
		Link:         link,
		Options: Options{
			Category: Category{},
			Updates: Updates{
				Enabled:        true,
				LastUpdateTime: lastSeenMs,
				UpdateMinutes:  updateMinutes,
				UpdateUnits:    "min",
			},
			Version: optionsVersion,
		},
		Title: title,
		URL:   url,
	}
}

// Destination converts a folder path into a mailbox URI. Only spaces are
// escaped; names such as "C++" must survive untouched.
func Destination(folder string) string {
	return destinationPrefix + strings.ReplaceAll(folder, " ", "%20")
}

// LastModified renders epoch milliseconds as an HTTP date in UTC.
func LastModified(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(http.TimeFormat)
}
