package feeditems

// Aggregate collects every message a feed produced and the newest time any of
// them was seen.
type Aggregate struct {
	URL      string
	Messages []string
	// LastSeenTime is in epoch milliseconds.
	LastSeenTime int64
}

// Feeds maps feed URLs to aggregates, remembering first-seen order.
type Feeds struct {
	order []string
	byURL map[string]*Aggregate
}

// AggregateFeeds folds manifest entries into per-feed aggregates. A feed listed by
// N entries ends up with N message identifiers, duplicates included.
func AggregateFeeds(m *Manifest) *Feeds {
	feeds := &Feeds{byURL: make(map[string]*Aggregate)}
	if m == nil {
		return feeds
	}
	for _, entry := range m.Entries {
		for _, url := range entry.FeedURLs {
			agg, ok := feeds.byURL[url]
			if !ok {
				agg = &Aggregate{URL: url}
				feeds.byURL[url] = agg
				feeds.order = append(feeds.order, url)
			}
			agg.Messages = append(agg.Messages, entry.MessageID)
			agg.LastSeenTime = max(agg.LastSeenTime, entry.LastSeenTime)
		}
	}
	return feeds
}

// Len returns the number of distinct feeds.
func (f *Feeds) Len() int {
	return len(f.order)
}

// URLs returns feed URLs in first-seen order.
func (f *Feeds) URLs() []string {
	return append([]string(nil), f.order...)
}

// Get returns the aggregate for url.
func (f *Feeds) Get(url string) (*Aggregate, bool) {
	agg, ok := f.byURL[url]
	return agg, ok
}

// All returns aggregates in first-seen order.
func (f *Feeds) All() []*Aggregate {
	out := make([]*Aggregate, 0, len(f.order))
	for _, url := range f.order {
		out = append(out, f.byURL[url])
	}
	return out
}

// MaxLastSeen returns the newest LastSeenTime across all feeds, or 0.
func (f *Feeds) MaxLastSeen() int64 {
	var latest int64
	for _, agg := range f.byURL {
		latest = max(latest, agg.LastSeenTime)
	}
	return latest
}
