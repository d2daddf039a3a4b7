package logging

import (
	"context"
	"log/slog"
	"sync"
)

// Entry is a captured log record with its attributes flattened to strings.
type Entry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

// Attr returns the flattened attribute value for key.
func (e Entry) Attr(key string) (string, bool) {
	value, ok := e.Attrs[key]
	return value, ok
}

// Recorder is a handler that keeps every record it receives in memory.
// The CLI tees into one to count warnings; tests use it to assert on diagnostics.
type Recorder struct {
	state *recorderState
	attrs []slog.Attr
	group []string
}

type recorderState struct {
	mu      sync.Mutex
	level   slog.Level
	entries []Entry
}

// NewRecorder returns a Recorder accepting records at or above level.
func NewRecorder(level slog.Level) *Recorder {
	return &Recorder{state: &recorderState{level: level}}
}

// Logger wraps the recorder in a slog.Logger.
func (r *Recorder) Logger() *slog.Logger {
	return slog.New(r)
}

func (r *Recorder) Enabled(_ context.Context, level slog.Level) bool {
	return level >= r.state.level
}

func (r *Recorder) Handle(_ context.Context, record slog.Record) error {
	kvs := make([]kv, 0, record.NumAttrs()+len(r.attrs))
	flattenAttrs(&kvs, r.group, r.attrs)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&kvs, r.group, attr)
		return true
	})
	attrs := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		attrs[kv.key] = attrString(kv.value)
	}

	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	r.state.entries = append(r.state.entries, Entry{Level: record.Level, Message: record.Message, Attrs: attrs})
	return nil
}

func (r *Recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := &Recorder{state: r.state, group: r.group}
	next.attrs = append(append([]slog.Attr(nil), r.attrs...), attrs...)
	return next
}

func (r *Recorder) WithGroup(name string) slog.Handler {
	return &Recorder{state: r.state, attrs: r.attrs, group: appendPrefix(r.group, name)}
}

// Entries returns a snapshot of every captured record.
func (r *Recorder) Entries() []Entry {
	r.state.mu.Lock()
	defer r.state.mu.Unlock()
	return append([]Entry(nil), r.state.entries...)
}

// AtLevel returns captured records at exactly level.
func (r *Recorder) AtLevel(level slog.Level) []Entry {
	var out []Entry
	for _, entry := range r.Entries() {
		if entry.Level == level {
			out = append(out, entry)
		}
	}
	return out
}

// Count returns the number of captured records at or above level.
func (r *Recorder) Count(level slog.Level) int {
	n := 0
	for _, entry := range r.Entries() {
		if entry.Level >= level {
			n++
		}
	}
	return n
}
