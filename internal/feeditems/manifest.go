package feeditems

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"feedrebuild/internal/textutil"
)

// ErrCorruptManifest marks a manifest that cannot be parsed even leniently.
var ErrCorruptManifest = errors.New("feeditems: corrupt manifest")

// Entry is one manifest record: a message and the feeds it was downloaded from.
type Entry struct {
	MessageID    string
	FeedURLs     []string
	LastSeenTime int64
}

// Manifest holds manifest entries in document order.
type Manifest struct {
	Entries []Entry
	// RepairedChars counts control characters escaped before decoding.
	RepairedChars int
}

// Incomplete returns the message identifiers whose entry names no feed.
func (m *Manifest) Incomplete() []string {
	var ids []string
	for _, entry := range m.Entries {
		if len(entry.FeedURLs) == 0 {
			ids = append(ids, entry.MessageID)
		}
	}
	return ids
}

type rawEntry struct {
	FeedURLs     []string    `json:"feedURLs"`
	LastSeenTime json.Number `json:"lastSeenTime"`
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes manifest bytes. Invalid UTF-8 is replaced and raw control
// characters inside strings are escaped; anything else that breaks the JSON
// object structure yields an error wrapping ErrCorruptManifest.
func Parse(data []byte) (*Manifest, error) {
	text := []byte(textutil.DecodeBestEffort(data))
	sanitized, repaired := textutil.EscapeControlChars(text)

	dec := json.NewDecoder(bytes.NewReader(sanitized))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	manifest := &Manifest{RepairedChars: repaired}
	positions := make(map[string]int)
	for dec.More() {
		token, err := dec.Token()
		if err != nil {
			return nil, corrupt("read message id", err)
		}
		messageID, ok := token.(string)
		if !ok {
			return nil, corrupt("read message id", fmt.Errorf("unexpected token %v", token))
		}

		var raw *rawEntry
		if err := dec.Decode(&raw); err != nil {
			return nil, corrupt(fmt.Sprintf("decode entry %q", messageID), err)
		}
		entry := Entry{MessageID: messageID}
		if raw != nil {
			lastSeen, err := parseTimestamp(raw.LastSeenTime)
			if err != nil {
				return nil, corrupt(fmt.Sprintf("entry %q lastSeenTime", messageID), err)
			}
			entry.FeedURLs = raw.FeedURLs
			entry.LastSeenTime = lastSeen
		}

		// A repeated key keeps its first position and its last value.
		if pos, exists := positions[messageID]; exists {
			manifest.Entries[pos] = entry
			continue
		}
		positions[messageID] = len(manifest.Entries)
		manifest.Entries = append(manifest.Entries, entry)
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, corrupt("trailing data", err)
	}
	return manifest, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	token, err := dec.Token()
	if err != nil {
		return corrupt(fmt.Sprintf("expect %q", want), err)
	}
	if delim, ok := token.(json.Delim); !ok || delim != want {
		return corrupt(fmt.Sprintf("expect %q", want), fmt.Errorf("unexpected token %v", token))
	}
	return nil
}

func parseTimestamp(value json.Number) (int64, error) {
	if value == "" {
		return 0, nil
	}
	if n, err := value.Int64(); err == nil {
		return n, nil
	}
	f, err := value.Float64()
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid timestamp %s", value)
	}
	return int64(f), nil
}

func corrupt(step string, err error) error {
	if err == nil {
		err = errors.New("unexpected token")
	}
	return fmt.Errorf("%w: %s: %v", ErrCorruptManifest, step, err)
}
