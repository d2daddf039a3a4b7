package mailstore

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
)

// FolderPath is a normalized, profile-relative folder path such as
// "Feeds/News" or "Feeds/Blogs/Tech".
type FolderPath string

// Locator answers which folders reference needle.
type Locator interface {
	Locate(ctx context.Context, needle string) (FolderSet, error)
}

// FolderSet is a set of folder paths.
type FolderSet map[FolderPath]struct{}

// NewFolderSet returns a set holding paths.
func NewFolderSet(paths ...FolderPath) FolderSet {
	set := make(FolderSet, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return set
}

// Add inserts p.
func (s FolderSet) Add(p FolderPath) {
	s[p] = struct{}{}
}

// Has reports whether p is present.
func (s FolderSet) Has(p FolderPath) bool {
	_, ok := s[p]
	return ok
}

// Union adds every member of other.
func (s FolderSet) Union(other FolderSet) {
	for p := range other {
		s[p] = struct{}{}
	}
}

// Sorted returns members in lexical order.
func (s FolderSet) Sorted() []FolderPath {
	out := make([]FolderPath, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// Strings returns members as sorted strings.
func (s FolderSet) Strings() []string {
	sorted := s.Sorted()
	out := make([]string, len(sorted))
	for i, p := range sorted {
		out[i] = string(p)
	}
	return out
}

// Layout names the suffixes and marker used to turn index file paths into
// folder paths.
type Layout struct {
	IndexSuffix     string
	ContainerSuffix string
	Marker          string
}

// DefaultLayout matches Thunderbird's on-disk layout for feed accounts.
var DefaultLayout = Layout{IndexSuffix: ".msf", ContainerSuffix: ".sbd", Marker: "Feeds"}

func (l Layout) withDefaults() Layout {
	if l.IndexSuffix == "" {
		l.IndexSuffix = DefaultLayout.IndexSuffix
	}
	if l.ContainerSuffix == "" {
		l.ContainerSuffix = DefaultLayout.ContainerSuffix
	}
	if l.Marker == "" {
		l.Marker = DefaultLayout.Marker
	}
	return l
}

// FolderPathFor converts an index file below root into a folder path using
// the default layout with the given marker.
func FolderPathFor(root, file, marker string) (FolderPath, error) {
	layout := DefaultLayout
	if marker != "" {
		layout.Marker = marker
	}
	return layout.FolderPath(root, file)
}

// FolderPath converts an index file below root into "<marker>/<rel>", with the
// container suffix stripped from every directory segment and the index suffix
// stripped from the file name. Separators are always forward slashes.
func (l Layout) FolderPath(root, file string) (FolderPath, error) {
	l = l.withDefaults()
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return "", err
	}
	segments := strings.Split(filepath.ToSlash(rel), "/")
	last := len(segments) - 1
	for i, segment := range segments {
		if i == last {
			segments[i] = strings.TrimSuffix(segment, l.IndexSuffix)
			continue
		}
		segments[i] = strings.TrimSuffix(segment, l.ContainerSuffix)
	}
	return FolderPath(l.Marker + "/" + strings.Join(segments, "/")), nil
}
