package resolve_test

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"testing"

	"feedrebuild/internal/logging"
	"feedrebuild/internal/mailstore"
	"feedrebuild/internal/resolve"
	"feedrebuild/internal/testsupport"
)

type fakeLocator struct {
	results map[string][]mailstore.FolderPath
	calls   []string
	err     error
}

func (f *fakeLocator) Locate(_ context.Context, needle string) (mailstore.FolderSet, error) {
	f.calls = append(f.calls, needle)
	if f.err != nil {
		return nil, f.err
	}
	return mailstore.NewFolderSet(f.results[needle]...), nil
}

func TestResolveByURL(t *testing.T) {
	locator := &fakeLocator{results: map[string][]mailstore.FolderPath{
		"http://a.com/rss": {"Feeds/News"},
	}}
	resolver := resolve.New(locator, "Feeds/Trash", nil)

	res, err := resolver.Resolve(context.Background(), "http://a.com/rss", []string{"m1"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Folder != "Feeds/News" || res.Strategy != resolve.StrategyURL {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if !slices.Equal(locator.calls, []string{"http://a.com/rss"}) {
		t.Fatalf("fallback should not run when url matches, calls=%v", locator.calls)
	}
}

func TestResolveFallsBackToMessages(t *testing.T) {
	locator := &fakeLocator{results: map[string][]mailstore.FolderPath{
		"m1": {"Feeds/Blogs"},
		"m2": {"Feeds/Blogs"},
	}}
	resolver := resolve.New(locator, "Feeds/Trash", nil)

	res, err := resolver.Resolve(context.Background(), "http://b.com/atom", []string{"m1", "m2", "m3"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Folder != "Feeds/Blogs" || res.Strategy != resolve.StrategyMessages {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if !slices.Equal(locator.calls, []string{"http://b.com/atom", "m1", "m2", "m3"}) {
		t.Fatalf("unexpected search order: %v", locator.calls)
	}
}

func TestResolveExcludesTrash(t *testing.T) {
	locator := &fakeLocator{results: map[string][]mailstore.FolderPath{
		"u": {"Feeds/Trash", "Feeds/Trash/Old", "Feeds/News", "Feeds/Trashcan"},
		"v": {"Feeds/Trash", "Feeds/Trash/Old"},
	}}
	resolver := resolve.New(locator, "Feeds/Trash", nil)

	_, err := resolver.Resolve(context.Background(), "u", nil)
	var unresolved *resolve.UnresolvedError
	if !errors.As(err, &unresolved) {
		t.Fatalf("expected UnresolvedError, got %v", err)
	}
	if !slices.Equal(unresolved.Candidates, []mailstore.FolderPath{"Feeds/News", "Feeds/Trashcan"}) {
		t.Fatalf("trash subtree not excluded: %v", unresolved.Candidates)
	}

	_, err = resolver.Resolve(context.Background(), "v", nil)
	if !errors.As(err, &unresolved) || len(unresolved.Candidates) != 0 {
		t.Fatalf("expected zero candidates after trash exclusion, got %v", err)
	}
}

func TestResolveTrashOnlyURLDoesNotFallBack(t *testing.T) {
	locator := &fakeLocator{results: map[string][]mailstore.FolderPath{
		"u":  {"Feeds/Trash"},
		"m1": {"Feeds/News"},
	}}
	resolver := resolve.New(locator, "Feeds/Trash", nil)

	_, err := resolver.Resolve(context.Background(), "u", []string{"m1"})
	if !errors.Is(err, resolve.ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
}

func TestResolveAmbiguityIsNeverBroken(t *testing.T) {
	locator := &fakeLocator{results: map[string][]mailstore.FolderPath{
		"m1": {"Feeds/A"},
		"m2": {"Feeds/B"},
	}}
	recorder := logging.NewRecorder(slog.LevelInfo)
	resolver := resolve.New(locator, "Feeds/Trash", recorder.Logger())

	for range 3 {
		_, err := resolver.Resolve(context.Background(), "u", []string{"m1", "m2"})
		var unresolved *resolve.UnresolvedError
		if !errors.As(err, &unresolved) {
			t.Fatalf("expected UnresolvedError, got %v", err)
		}
		if !slices.Equal(unresolved.Candidates, []mailstore.FolderPath{"Feeds/A", "Feeds/B"}) {
			t.Fatalf("unexpected candidates: %v", unresolved.Candidates)
		}
	}

	warnings := recorder.AtLevel(slog.LevelWarn)
	if len(warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %d", len(warnings))
	}
	if v, _ := warnings[0].Attr("candidate_count"); v != "2" {
		t.Fatalf("unexpected candidate_count %q", v)
	}
	if v, _ := warnings[0].Attr(logging.FieldFeedURL); v != "u" {
		t.Fatalf("unexpected feed url %q", v)
	}
	if v, _ := warnings[0].Attr(logging.FieldComponent); v != "resolve" {
		t.Fatalf("unexpected component %q", v)
	}
}

func TestResolveNoCandidates(t *testing.T) {
	resolver := resolve.New(&fakeLocator{}, "Feeds/Trash", nil)
	_, err := resolver.Resolve(context.Background(), "u", nil)
	if !errors.Is(err, resolve.ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
	if err.Error() != "feed u: no folder found" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestResolvePropagatesLocatorErrors(t *testing.T) {
	boom := errors.New("boom")
	resolver := resolve.New(&fakeLocator{err: boom}, "Feeds/Trash", nil)
	_, err := resolver.Resolve(context.Background(), "u", nil)
	if !errors.Is(err, boom) || errors.Is(err, resolve.ErrUnresolved) {
		t.Fatalf("expected locator error, got %v", err)
	}
}

func TestResolveAgainstScanner(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteIndex(t, root, "News.sbd/News.msf", "http://a.com/rss")
	testsupport.WriteIndex(t, root, "Trash.sbd/Old.msf", "http://a.com/rss")

	resolver := resolve.New(mailstore.NewScanner(root, mailstore.DefaultLayout, nil), "Feeds/Trash", nil)
	res, err := resolver.Resolve(context.Background(), "http://a.com/rss", nil)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Folder != "Feeds/News/News" {
		t.Fatalf("unexpected folder %q", res.Folder)
	}
	if !slices.Equal(res.Excluded, []mailstore.FolderPath{"Feeds/Trash/Old"}) {
		t.Fatalf("unexpected excluded folders: %v", res.Excluded)
	}
}
