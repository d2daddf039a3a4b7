package profile_test

import (
	"errors"
	"path/filepath"
	"testing"

	"feedrebuild/internal/profile"
	"feedrebuild/internal/testsupport"
)

func writeProfiles(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "profiles.ini"), []byte(body))
	return dir
}

func TestDeduceProfileDefault(t *testing.T) {
	dir := writeProfiles(t, `[General]
StartWithLastProfile=1

[Profile1]
Name=work
IsRelative=1
Path=abcd.work

[Profile0]
Name=default
IsRelative=1
Path=wxyz.default
Default=1
`)
	got, err := profile.Deduce(dir)
	if err != nil {
		t.Fatalf("Deduce: %v", err)
	}
	if got.Dir != filepath.Join(dir, "wxyz.default") || got.Name != "default" {
		t.Fatalf("unexpected profile %+v", got)
	}
	if got.Source != profile.SourceProfileDefault || got.Section != "Profile0" {
		t.Fatalf("unexpected source %+v", got)
	}
	if want := filepath.Join(dir, "wxyz.default", "Mail", "Feeds", "feeditems.json"); got.ManifestPath("Feeds") != want {
		t.Fatalf("ManifestPath = %s, want %s", got.ManifestPath("Feeds"), want)
	}
}

func TestDeduceInstallDefault(t *testing.T) {
	dir := writeProfiles(t, `[Install4F96D1932A9F858E]
Default=abcd.release
Locked=1

[Profile0]
Name=old
IsRelative=1
Path=old.default

[Profile1]
Name=release
IsRelative=1
Path=abcd.release
`)
	got, err := profile.Deduce(dir)
	if err != nil {
		t.Fatalf("Deduce: %v", err)
	}
	if got.Dir != filepath.Join(dir, "abcd.release") || got.Source != profile.SourceInstallDefault {
		t.Fatalf("unexpected profile %+v", got)
	}
}

func TestDeduceAbsolutePath(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "elsewhere")
	dir := writeProfiles(t, "[Profile0]\nName=x\nIsRelative=0\nPath="+filepath.ToSlash(abs)+"\nDefault=1\n")
	got, err := profile.Deduce(dir)
	if err != nil {
		t.Fatalf("Deduce: %v", err)
	}
	if got.Dir != abs {
		t.Fatalf("expected absolute dir %s, got %s", abs, got.Dir)
	}
}

func TestDeduceSingleProfile(t *testing.T) {
	dir := writeProfiles(t, "[Profile0]\nName=only\nPath=only.default\n")
	got, err := profile.Deduce(dir)
	if err != nil {
		t.Fatalf("Deduce: %v", err)
	}
	if got.Source != profile.SourceOnlyProfile || got.Dir != filepath.Join(dir, "only.default") {
		t.Fatalf("unexpected profile %+v", got)
	}
}

func TestDeduceFailures(t *testing.T) {
	cases := map[string]string{
		"ambiguous": "[Profile0]\nPath=a\n\n[Profile1]\nPath=b\n",
		"empty":     "[General]\nVersion=2\n",
		"no path":   "[Profile0]\nName=x\nDefault=1\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := profile.Deduce(writeProfiles(t, body))
			if !errors.Is(err, profile.ErrProfileNotFound) {
				t.Fatalf("expected ErrProfileNotFound, got %v", err)
			}
		})
	}

	_, err := profile.Deduce(t.TempDir())
	if !errors.Is(err, profile.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound for missing profiles.ini, got %v", err)
	}
}
