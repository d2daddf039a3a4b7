// Package profile locates the default Thunderbird profile from profiles.ini.
package profile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

const (
	profilesFile = "profiles.ini"
	// ManifestName is the feed-items manifest inside the feeds root.
	ManifestName = "feeditems.json"
)

// ErrProfileNotFound is returned when no default profile can be deduced.
var ErrProfileNotFound = errors.New("thunderbird profile not found")

// Source records which profiles.ini rule picked the profile.
type Source string

const (
	SourceProfileDefault Source = "profile_default"
	SourceInstallDefault Source = "install_default"
	SourceOnlyProfile    Source = "only_profile"
)

// Profile is a deduced Thunderbird profile.
type Profile struct {
	Name    string
	Dir     string
	Section string
	Source  Source
}

// FeedsRoot returns the directory holding the manifest and folder index
// files for the feeds account named marker.
func (p Profile) FeedsRoot(marker string) string {
	return FeedsRoot(p.Dir, marker)
}

// ManifestPath returns the feeditems.json path for the feeds account.
func (p Profile) ManifestPath(marker string) string {
	return filepath.Join(p.FeedsRoot(marker), ManifestName)
}

// FeedsRoot returns <profileDir>/Mail/<marker>.
func FeedsRoot(profileDir, marker string) string {
	return filepath.Join(profileDir, "Mail", marker)
}

type entry struct {
	section    string
	name       string
	path       string
	isRelative bool
	isDefault  bool
}

// Deduce reads <thunderbirdDir>/profiles.ini and picks the default profile.
// A Profile section flagged Default wins; otherwise the Default of an Install
// section is used; otherwise a lone profile is taken.
func Deduce(thunderbirdDir string) (Profile, error) {
	path := filepath.Join(thunderbirdDir, profilesFile)
	if _, err := os.Stat(path); err != nil {
		return Profile{}, fmt.Errorf("%w: %s: %w", ErrProfileNotFound, path, err)
	}
	cfg, err := ini.Load(path)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: parse %s: %w", ErrProfileNotFound, path, err)
	}

	var (
		profiles       []entry
		installDefault string
	)
	for _, section := range cfg.Sections() {
		name := section.Name()
		switch {
		case strings.HasPrefix(name, "Profile"):
			p := section.Key("Path").String()
			if strings.TrimSpace(p) == "" {
				continue
			}
			profiles = append(profiles, entry{
				section:    name,
				name:       section.Key("Name").String(),
				path:       p,
				isRelative: section.Key("IsRelative").MustBool(true),
				isDefault:  section.Key("Default").MustBool(false),
			})
		case strings.HasPrefix(name, "Install") && installDefault == "":
			installDefault = strings.TrimSpace(section.Key("Default").String())
		}
	}

	for _, p := range profiles {
		if p.isDefault {
			return p.resolve(thunderbirdDir, SourceProfileDefault), nil
		}
	}
	if installDefault != "" {
		for _, p := range profiles {
			if p.path == installDefault {
				return p.resolve(thunderbirdDir, SourceInstallDefault), nil
			}
		}
		return entry{section: "Install", path: installDefault, isRelative: !filepath.IsAbs(installDefault)}.
			resolve(thunderbirdDir, SourceInstallDefault), nil
	}
	if len(profiles) == 1 {
		return profiles[0].resolve(thunderbirdDir, SourceOnlyProfile), nil
	}
	return Profile{}, fmt.Errorf("%w: no default among %d profiles in %s", ErrProfileNotFound, len(profiles), path)
}

func (e entry) resolve(thunderbirdDir string, source Source) Profile {
	dir := filepath.FromSlash(e.path)
	if e.isRelative && !filepath.IsAbs(dir) {
		dir = filepath.Join(thunderbirdDir, dir)
	}
	return Profile{Name: e.name, Dir: dir, Section: e.section, Source: source}
}
