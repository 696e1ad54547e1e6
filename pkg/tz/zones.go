// Package tz enumerates IANA timezones for the registration form's
// timezone picker.
package tz

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// Zone is one picker entry: the IANA name plus a human-readable UTC
// offset label like "+01:00".
type Zone struct {
	Name   string
	Offset string

	seconds int
}

var zoneDirs = []string{
	"/usr/share/zoneinfo",
	"/usr/lib/zoneinfo",
	"/usr/share/lib/zoneinfo",
}

var (
	namesOnce sync.Once
	names     []string
)

// Zones lists all known timezones with their offset at the given
// instant, sorted by numeric offset and then by name. Offsets depend
// on daylight saving, so callers pass the instant they render for.
func Zones(at time.Time) []Zone {
	namesOnce.Do(func() { names = loadNames() })

	zones := make([]Zone, 0, len(names))
	for _, name := range names {
		loc, err := time.LoadLocation(name)
		if err != nil {
			continue
		}
		_, offset := at.In(loc).Zone()
		zones = append(zones, Zone{
			Name:    name,
			Offset:  formatOffset(offset),
			seconds: offset,
		})
	}
	sort.Slice(zones, func(i, j int) bool {
		if zones[i].seconds != zones[j].seconds {
			return zones[i].seconds < zones[j].seconds
		}
		return zones[i].Name < zones[j].Name
	})
	return zones
}

func loadNames() []string {
	for _, dir := range zoneDirs {
		found := scanDir(dir)
		if len(found) > 0 {
			return found
		}
	}
	return nil
}

func scanDir(root string) []string {
	var out []string
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		// The posix/ and right/ trees duplicate every zone.
		base := filepath.Base(rel)
		if d.IsDir() {
			if base == "posix" || base == "right" {
				return fs.SkipDir
			}
			return nil
		}
		// Zone names start with an uppercase letter (Europe/Paris,
		// UTC); everything else in the directory is metadata.
		if base == "" || base[0] < 'A' || base[0] > 'Z' {
			return nil
		}
		if strings.Contains(rel, ".") {
			return nil
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	return out
}

func formatOffset(seconds int) string {
	sign := "+"
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("%s%02d:%02d", sign, seconds/3600, (seconds%3600)/60)
}

// Valid reports whether name resolves to a loadable timezone.
func Valid(name string) bool {
	if name == "" {
		return false
	}
	_, err := time.LoadLocation(name)
	return err == nil
}
