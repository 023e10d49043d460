package ingest

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const maxSlugLen = 120

var nonAlnumRun = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL/filename-safe identifier from a title: lowercased,
// non-alphanumeric runs collapsed to single hyphens, trimmed, length-capped.
// Stable under repeated runs on the same input.
func Slugify(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = nonAlnumRun.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if len(name) > maxSlugLen {
		name = name[:maxSlugLen]
	}
	return name
}

// InferTitle derives an episode title from a transcript filename: the stem
// with underscores turned into spaces.
func InferTitle(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return strings.TrimSpace(strings.ReplaceAll(stem, "_", " "))
}

// assignEpisodeIDs slugifies each title and disambiguates collisions with a
// numeric suffix (-2, -3, ...) in input order, so two files that slugify
// identically never overwrite each other's output.
func assignEpisodeIDs(titles []string) []string {
	seen := make(map[string]bool, len(titles))
	ids := make([]string, len(titles))
	for i, title := range titles {
		slug := Slugify(title)
		candidate := slug
		for n := 2; seen[candidate]; n++ {
			candidate = fmt.Sprintf("%s-%d", slug, n)
		}
		seen[candidate] = true
		ids[i] = candidate
	}
	return ids
}
