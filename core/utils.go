package core

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	slugStripRegex  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaceRegex  = regexp.MustCompile(`\s+`)
	slugHyphenRegex = regexp.MustCompile(`-+`)
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// Slugify turns a title into a URL slug:
// lowercase, drop anything outside [a-z0-9\s-], whitespace runs -> "-", "--" -> "-",
// and no leading or trailing "-".
// Slugify(Slugify(s)) == Slugify(s) for every s.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = slugStripRegex.ReplaceAllString(s, "")
	s = slugSpaceRegex.ReplaceAllString(s, "-")
	s = slugHyphenRegex.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Getwd tries to find the project root (the directory holding go.mod).
// go-test changes the working directory to the test package being run during tests,
// so we walk up from there. Falls back to the working directory for deployed binaries.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	currDir := wd
	for {
		if _, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}
