// Package utils provides small shared helpers (slugs, filenames).
package utils

import (
	"regexp"
	"strings"
	"time"
)

var (
	// Matches spaces, underscores, and slashes (for replacement with dashes).
	wordSeparatorRe = regexp.MustCompile(`[\s_/]+`)
	// Matches non-alphanumeric characters (except dashes).
	nonAlphanumericRe = regexp.MustCompile(`[^a-z0-9-]`)
	// Matches multiple consecutive dashes.
	multipleDashRe = regexp.MustCompile(`-+`)
)

// Slugify converts arbitrary text to a kebab-case slug:
// lowercase, word separators become dashes, everything else
// non-alphanumeric is dropped, runs of dashes collapse.
func Slugify(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = wordSeparatorRe.ReplaceAllString(s, "-")
	s = nonAlphanumericRe.ReplaceAllString(s, "")
	s = multipleDashRe.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// PhotoSlug builds the default slug for a photo title, prefixed with the
// given date so that identically-titled photos from different days stay
// unique: "2025-06-01-sunset-over-pier".
func PhotoSlug(title string, now time.Time) string {
	slug := now.Format("2006-01-02") + "-" + Slugify(title)
	if len(slug) > 255 {
		slug = slug[:255]
	}
	return slug
}

// NormalizeTagName canonicalizes a tag name: trimmed and lowercased.
// Tag identity is the normalized name.
func NormalizeTagName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// IsValidTagName reports whether a (normalized) tag name is acceptable.
// Semicolons and newlines are reserved by downstream consumers.
func IsValidTagName(name string) bool {
	return !strings.ContainsAny(name, ";\n")
}
