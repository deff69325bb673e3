// Package query builds X recent-search expressions from hashtag lists.
package query

import (
	"errors"
	"strings"
	"unicode"
)

// Constraints restricts results to original posts that carry video media
const Constraints = "has:videos -is:retweet"

// ErrNoHashtags is returned when no usable hashtag remains after normalization
var ErrNoHashtags = errors.New("at least one non-empty hashtag is required")

// Normalize strips whitespace and leading '#' characters from a hashtag.
// An empty result means the tag is unusable.
func Normalize(tag string) string {
	tag = strings.TrimLeft(strings.TrimSpace(tag), "#")
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, tag)
}

// Hashtags normalizes tags, drops empty entries and removes
// case-insensitive duplicates. The first spelling of a tag wins.
func Hashtags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = Normalize(tag)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tag)
	}
	return out
}

// Build returns a query matching any of the hashtags, limited to
// original posts with video, e.g. "(#go OR #rust) has:videos -is:retweet".
func Build(tags []string) (string, error) {
	normalized := Hashtags(tags)
	if len(normalized) == 0 {
		return "", ErrNoHashtags
	}

	terms := make([]string, len(normalized))
	for i, tag := range normalized {
		terms[i] = "#" + tag
	}

	expr := strings.Join(terms, " OR ")
	if len(terms) > 1 {
		expr = "(" + expr + ")"
	}
	return expr + " " + Constraints, nil
}

// ParseList splits a comma-separated hashtag list as given on the command line
func ParseList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
