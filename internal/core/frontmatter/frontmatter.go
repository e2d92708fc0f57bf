// Package frontmatter extracts the YAML metadata header from issue bodies.
// The header is optional and parsing is lenient: a malformed header yields
// zero metadata and leaves the body untouched rather than failing the post
package frontmatter

import (
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Meta is the recognized metadata header. Unknown keys are ignored
type Meta struct {
	Slug        string `yaml:"slug"`
	PublishedAt string `yaml:"publishedAt"`
	Excerpt     string `yaml:"excerpt"`
	Image       string `yaml:"image"`
	Draft       bool   `yaml:"draft"`
}

const fence = "---"

// Parse splits a document into its metadata header and remaining content.
// A header exists only when the document opens with a fence line and a
// matching closing fence follows; anything else returns the document as-is
func Parse(body string) (Meta, string) {
	norm := strings.ReplaceAll(body, "\r\n", "\n")
	if !strings.HasPrefix(norm, fence+"\n") {
		return Meta{}, body
	}

	rest := norm[len(fence)+1:]
	end := strings.Index(rest, "\n"+fence)
	if end < 0 {
		return Meta{}, body
	}
	head := rest[:end]
	content := rest[end+len(fence)+1:]
	if content != "" && !strings.HasPrefix(content, "\n") {
		return Meta{}, body
	}
	content = strings.TrimPrefix(content, "\n")

	var m Meta
	if err := yaml.Unmarshal([]byte(head), &m); err != nil {
		return Meta{}, body
	}
	return m, content
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses the publishedAt forms authors actually write. The second
// return is false when the value is empty or matches no known layout
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
