// Package content turns raw issue documents into the derived blog graph:
// a flat newest-first post list and parent-grouped series
package content

import (
	"fmt"
	"time"

	"inkwell/internal/core/slugify"
	pstrings "inkwell/internal/platform/strings"
)

// Author is the resolved identity attached to posts and groups
type Author struct {
	Login     string `json:"login"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	URL       string `json:"url,omitempty"`
}

// GroupRef is the membership stamp carried by a post that belongs to a group.
// Part is 1-based in publish order; Total is the group's member count
type GroupRef struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Part   int    `json:"part"`
	Total  int    `json:"total"`
}

// Post is a readable blog entry derived from a published issue
type Post struct {
	ID          int64     `json:"id"`
	Number      int       `json:"number"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	PublishedAt time.Time `json:"published_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Author      *Author   `json:"author,omitempty"`
	Excerpt     string    `json:"excerpt,omitempty"`
	Image       string    `json:"image,omitempty"`
	Pinned      bool      `json:"pinned"`
	Group       *GroupRef `json:"group,omitempty"`
	Body        string    `json:"body"`
	Labels      []string  `json:"labels,omitempty"`
	URL         string    `json:"url"`
}

// Group is a series of posts sharing a parent issue. Posts are ordered oldest
// first so part one reads first
type Group struct {
	Number      int       `json:"number"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Body        string    `json:"body,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
	Author      *Author   `json:"author,omitempty"`
	URL         string    `json:"url"`
	Posts       []Post    `json:"posts"`
}

// Permalink builds the date-partitioned canonical path for a post. The date
// components come from the publish time in UTC, zero padded
func Permalink(publishedAt time.Time, slug string) string {
	u := publishedAt.UTC()
	return fmt.Sprintf("/%04d/%02d/%02d/%s", u.Year(), int(u.Month()), u.Day(), slug)
}

// GroupPath builds the canonical path for a group. The issue number suffix
// keeps the path unique even when two parents share a title
func GroupPath(title string, number int) string {
	return "/views/" + slugify.WithNumber(slugify.Slugify(title), number)
}

const descriptionLimit = 180

// Describe collapses whitespace and clamps to the description limit with a
// trailing ellipsis
func Describe(s string) string {
	s = pstrings.CollapseSpace(s)
	r := []rune(s)
	if len(r) <= descriptionLimit {
		return s
	}
	return string(r[:descriptionLimit-3]) + "..."
}
