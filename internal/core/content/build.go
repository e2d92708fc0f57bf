package content

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"inkwell/internal/adapters/github"
	"inkwell/internal/core/frontmatter"
	"inkwell/internal/core/slugify"
)

const (
	// LabelPublished marks an issue as a readable post
	LabelPublished = "published"

	// LabelNow marks the singleton status issue
	LabelNow = "NOW"
)

// Input carries everything Build needs. ResolveAuthor may be nil or return
// nil for a login; both mean the identity embedded on the issue is the best
// available
type Input struct {
	Issues  []github.Issue
	Parents []github.ParentLink
	Pinned  map[int]bool

	ResolveAuthor func(login string) *github.User
}

// Build derives the flat post list and the group list from raw issues.
// Deterministic for a given Input: same inputs, same output, same order.
//
// Issues that only exist to define a group (they appear as a parent in the
// link set) never become posts themselves. Posts come back newest first;
// each group's members come back oldest first with 1-based part numbers
func Build(in Input) ([]Post, []Group) {
	parentOnly := make(map[int]bool, len(in.Parents))
	childParent := make(map[int]github.ParentIssue, len(in.Parents))
	for _, pl := range in.Parents {
		parentOnly[pl.Parent.Number] = true
		if _, ok := childParent[pl.Child]; !ok {
			childParent[pl.Child] = pl.Parent
		}
	}

	posts := make([]Post, 0, len(in.Issues))
	taken := make(map[string]bool)
	for _, is := range in.Issues {
		if is.PullRequest != nil || parentOnly[is.Number] {
			continue
		}

		meta, body := frontmatter.Parse(is.Body)
		if meta.Draft {
			continue
		}

		publishedAt := is.CreatedAt
		if meta.PublishedAt != "" {
			t, ok := frontmatter.ParseTime(meta.PublishedAt)
			if !ok {
				// an explicit but unusable date hides the post rather
				// than silently publishing it under a guessed time
				continue
			}
			publishedAt = t
		}
		if publishedAt.IsZero() {
			continue
		}
		publishedAt = publishedAt.UTC()

		slug := slugify.Slugify(meta.Slug)
		if slug == "" {
			slug = slugify.Slugify(is.Title)
		}
		if slug == "" {
			slug = strconv.Itoa(is.Number)
		}
		slug = disambiguate(taken, publishedAt, slug)

		var login, avatar, htmlURL string
		if is.User != nil {
			login, avatar, htmlURL = is.User.Login, is.User.AvatarURL, is.User.HTMLURL
		}

		posts = append(posts, Post{
			ID:          is.ID,
			Number:      is.Number,
			Title:       is.Title,
			Slug:        slug,
			PublishedAt: publishedAt,
			UpdatedAt:   is.UpdatedAt.UTC(),
			Author:      ResolveIdentity(login, avatar, htmlURL, in.ResolveAuthor),
			Excerpt:     meta.Excerpt,
			Image:       meta.Image,
			Pinned:      in.Pinned[is.Number],
			Body:        body,
			Labels:      publicLabels(is.Labels),
			URL:         Permalink(publishedAt, slug),
		})
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].PublishedAt.After(posts[j].PublishedAt)
	})

	groups := buildGroups(in, posts, childParent)
	return posts, groups
}

func buildGroups(in Input, posts []Post, childParent map[int]github.ParentIssue) []Group {
	// first-seen order over the link set keeps the output deterministic.
	// Untitled parents cannot form a group
	var order []int
	parents := make(map[int]github.ParentIssue)
	for _, pl := range in.Parents {
		if pl.Parent.Title == "" {
			continue
		}
		if _, ok := parents[pl.Parent.Number]; ok {
			continue
		}
		parents[pl.Parent.Number] = pl.Parent
		order = append(order, pl.Parent.Number)
	}

	members := make(map[int][]int)
	for i := range posts {
		par, ok := childParent[posts[i].Number]
		if !ok || par.Title == "" {
			continue
		}
		members[par.Number] = append(members[par.Number], i)
	}

	groups := make([]Group, 0, len(order))
	for _, num := range order {
		par := parents[num]
		idxs := members[num]
		sort.SliceStable(idxs, func(a, b int) bool {
			return posts[idxs[a]].PublishedAt.Before(posts[idxs[b]].PublishedAt)
		})

		total := len(idxs)
		updated := par.UpdatedAt.UTC()
		gposts := make([]Post, 0, total)
		for part, idx := range idxs {
			posts[idx].Group = &GroupRef{Number: num, Title: par.Title, Part: part + 1, Total: total}
			if posts[idx].UpdatedAt.After(updated) {
				updated = posts[idx].UpdatedAt
			}
			gposts = append(gposts, posts[idx])
		}

		var login, avatar, htmlURL string
		if par.Author != nil {
			login, avatar, htmlURL = par.Author.Login, par.Author.AvatarURL, par.Author.URL
		}
		_, body := frontmatter.Parse(par.Body)
		groups = append(groups, Group{
			Number:      num,
			Title:       par.Title,
			Description: Describe(body),
			Body:        body,
			UpdatedAt:   updated,
			Author:      ResolveIdentity(login, avatar, htmlURL, in.ResolveAuthor),
			URL:         GroupPath(par.Title, num),
			Posts:       gposts,
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].UpdatedAt.After(groups[j].UpdatedAt)
	})
	return groups
}

// ResolveIdentity prefers a freshly resolved profile, falls back to the
// identity embedded on the raw document, and finally to the public profile
// location derived from the login. No login means no author at all
func ResolveIdentity(login, embeddedAvatar, embeddedURL string, resolve func(string) *github.User) *Author {
	if login == "" {
		return nil
	}
	a := &Author{Login: login, Name: login, AvatarURL: embeddedAvatar, URL: embeddedURL}
	if resolve != nil {
		if p := resolve(login); p != nil {
			if p.Name != "" {
				a.Name = p.Name
			}
			if p.AvatarURL != "" {
				a.AvatarURL = p.AvatarURL
			}
			if p.HTMLURL != "" {
				a.URL = p.HTMLURL
			}
		}
	}
	if a.URL == "" {
		a.URL = "https://github.com/" + login
	}
	if a.AvatarURL == "" {
		a.AvatarURL = "https://github.com/" + login + ".png"
	}
	return a
}

// publicLabels drops the published sentinel, which is plumbing, not taxonomy
func publicLabels(labels []github.Label) []string {
	var out []string
	for _, l := range labels {
		if strings.EqualFold(l.Name, LabelPublished) {
			continue
		}
		out = append(out, l.Name)
	}
	return out
}

// PermalinkFromRaw computes a post's canonical path from nothing but the raw
// issue fields, so invalidation can target the right page even on a cold
// cache. Mirrors the builder's slug and publish-time rules; ok is false when
// the post would have been skipped
func PermalinkFromRaw(number int, title, body string, createdAt time.Time) (string, bool) {
	meta, _ := frontmatter.Parse(body)
	publishedAt := createdAt
	if meta.PublishedAt != "" {
		t, ok := frontmatter.ParseTime(meta.PublishedAt)
		if !ok {
			return "", false
		}
		publishedAt = t
	}
	if publishedAt.IsZero() {
		return "", false
	}

	slug := slugify.Slugify(meta.Slug)
	if slug == "" {
		slug = slugify.Slugify(title)
	}
	if slug == "" {
		slug = strconv.Itoa(number)
	}
	return Permalink(publishedAt.UTC(), slug), true
}

// disambiguate reserves a slug within its publish day, suffixing later
// collisions with -2, -3, ... in input order
func disambiguate(taken map[string]bool, day time.Time, slug string) string {
	key := day.Format("2006-01-02") + "/" + slug
	if !taken[key] {
		taken[key] = true
		return slug
	}
	for n := 2; ; n++ {
		cand := slug + "-" + strconv.Itoa(n)
		k := day.Format("2006-01-02") + "/" + cand
		if !taken[k] {
			taken[k] = true
			return cand
		}
	}
}
