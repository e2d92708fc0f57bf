// Package content serves the derived blog collections: posts, views, comments,
// and the singleton now page. Every collection is individually cached with
// its own tag set; upstream failures fall back to the last good copy
package content

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"inkwell/internal/adapters/github"
	core "inkwell/internal/core/content"
	"inkwell/internal/core/frontmatter"
	"inkwell/internal/core/slugify"
	"inkwell/internal/platform/cache"
	perr "inkwell/internal/platform/errors"
	"inkwell/internal/platform/logger"
)

const (
	keyPosts   = "posts"
	keyViews   = "views"
	keyIssues  = "issues:published"
	keyParents = "parents"
	keyPinned  = "pinned"
	keyNow     = "now"

	commentsTTL = 5 * time.Minute

	// profileLimit bounds concurrent profile lookups so a large author set
	// does not burn the rate limit in one burst
	profileLimit = 4
)

// Source is the upstream the service reads from
type Source interface {
	ListIssues(ctx context.Context, label string) ([]github.Issue, error)
	ListComments(ctx context.Context, issueNumber int) ([]github.Comment, error)
	LatestIssueByLabel(ctx context.Context, label string) (*github.Issue, error)
	UserByLogin(ctx context.Context, login string) (*github.User, error)
	ParentLinks(ctx context.Context) ([]github.ParentLink, error)
	PinnedNumbers(ctx context.Context) (map[int]bool, error)
}

// Options configures the Service
type Options struct {
	// TTL bounds staleness when no webhook fires. Zero means one hour
	TTL time.Duration

	// Production hides upstream diagnostics behind a generic message
	Production bool
}

// Service exposes the read surfaces over a Source and a Cache
type Service struct {
	src        Source
	cache      *cache.Cache
	ttl        time.Duration
	production bool
	log        *logger.Logger
}

// New creates a content Service
func New(src Source, c *cache.Cache, opt Options) *Service {
	if src == nil {
		panic("content.Service requires a non nil Source")
	}
	if c == nil {
		panic("content.Service requires a non nil Cache")
	}
	if opt.TTL <= 0 {
		opt.TTL = time.Hour
	}
	return &Service{
		src:        src,
		cache:      c,
		ttl:        opt.TTL,
		production: opt.Production,
		log:        logger.Named("content"),
	}
}

// AllPosts returns every readable post, newest first
func (s *Service) AllPosts(ctx context.Context) ([]core.Post, error) {
	return cache.GetOrCompute(ctx, s.cache, keyPosts, s.ttl,
		[]string{core.TagPosts, core.TagIssues},
		func(ctx context.Context) ([]core.Post, error) {
			posts, _, err := s.buildGraph(ctx)
			return posts, err
		})
}

// AllGroups returns every view (series), most recently updated first
func (s *Service) AllGroups(ctx context.Context) ([]core.Group, error) {
	return cache.GetOrCompute(ctx, s.cache, keyViews, s.ttl,
		[]string{core.TagViews, core.TagIssuesWithParents, core.TagPosts},
		func(ctx context.Context) ([]core.Group, error) {
			_, groups, err := s.buildGraph(ctx)
			return groups, err
		})
}

// PostByPermalink resolves a post by its date-partitioned path components
func (s *Service) PostByPermalink(ctx context.Context, year, month, day int, slug string) (*core.Post, error) {
	posts, err := s.AllPosts(ctx)
	if err != nil {
		return nil, err
	}
	want := fmt.Sprintf("/%04d/%02d/%02d/%s", year, month, day, slug)
	for i := range posts {
		if posts[i].URL == want {
			return &posts[i], nil
		}
	}
	return nil, perr.NotFoundf("no post at %s", want)
}

// GroupByNumber resolves a view by its defining issue number
func (s *Service) GroupByNumber(ctx context.Context, number int) (*core.Group, error) {
	groups, err := s.AllGroups(ctx)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		if groups[i].Number == number {
			return &groups[i], nil
		}
	}
	return nil, perr.NotFoundf("no view %d", number)
}

// Comments returns the reader comments for an issue, oldest first. Short TTL:
// comments move faster than posts and have no aggregate invalidation path
func (s *Service) Comments(ctx context.Context, issueNumber int) ([]github.Comment, error) {
	key := core.TagComments(issueNumber)
	return cache.GetOrCompute(ctx, s.cache, key, commentsTTL,
		[]string{key},
		func(ctx context.Context) ([]github.Comment, error) {
			return s.src.ListComments(ctx, issueNumber)
		})
}

// NowPost returns the singleton status post, or nil when no issue carries the
// now label. Absence is a cached value, not an error
func (s *Service) NowPost(ctx context.Context) (*core.Post, error) {
	return cache.GetOrCompute(ctx, s.cache, keyNow, s.ttl,
		[]string{core.TagNow},
		func(ctx context.Context) (*core.Post, error) {
			is, err := s.src.LatestIssueByLabel(ctx, core.LabelNow)
			if err != nil {
				return nil, err
			}
			if is == nil {
				return nil, nil
			}
			return s.nowFromIssue(ctx, *is), nil
		})
}

// CachedPostURL reports the warm-cache URL for a post number without touching
// upstream. Invalidation uses it to catch a post whose served URL differs
// from the one its raw fields would produce
func (s *Service) CachedPostURL(number int) (string, bool) {
	posts, ok := cache.Peek[[]core.Post](s.cache, keyPosts)
	if !ok {
		return "", false
	}
	for _, p := range posts {
		if p.Number == number {
			return p.URL, true
		}
	}
	return "", false
}

// buildGraph fetches the three independent inputs concurrently and derives
// the full graph. Issues are the primary content and their failure is fatal;
// parent links and the pinned set are enrichments and degrade to empty
func (s *Service) buildGraph(ctx context.Context) ([]core.Post, []core.Group, error) {
	var (
		issues  []github.Issue
		parents []github.ParentLink
		pinned  map[int]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		issues, err = s.publishedIssues(gctx)
		return err
	})
	g.Go(func() error {
		parents = s.parentLinks(gctx)
		return nil
	})
	g.Go(func() error {
		pinned = s.pinnedNumbers(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	posts, groups := core.Build(core.Input{
		Issues:        issues,
		Parents:       parents,
		Pinned:        pinned,
		ResolveAuthor: s.profileResolver(ctx, issues, parents),
	})
	return posts, groups, nil
}

func (s *Service) publishedIssues(ctx context.Context) ([]github.Issue, error) {
	return cache.GetOrCompute(ctx, s.cache, keyIssues, s.ttl,
		[]string{core.TagIssues},
		func(ctx context.Context) ([]github.Issue, error) {
			return s.src.ListIssues(ctx, core.LabelPublished)
		})
}

func (s *Service) parentLinks(ctx context.Context) []github.ParentLink {
	links, err := cache.GetOrCompute(ctx, s.cache, keyParents, s.ttl,
		[]string{core.TagIssuesWithParents},
		func(ctx context.Context) ([]github.ParentLink, error) {
			return s.src.ParentLinks(ctx)
		})
	if err != nil {
		s.log.Warn().Err(err).Msg("parent links unavailable, views degrade to flat posts")
		return nil
	}
	return links
}

func (s *Service) pinnedNumbers(ctx context.Context) map[int]bool {
	pinned, err := cache.GetOrCompute(ctx, s.cache, keyPinned, s.ttl,
		[]string{core.TagPinned},
		func(ctx context.Context) (map[int]bool, error) {
			return s.src.PinnedNumbers(ctx)
		})
	if err != nil {
		s.log.Warn().Err(err).Msg("pinned set unavailable, no posts flagged")
		return nil
	}
	return pinned
}

// profileResolver resolves every distinct author login up front with bounded
// concurrency and hands Build a pure lookup. A failed lookup leaves the
// embedded identity in place; it never fails the batch
func (s *Service) profileResolver(ctx context.Context, issues []github.Issue, parents []github.ParentLink) func(string) *github.User {
	logins := make(map[string]struct{})
	for _, is := range issues {
		if is.User != nil && is.User.Login != "" {
			logins[is.User.Login] = struct{}{}
		}
	}
	for _, pl := range parents {
		if pl.Parent.Author != nil && pl.Parent.Author.Login != "" {
			logins[pl.Parent.Author.Login] = struct{}{}
		}
	}

	profiles := make(map[string]*github.User, len(logins))
	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(profileLimit)
	for login := range logins {
		login := login
		g.Go(func() error {
			p := s.profile(ctx, login)
			mu.Lock()
			profiles[login] = p
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return func(login string) *github.User { return profiles[login] }
}

func (s *Service) profile(ctx context.Context, login string) *github.User {
	p, err := cache.GetOrCompute(ctx, s.cache, "profile:"+login, s.ttl,
		[]string{core.TagProfiles},
		func(ctx context.Context) (*github.User, error) {
			return s.src.UserByLogin(ctx, login)
		})
	if err != nil {
		s.log.Warn().Err(err).Str("login", login).Msg("profile lookup failed, using embedded identity")
		return nil
	}
	return p
}

// nowFromIssue derives the status post directly: it is a singleton outside
// the graph, with a fixed slug fallback instead of a title-derived one
func (s *Service) nowFromIssue(ctx context.Context, is github.Issue) *core.Post {
	meta, body := frontmatter.Parse(is.Body)
	if meta.Draft {
		return nil
	}

	publishedAt := is.CreatedAt
	if meta.PublishedAt != "" {
		t, ok := frontmatter.ParseTime(meta.PublishedAt)
		if !ok {
			return nil
		}
		publishedAt = t
	}
	publishedAt = publishedAt.UTC()

	slug := slugify.Slugify(meta.Slug)
	if slug == "" {
		slug = "now"
	}

	var login, avatar, htmlURL string
	if is.User != nil {
		login, avatar, htmlURL = is.User.Login, is.User.AvatarURL, is.User.HTMLURL
	}
	resolve := func(l string) *github.User {
		if l == login {
			return s.profile(ctx, l)
		}
		return nil
	}

	return &core.Post{
		ID:          is.ID,
		Number:      is.Number,
		Title:       is.Title,
		Slug:        slug,
		PublishedAt: publishedAt,
		UpdatedAt:   is.UpdatedAt.UTC(),
		Author:      core.ResolveIdentity(login, avatar, htmlURL, resolve),
		Excerpt:     meta.Excerpt,
		Image:       meta.Image,
		Body:        body,
		URL:         "/now",
	}
}
