// Package revalidate turns inbound webhook events into targeted cache
// invalidations. A change to one issue drops exactly the pages and
// collections it affects; unrelated cached state survives
package revalidate

import (
	"strings"
	"time"

	core "inkwell/internal/core/content"
	"inkwell/internal/platform/cache"
	"inkwell/internal/platform/logger"
)

// Event names as the source sends them
const (
	EventIssues       = "issues"
	EventIssueComment = "issue_comment"
)

// Aggregate pages rebuilt from the post list
var aggregatePaths = []string{"/", "/feed.xml", "/sitemap.xml"}

// Collections any post-set change can affect
var aggregateTags = []string{
	core.TagPosts,
	core.TagIssues,
	core.TagIssuesWithParents,
	core.TagViews,
	core.TagPinned,
}

// Payload is the webhook body subset the routing decision needs
type Payload struct {
	Action string        `json:"action" validate:"required"`
	Issue  *PayloadIssue `json:"issue"`
	Label  *PayloadLabel `json:"label"`
}

// PayloadIssue carries enough of the issue to recompute its permalink
// without consulting the cache or upstream
type PayloadIssue struct {
	Number    int            `json:"number" validate:"required"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	CreatedAt time.Time      `json:"created_at"`
	Labels    []PayloadLabel `json:"labels"`
}

// PayloadLabel is a label reference on the payload
type PayloadLabel struct {
	Name string `json:"name"`
}

func (p *PayloadIssue) hasLabel(name string) bool {
	for _, l := range p.Labels {
		if strings.EqualFold(l.Name, name) {
			return true
		}
	}
	return false
}

// PostLocator answers warm-cache URL lookups; nil lookups are fine
type PostLocator interface {
	CachedPostURL(number int) (string, bool)
}

// Options configures the Service
type Options struct {
	// Secret is the webhook shared secret. Empty disables verification
	// outside production
	Secret string

	// Production hardens the no-secret case into a rejection
	Production bool
}

// Service decides and applies invalidations
type Service struct {
	cache   *cache.Cache
	locator PostLocator
	opt     Options
	log     *logger.Logger
}

// Result is the response body listing everything invalidated
type Result struct {
	Revalidated []string `json:"revalidated"`
}

// New creates a revalidate Service. locator may be nil when no warm-cache
// lookup is available
func New(c *cache.Cache, locator PostLocator, opt Options) *Service {
	if c == nil {
		panic("revalidate.Service requires a non nil Cache")
	}
	return &Service{cache: c, locator: locator, opt: opt, log: logger.Named("revalidate")}
}

// Process routes one verified event to its invalidation targets and applies
// them. Unrecognized events and actions invalidate nothing
func (s *Service) Process(event string, p Payload) Result {
	var targets []string
	seen := make(map[string]bool)
	add := func(ts ...string) {
		for _, t := range ts {
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			targets = append(targets, t)
		}
	}

	switch event {
	case EventIssueComment:
		if p.Action != "created" || p.Issue == nil {
			break
		}
		if link, ok := core.PermalinkFromRaw(p.Issue.Number, p.Issue.Title, p.Issue.Body, p.Issue.CreatedAt); ok {
			add(link)
		}
		add(core.TagComments(p.Issue.Number))

	case EventIssues:
		if p.Issue == nil {
			break
		}
		edited := p.Action == "edited" || p.Action == "closed" || p.Action == "reopened"
		labelChange := p.Action == "labeled" || p.Action == "unlabeled"
		changedLabel := ""
		if p.Label != nil {
			changedLabel = p.Label.Name
		}

		published := edited || (labelChange && strings.EqualFold(changedLabel, core.LabelPublished))
		now := (labelChange && strings.EqualFold(changedLabel, core.LabelNow)) ||
			(edited && p.Issue.hasLabel(core.LabelNow))

		if published {
			if link, ok := core.PermalinkFromRaw(p.Issue.Number, p.Issue.Title, p.Issue.Body, p.Issue.CreatedAt); ok {
				add(link)
			}
			if s.locator != nil {
				if cached, ok := s.locator.CachedPostURL(p.Issue.Number); ok {
					add(cached)
				}
			}
			add(aggregateTags...)
			add(aggregatePaths...)
		}
		if now {
			add("/now", core.TagNow)
		}
	}

	if len(targets) > 0 {
		s.cache.Invalidate(targets...)
		s.log.Info().
			Str("event", event).
			Str("action", p.Action).
			Strs("revalidated", targets).
			Msg("cache invalidated")
	}
	if targets == nil {
		targets = []string{}
	}
	return Result{Revalidated: targets}
}
