package github

import "time"

// Issue is a partial GitHub issue document with the fields the blog uses.
// Values are immutable once fetched; a refresh produces new values
type Issue struct {
	ID        int64     `json:"id"`
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Labels    []Label   `json:"labels"`
	User      *Actor    `json:"user"`

	// PullRequest is present when the item is actually a PR; the issues
	// listing endpoint mixes them in and we filter on this marker
	PullRequest map[string]any `json:"pull_request,omitempty"`
}

// HasLabel reports whether the issue carries a label with the given name,
// compared case-insensitively the way GitHub treats label names
func (i Issue) HasLabel(name string) bool {
	for _, l := range i.Labels {
		if equalFold(l.Name, name) {
			return true
		}
	}
	return false
}

// Label is an issue label
type Label struct {
	Name string `json:"name"`
}

// Actor is the identity embedded on issues and comments
type Actor struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// User is a partial GitHub user profile document
type User struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// Comment is a partial GitHub issue comment document
type Comment struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	User      *Actor    `json:"user"`
}

// ParentLink relates a child issue to its parent (sub-issue) and carries a
// denormalized copy of the parent, so groups stay buildable even when the
// parent issue itself was never separately fetched
type ParentLink struct {
	Child  int
	Parent ParentIssue
}

// ParentIssue is the denormalized parent carried on a ParentLink
type ParentIssue struct {
	Number    int           `json:"number"`
	Title     string        `json:"title"`
	Body      string        `json:"body"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	Author    *ParentAuthor `json:"author"`
}

// ParentAuthor is the author shape the graph query returns
type ParentAuthor struct {
	Login     string `json:"login"`
	AvatarURL string `json:"avatarUrl"`
	URL       string `json:"url"`
}
