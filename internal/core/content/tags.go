package content

import "strconv"

// Cache tags name the derived collections so invalidation can target exactly
// what a change affects
const (
	TagPosts             = "posts"
	TagIssues            = "github-issues"
	TagIssuesWithParents = "github-issues-with-parents"
	TagViews             = "views"
	TagPinned            = "pinned"
	TagNow               = "now"
	TagProfiles          = "profiles"
)

// TagComments is the per-issue comment collection tag
func TagComments(issueNumber int) string {
	return "comments:" + strconv.Itoa(issueNumber)
}
