package github

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	perr "inkwell/internal/platform/errors"
)

// parentLinksQuery walks the repository's issues and reads each one's
// sub-issue parent, with a denormalized copy of the parent document
const parentLinksQuery = `
query($owner: String!, $repo: String!, $cursor: String) {
  repository(owner: $owner, name: $repo) {
    issues(first: 100, after: $cursor, states: [OPEN, CLOSED]) {
      pageInfo { hasNextPage endCursor }
      nodes {
        number
        parent {
          number
          title
          body
          createdAt
          updatedAt
          author { login avatarUrl url }
        }
      }
    }
  }
}`

const pinnedIssuesQuery = `
query($owner: String!, $repo: String!) {
  repository(owner: $owner, name: $repo) {
    pinnedIssues(first: 10) {
      nodes { issue { number } }
    }
  }
}`

// ParentLinks traverses the sub-issue graph and returns one link per child
// issue that has a parent. The query class requires a credential: without a
// token it returns an empty result, not an error, since grouping is an
// enrichment rather than the primary content
func (c *Client) ParentLinks(ctx context.Context) ([]ParentLink, error) {
	if !c.Authenticated() {
		c.log.Debug().Msg("no token configured, skipping parent link query")
		return nil, nil
	}

	var out []ParentLink
	var cursor *string
	for {
		vars := map[string]any{"owner": c.opts.Owner, "repo": c.opts.Repo}
		if cursor != nil {
			vars["cursor"] = *cursor
		}

		var data struct {
			Repository struct {
				Issues struct {
					PageInfo struct {
						HasNextPage bool   `json:"hasNextPage"`
						EndCursor   string `json:"endCursor"`
					} `json:"pageInfo"`
					Nodes []struct {
						Number int          `json:"number"`
						Parent *ParentIssue `json:"parent"`
					} `json:"nodes"`
				} `json:"issues"`
			} `json:"repository"`
		}
		if err := c.doGraphQL(ctx, parentLinksQuery, vars, &data); err != nil {
			return nil, err
		}

		for _, n := range data.Repository.Issues.Nodes {
			if n.Parent == nil {
				continue
			}
			out = append(out, ParentLink{Child: n.Number, Parent: *n.Parent})
		}
		if !data.Repository.Issues.PageInfo.HasNextPage {
			return out, nil
		}
		end := data.Repository.Issues.PageInfo.EndCursor
		cursor = &end
	}
}

// PinnedNumbers returns the numbers of the repository's pinned issues.
// Same auth degradation as ParentLinks: tokenless means empty, not an error
func (c *Client) PinnedNumbers(ctx context.Context) (map[int]bool, error) {
	if !c.Authenticated() {
		c.log.Debug().Msg("no token configured, skipping pinned issue query")
		return nil, nil
	}

	var data struct {
		Repository struct {
			PinnedIssues struct {
				Nodes []struct {
					Issue struct {
						Number int `json:"number"`
					} `json:"issue"`
				} `json:"nodes"`
			} `json:"pinnedIssues"`
		} `json:"repository"`
	}
	if err := c.doGraphQL(ctx, pinnedIssuesQuery, map[string]any{
		"owner": c.opts.Owner,
		"repo":  c.opts.Repo,
	}, &data); err != nil {
		return nil, err
	}

	pinned := make(map[int]bool, len(data.Repository.PinnedIssues.Nodes))
	for _, n := range data.Repository.PinnedIssues.Nodes {
		pinned[n.Issue.Number] = true
	}
	return pinned, nil
}

// doGraphQL posts a query and decodes the data envelope into out
func (c *Client) doGraphQL(ctx context.Context, query string, vars map[string]any, out any) error {
	payload, err := json.Marshal(struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables,omitempty"`
	}{Query: query, Variables: vars})
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeUnknown, "github graphql marshal failed")
	}

	resp, err := c.Do(ctx, http.MethodPost, c.opts.GraphQLURL, func() io.Reader {
		return bytes.NewReader(payload)
	})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Msg("github close body failed")
		}
	}()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return err
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(b, &envelope); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeFetch, "github graphql decode failed")
	}
	if len(envelope.Errors) > 0 {
		return perr.Fetchf("github graphql: %s", envelope.Errors[0].Message)
	}
	return json.Unmarshal(envelope.Data, out)
}
