package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// ListIssues fetches every issue carrying the given label, walking pages of
// pageSize until a short page signals the end. Pull requests are filtered out
// because the REST issues listing mixes them in
func (c *Client) ListIssues(ctx context.Context, label string) ([]Issue, error) {
	var out []Issue
	page := 1
	for {
		u := fmt.Sprintf(
			"%s/repos/%s/%s/issues?state=all&labels=%s&per_page=%d&page=%d",
			c.opts.BaseURL, c.opts.Owner, c.opts.Repo, url.QueryEscape(label), pageSize, page,
		)
		var batch []Issue
		if err := c.getJSON(ctx, u, &batch); err != nil {
			return nil, err
		}
		for _, is := range batch {
			if is.PullRequest != nil {
				continue
			}
			out = append(out, is)
		}
		if len(batch) < pageSize {
			return out, nil
		}
		page++
	}
}

// LatestIssueByLabel returns the most recently updated open issue bearing the
// label, or nil when none exists. Backs singleton pages like the now page
func (c *Client) LatestIssueByLabel(ctx context.Context, label string) (*Issue, error) {
	u := fmt.Sprintf(
		"%s/repos/%s/%s/issues?state=open&labels=%s&per_page=%d&sort=updated&direction=desc",
		c.opts.BaseURL, c.opts.Owner, c.opts.Repo, url.QueryEscape(label), 5,
	)
	var batch []Issue
	if err := c.getJSON(ctx, u, &batch); err != nil {
		return nil, err
	}
	for _, is := range batch {
		if is.PullRequest == nil {
			return &is, nil
		}
	}
	return nil, nil
}

// ListComments fetches every comment on the given issue, oldest first,
// walking pages until a short page
func (c *Client) ListComments(ctx context.Context, issueNumber int) ([]Comment, error) {
	var out []Comment
	page := 1
	for {
		u := fmt.Sprintf(
			"%s/repos/%s/%s/issues/%d/comments?per_page=%d&page=%d",
			c.opts.BaseURL, c.opts.Owner, c.opts.Repo, issueNumber, pageSize, page,
		)
		var batch []Comment
		if err := c.getJSON(ctx, u, &batch); err != nil {
			return nil, err
		}
		out = append(out, batch...)
		if len(batch) < pageSize {
			return out, nil
		}
		page++
	}
}

// UserByLogin fetches a user profile, or nil for an unknown login
func (c *Client) UserByLogin(ctx context.Context, login string) (*User, error) {
	u := fmt.Sprintf("%s/users/%s", c.opts.BaseURL, url.PathEscape(login))
	var out User
	if err := c.getJSON(ctx, u, &out); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

// getJSON performs a GET and decodes the body into out
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	resp, err := c.Do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Error().Err(cerr).Str("url", url).Msg("github close body failed")
		}
	}()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
