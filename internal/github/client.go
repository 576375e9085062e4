// Package github wraps the endpoints of GitHub's REST API v3 that the
// services require: repository metadata, tree listings for credit
// estimation, issues, and user profiles.
package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"

	"github.com/gittldr/server/internal/models"
)

// Client is a rate-limited wrapper around the go-github SDK.
type Client struct {
	api         *gh.Client
	rateLimiter RateLimiter
}

// NewClient returns a ready-to-use GitHub API client.
// token may be an empty string, but you will be subject to very low rate‑limits.
func NewClient(token string) *Client {
	var tc = oauth2.NewClient(context.Background(), nil)
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		tc = oauth2.NewClient(context.Background(), ts)
	}

	return &Client{
		api:         gh.NewClient(tc),
		rateLimiter: NewRateLimiter(),
	}
}

// GetRepository fetches repository metadata.
func (c *Client) GetRepository(ctx context.Context, owner, name string) (models.GitHubRepo, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return models.GitHubRepo{}, err
	}

	repo, resp, err := c.api.Repositories.Get(ctx, owner, name)
	c.updateRateLimit(resp)
	if err != nil {
		if resp != nil && resp.StatusCode == 404 {
			return models.GitHubRepo{}, models.ErrRepoNotFound
		}
		return models.GitHubRepo{}, fmt.Errorf("failed to get repository %s/%s: %w", owner, name, err)
	}

	return models.GitHubRepo{
		Owner:         repo.GetOwner().GetLogin(),
		Name:          repo.GetName(),
		FullName:      repo.GetFullName(),
		Description:   repo.GetDescription(),
		Private:       repo.GetPrivate(),
		Stars:         repo.GetStargazersCount(),
		Language:      repo.GetLanguage(),
		DefaultBranch: repo.GetDefaultBranch(),
	}, nil
}

// CountFiles returns the number of blobs in the repository tree at ref.
// Used for credit estimation before a repo is connected.
func (c *Client) CountFiles(ctx context.Context, owner, name, ref string) (int, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return 0, err
	}

	tree, resp, err := c.api.Git.GetTree(ctx, owner, name, ref, true)
	c.updateRateLimit(resp)
	if err != nil {
		return 0, fmt.Errorf("failed to list tree for %s/%s@%s: %w", owner, name, ref, err)
	}

	count := 0
	for _, entry := range tree.Entries {
		if entry.GetType() == "blob" {
			count++
		}
	}
	return count, nil
}

// ListIssues fetches issues for a repo, excluding pull requests.
//
//	state – "open" | "closed" | "all"
//	perPage – max items per page (1–100)
func (c *Client) ListIssues(ctx context.Context, owner, name, state string, perPage int) ([]models.Issue, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	opts := &gh.IssueListByRepoOptions{
		State:       state,
		ListOptions: gh.ListOptions{PerPage: perPage},
	}
	raw, resp, err := c.api.Issues.ListByRepo(ctx, owner, name, opts)
	c.updateRateLimit(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues for %s/%s: %w", owner, name, err)
	}

	issues := make([]models.Issue, 0, len(raw))
	for _, is := range raw {
		// The issues endpoint also returns PRs; skip them.
		if is.IsPullRequest() {
			continue
		}
		issues = append(issues, convertIssue(is))
	}
	return issues, nil
}

// GetIssue retrieves a single issue by number.
func (c *Client) GetIssue(ctx context.Context, owner, name string, number int) (models.Issue, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return models.Issue{}, err
	}

	is, resp, err := c.api.Issues.Get(ctx, owner, name, number)
	c.updateRateLimit(resp)
	if err != nil {
		return models.Issue{}, fmt.Errorf("failed to get issue %s/%s#%d: %w", owner, name, number, err)
	}
	return convertIssue(is), nil
}

// GetUser resolves a GitHub profile by login.
func (c *Client) GetUser(ctx context.Context, login string) (models.TeamMember, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return models.TeamMember{}, err
	}

	user, resp, err := c.api.Users.Get(ctx, login)
	c.updateRateLimit(resp)
	if err != nil {
		if resp != nil && resp.StatusCode == 404 {
			return models.TeamMember{}, models.ErrMemberNotFound
		}
		return models.TeamMember{}, fmt.Errorf("failed to get user %s: %w", login, err)
	}

	return models.TeamMember{
		Login:     user.GetLogin(),
		Name:      user.GetName(),
		AvatarURL: user.GetAvatarURL(),
	}, nil
}

func (c *Client) updateRateLimit(resp *gh.Response) {
	if resp == nil {
		return
	}
	c.rateLimiter.UpdateLimit(resp.Rate.Remaining, resp.Rate.Reset.Time)
}

func convertIssue(is *gh.Issue) models.Issue {
	return models.Issue{
		ID:        is.GetID(),
		Number:    is.GetNumber(),
		Title:     is.GetTitle(),
		Body:      is.GetBody(),
		State:     is.GetState(),
		HTMLURL:   is.GetHTMLURL(),
		Author:    is.GetUser().GetLogin(),
		CreatedAt: is.GetCreatedAt().Format("2006-01-02T15:04:05Z"),
		UpdatedAt: is.GetUpdatedAt().Format("2006-01-02T15:04:05Z"),
	}
}
