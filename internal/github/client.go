// Package github fetches open pull requests and CI check status over the
// GitHub REST API using per-schedule personal access tokens.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/crucial707/pr-notify/internal/metrics"
	"github.com/crucial707/pr-notify/internal/models"
)

const (
	defaultPageSize = 100
	apiVersion      = "2022-11-28"
)

// Client talks to the GitHub REST API. All outbound calls share one rate
// limiter so concurrent notification jobs cannot stampede the API, and each
// call carries the configured per-request timeout.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     *slog.Logger
	pageSize   int
}

// NewClient builds a Client. baseURL is normally https://api.github.com;
// timeout bounds each HTTP call and ratePerSec bounds total outbound calls
// per second across all jobs.
func NewClient(baseURL string, timeout time.Duration, ratePerSec int, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
		logger:     logger,
		pageSize:   defaultPageSize,
	}
}

// FetchOpenPullRequests returns every open PR in org/repo, each annotated with
// the aggregated check status of its head commit. A check status lookup that
// fails degrades that one PR to pending instead of failing the whole fetch.
func (c *Client) FetchOpenPullRequests(ctx context.Context, token, org, repo string) ([]models.PullRequest, error) {
	var out []models.PullRequest
	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/repos/%s/%s/pulls?state=open&per_page=%d&page=%d",
			c.baseURL, org, repo, c.pageSize, page)

		var prs []prResponse
		if err := c.getJSON(ctx, token, url, &prs); err != nil {
			metrics.GitHubRequestsTotal.WithLabelValues("pulls", "error").Inc()
			return nil, fmt.Errorf("list pulls %s/%s: %w", org, repo, err)
		}
		metrics.GitHubRequestsTotal.WithLabelValues("pulls", "ok").Inc()

		for _, pr := range prs {
			out = append(out, c.toModel(ctx, token, org, repo, pr))
		}
		if len(prs) < c.pageSize {
			return out, nil
		}
	}
}

func (c *Client) toModel(ctx context.Context, token, org, repo string, pr prResponse) models.PullRequest {
	names := make([]string, len(pr.Labels))
	for i, l := range pr.Labels {
		names[i] = l.Name
	}
	labels, _ := json.Marshal(names)

	return models.PullRequest{
		Number:          pr.Number,
		Title:           pr.Title,
		Author:          pr.User.Login,
		AuthorAvatarURL: pr.User.AvatarURL,
		Labels:          string(labels),
		ChecksStatus:    c.fetchCheckStatus(ctx, token, org, repo, pr.Head.SHA),
		HTMLURL:         pr.HTMLURL,
		CreatedAt:       pr.CreatedAt,
		Organization:    org,
		Repository:      repo,
	}
}

// fetchCheckStatus aggregates the check runs for one commit. Any error here
// is logged and mapped to pending so a flaky checks endpoint cannot sink the
// PR listing.
func (c *Client) fetchCheckStatus(ctx context.Context, token, org, repo, sha string) models.CheckStatus {
	if sha == "" {
		return models.ChecksPending
	}
	url := fmt.Sprintf("%s/repos/%s/%s/commits/%s/check-runs?per_page=%d",
		c.baseURL, org, repo, sha, c.pageSize)

	var resp checkRunsResponse
	if err := c.getJSON(ctx, token, url, &resp); err != nil {
		metrics.GitHubRequestsTotal.WithLabelValues("check_runs", "error").Inc()
		c.logger.Warn("check status lookup failed, reporting pending",
			"org", org, "repo", repo, "sha", sha, "error", err)
		return models.ChecksPending
	}
	metrics.GitHubRequestsTotal.WithLabelValues("check_runs", "ok").Inc()
	return AggregateChecks(resp.CheckRuns)
}

func (c *Client) getJSON(ctx context.Context, token, url string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
