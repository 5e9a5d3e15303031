// Package github wraps GitHub's repository search endpoint. It is the only
// fatal upstream of the pipeline: exhausting the retry budget surfaces
// ErrUpstreamUnavailable and aborts the run.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/lxlab/oss-scout/internal/models"
)

const DefaultBaseURL = "https://api.github.com"

// ErrUpstreamUnavailable is returned when the search endpoint cannot be
// reached or keeps failing after the bounded retry budget.
var ErrUpstreamUnavailable = errors.New("github search unavailable")

// errRateLimited marks a rate-limit signal. Pagination treats it as end of
// results when earlier pages already produced repositories.
var errRateLimited = fmt.Errorf("%w: rate limited", ErrUpstreamUnavailable)

type Client struct {
	httpClient   *http.Client
	baseURL      string
	token        string
	maxRetries   int
	initialDelay time.Duration
	logger       *zerolog.Logger
}

// NewClient returns a ready-to-use search client. token may be empty, but
// unauthenticated callers get very low rate limits.
func NewClient(baseURL string, token string, logger *zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		baseURL:      baseURL,
		token:        token,
		maxRetries:   2,
		initialDelay: 500 * time.Millisecond,
		logger:       logger,
	}
}

type searchResponse struct {
	TotalCount int        `json:"total_count"`
	Items      []repoItem `json:"items"`
}

// repoItem mirrors the fields of the GitHub payload the pipeline consumes.
// The payload is untrusted; coercion into models.RawRepo validates it.
type repoItem struct {
	Name            string   `json:"name"`
	FullName        string   `json:"full_name"`
	HTMLURL         string   `json:"html_url"`
	Description     string   `json:"description"`
	Language        string   `json:"language"`
	StargazersCount int      `json:"stargazers_count"`
	ForksCount      int      `json:"forks_count"`
	OpenIssuesCount int      `json:"open_issues_count"`
	PushedAt        string   `json:"pushed_at"`
	UpdatedAt       string   `json:"updated_at"`
	Topics          []string `json:"topics"`
	License         *struct {
		SPDXID string `json:"spdx_id"`
	} `json:"license"`
}

// Search runs the paginated repository search. It stops after pageLimit
// pages, when a page comes back short (end of results), or when GitHub
// signals rate limiting after at least one successful page. Results are
// deduplicated by full name, preserving first-seen order.
func (c *Client) Search(ctx context.Context, query string, perPage, pageLimit int) ([]models.RawRepo, error) {
	if pageLimit < 1 {
		pageLimit = 1
	}

	var all []models.RawRepo
	for page := 1; page <= pageLimit; page++ {
		items, err := c.searchPage(ctx, query, perPage, page)
		if err != nil {
			if errors.Is(err, errRateLimited) && len(all) > 0 {
				c.logger.Warn().Int("page", page).Msg("rate limited mid-pagination, returning collected pages")
				break
			}
			return nil, err
		}

		all = append(all, items...)
		if len(items) < perPage {
			break
		}
	}

	return dedupe(all), nil
}

func (c *Client) searchPage(ctx context.Context, query string, perPage, page int) ([]models.RawRepo, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.initialDelay << (attempt - 1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			c.logger.Debug().Int("attempt", attempt+1).Int("page", page).Msg("retrying github search")
		}

		items, retryable, err := c.doSearch(ctx, query, perPage, page)
		if err == nil {
			return items, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// doSearch performs one HTTP call. retryable reports whether the failure is
// transient (network error, 5xx, rate limit).
func (c *Client) doSearch(ctx context.Context, query string, perPage, page int) (items []models.RawRepo, retryable bool, err error) {
	u := fmt.Sprintf("%s/search/repositories?q=%s&per_page=%d&page=%d",
		c.baseURL, url.QueryEscape(query), perPage, page)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "oss-scout")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var body searchResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return nil, false, fmt.Errorf("%w: malformed response: %v", ErrUpstreamUnavailable, err)
		}
		return coerce(body.Items), false, nil

	case isRateLimit(resp):
		return nil, true, errRateLimited

	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)

	default:
		// Remaining 4xx: not transient, surfaces immediately.
		return nil, false, fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}
}

func isRateLimit(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if resp.StatusCode == http.StatusForbidden {
		remaining, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining"))
		return err == nil && remaining == 0
	}
	return false
}

func coerce(items []repoItem) []models.RawRepo {
	repos := make([]models.RawRepo, 0, len(items))
	for _, item := range items {
		if item.FullName == "" || item.HTMLURL == "" {
			continue
		}

		repo := models.RawRepo{
			Name:        item.Name,
			FullName:    item.FullName,
			HTMLURL:     item.HTMLURL,
			Description: item.Description,
			Language:    item.Language,
			Stars:       item.StargazersCount,
			Forks:       item.ForksCount,
			OpenIssues:  item.OpenIssuesCount,
			Topics:      item.Topics,
		}
		if item.License != nil {
			repo.License = item.License.SPDXID
		}
		repo.PushedAt = parseTimestamp(item.PushedAt, item.UpdatedAt)

		repos = append(repos, repo)
	}
	return repos
}

// parseTimestamp prefers pushed_at and falls back to updated_at. A zero time
// is returned for unparsable values; scoring treats that as "freshness
// unknown" rather than failing the record.
func parseTimestamp(pushedAt, updatedAt string) time.Time {
	for _, raw := range []string{pushedAt, updatedAt} {
		if raw == "" {
			continue
		}
		if ts, err := time.Parse(time.RFC3339, raw); err == nil {
			return ts.UTC()
		}
	}
	return time.Time{}
}

func dedupe(repos []models.RawRepo) []models.RawRepo {
	seen := make(map[string]bool, len(repos))
	out := repos[:0]
	for _, repo := range repos {
		if seen[repo.FullName] {
			continue
		}
		seen[repo.FullName] = true
		out = append(out, repo)
	}
	return out
}
