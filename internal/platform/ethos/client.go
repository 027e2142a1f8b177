// Package ethos is the REST client for the Ethos reputation network API v2.
package ethos

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/hallenjay/tokentribute/internal/domain"
)

// DefaultBaseURL is the Ethos API v2 root.
const DefaultBaseURL = "https://api.ethos.network/api/v2"

// topProfileKeywords seeds the search aggregation behind TopProfiles. The
// search endpoint has no "list by score" mode, so diverse keywords are fanned
// out and the merged results sorted locally.
var topProfileKeywords = []string{
	"eth", "bit", "defi", "nft", "web3", "dao",
	"token", "smart", "chain", "swap",
}

// Client is the REST client for the Ethos API.
type Client struct {
	baseURL    string
	clientTag  string
	httpClient *http.Client
	limiter    domain.RateLimiter
	logger     *slog.Logger
}

// NewClient creates an Ethos API client.
//
// clientTag is sent as the X-Ethos-Client header on every request. limiter
// may be nil, in which case keyword fan-out runs unthrottled.
func NewClient(baseURL, clientTag string, limiter domain.RateLimiter, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   baseURL,
		clientTag: clientTag,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: limiter,
		logger:  logger.With("component", "ethos"),
	}
}

// UserByUsername returns the profile registered under the given username.
func (c *Client) UserByUsername(ctx context.Context, username string) (domain.Profile, error) {
	body, err := c.doGet(ctx, "/user/by/username/"+url.PathEscape(username))
	if err != nil {
		return domain.Profile{}, fmt.Errorf("ethos: user by username %s: %w", username, err)
	}

	var u APIUser
	if err := json.Unmarshal(body, &u); err != nil {
		return domain.Profile{}, fmt.Errorf("ethos: decode user: %w", err)
	}
	return u.ToDomainProfile(), nil
}

// ProfileByUsername is UserByUsername under the name the settlement flow
// expects.
func (c *Client) ProfileByUsername(ctx context.Context, username string) (domain.Profile, error) {
	return c.UserByUsername(ctx, username)
}

// UserByAddress returns the profile that has linked the given wallet address.
func (c *Client) UserByAddress(ctx context.Context, address string) (domain.Profile, error) {
	body, err := c.doGet(ctx, "/user/by/address/"+url.PathEscape(address))
	if err != nil {
		return domain.Profile{}, fmt.Errorf("ethos: user by address %s: %w", address, err)
	}

	var u APIUser
	if err := json.Unmarshal(body, &u); err != nil {
		return domain.Profile{}, fmt.Errorf("ethos: decode user: %w", err)
	}
	return u.ToDomainProfile(), nil
}

// UserByID returns a profile by its numeric user id.
func (c *Client) UserByID(ctx context.Context, id int64) (domain.Profile, error) {
	body, err := c.doGet(ctx, "/user/"+strconv.FormatInt(id, 10))
	if err != nil {
		return domain.Profile{}, fmt.Errorf("ethos: user %d: %w", id, err)
	}

	var u APIUser
	if err := json.Unmarshal(body, &u); err != nil {
		return domain.Profile{}, fmt.Errorf("ethos: decode user: %w", err)
	}
	return u.ToDomainProfile(), nil
}

// SearchUsers runs a keyword search, returning active profiles only.
func (c *Client) SearchUsers(ctx context.Context, query string, limit int) ([]domain.Profile, error) {
	if len(query) < 2 {
		return nil, fmt.Errorf("ethos: search query %q too short", query)
	}
	if limit <= 0 {
		limit = 50
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", "0")

	body, err := c.doGet(ctx, "/users/search?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("ethos: search %q: %w", query, err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("ethos: decode search results: %w", err)
	}

	profiles := make([]domain.Profile, 0, len(resp.Values))
	for _, u := range resp.Values {
		if !u.Active() {
			continue
		}
		profiles = append(profiles, u.ToDomainProfile())
	}
	return profiles, nil
}

// UsersByIDs batch-fetches profiles by numeric user ids.
func (c *Client) UsersByIDs(ctx context.Context, ids []int64) ([]domain.Profile, error) {
	payload, err := json.Marshal(map[string][]int64{"userIds": ids})
	if err != nil {
		return nil, fmt.Errorf("ethos: encode ids: %w", err)
	}

	body, err := c.doPost(ctx, "/users/by/ids", payload)
	if err != nil {
		return nil, fmt.Errorf("ethos: users by ids: %w", err)
	}

	var users []APIUser
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, fmt.Errorf("ethos: decode users: %w", err)
	}

	profiles := make([]domain.Profile, 0, len(users))
	for _, u := range users {
		profiles = append(profiles, u.ToDomainProfile())
	}
	return profiles, nil
}

// TopProfiles aggregates keyword searches into a leaderboard of active
// profiles at or above minScore, sorted by score descending. Keyword searches
// that individually fail are skipped; the aggregation only errors when every
// keyword fails and the id-batch fallback also returns nothing.
func (c *Client) TopProfiles(ctx context.Context, minScore, limit int) ([]domain.Profile, error) {
	if limit <= 0 {
		limit = 50
	}

	merged := make(map[string]domain.Profile)
	for _, keyword := range topProfileKeywords {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx, "ethos:search"); err != nil {
				return nil, fmt.Errorf("ethos: top profiles: %w", err)
			}
		}

		profiles, err := c.SearchUsers(ctx, keyword, 50)
		if err != nil {
			c.logger.Warn("keyword search failed", "keyword", keyword, "error", err)
			continue
		}
		for _, p := range profiles {
			if p.CredibilityScore >= minScore {
				merged[p.Username] = p
			}
		}
	}

	// Fallback when search produced nothing: walk the low numeric ids.
	if len(merged) == 0 {
		ids := make([]int64, limit)
		for i := range ids {
			ids[i] = int64(i + 1)
		}
		profiles, err := c.UsersByIDs(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("ethos: top profiles fallback: %w", err)
		}
		for _, p := range profiles {
			if p.Username != "" && p.CredibilityScore >= minScore {
				merged[p.Username] = p
			}
		}
	}

	out := make([]domain.Profile, 0, len(merged))
	for _, p := range merged {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CredibilityScore > out[j].CredibilityScore
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --------------------------------------------------------------------------
// Internal helpers
// --------------------------------------------------------------------------

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.do(req)
}

func (c *Client) doPost(ctx context.Context, path string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Ethos-Client", c.clientTag)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}

// checkHTTPStatus maps non-2xx status codes to domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}
