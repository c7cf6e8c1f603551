package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"tourney-rating/internal/config"

	"github.com/valyala/fasthttp"
)

// DirectoryClient talks to the upstream tournament-directory service
// that owns scheduling, registration and payout finalization. The rating
// engine only ever pulls finalized data from it.
type DirectoryClient struct {
	baseURL     string
	apiKey      string
	client      *fasthttp.Client
	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

type RateLimitInfo struct {
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`

	// seconds until reset
	Reset int `json:"reset"`

	UpdatedAt time.Time `json:"updated_at"`
}

type TournamentPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	EventType   string `json:"event_type"`
	BuyIn       int    `json:"buy_in"`
	PrizePool   int    `json:"prize_pool"`
	FieldSize   int    `json:"field_size"`
	Payouts     []int  `json:"payouts"`
	Status      string `json:"status"`
	StartedAt   string `json:"started_at"`
	FinalizedAt string `json:"finalized_at"`
}

type ResultPayload struct {
	PlayerID        string `json:"player_id"`
	PlayerName      string `json:"player_name"`
	Position        int    `json:"position"`
	Rebuys          int    `json:"rebuys"`
	Addons          int    `json:"addons"`
	PrizeAmount     int    `json:"prize_amount"`
	LateEntry       bool   `json:"late_entry"`
	DurationSeconds int    `json:"duration_seconds"`
}

type resultsResponse struct {
	Results []ResultPayload `json:"results"`
}

func NewDirectoryClient(cfg *config.Config) *DirectoryClient {
	return &DirectoryClient{
		baseURL: cfg.UpstreamBaseURL,
		apiKey:  cfg.UpstreamAPIKey,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		rateLimit: RateLimitInfo{
			Limit:     90,
			Remaining: 90,
			Reset:     60,
			UpdatedAt: time.Now(),
		},
	}
}

// Enabled reports whether upstream sync is configured at all.
func (c *DirectoryClient) Enabled() bool {
	return c.baseURL != "" && c.apiKey != ""
}

func (c *DirectoryClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *DirectoryClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if limit := string(resp.Header.Peek("X-Ratelimit-Limit")); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			c.rateLimit.Limit = val
		}
	}
	if remaining := string(resp.Header.Peek("X-Ratelimit-Remaining")); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimit.Remaining = val
		}
	}
	if reset := string(resp.Header.Peek("X-Ratelimit-Reset")); reset != "" {
		if val, err := strconv.Atoi(reset); err == nil {
			c.rateLimit.Reset = val
		}
	}
	c.rateLimit.UpdatedAt = time.Now()
}

func (c *DirectoryClient) GetTournament(ctx context.Context, tournamentID string) (*TournamentPayload, error) {
	url := fmt.Sprintf("%s/v1/tournaments/%s", c.baseURL, tournamentID)
	return doRequest[TournamentPayload](ctx, c, url)
}

func (c *DirectoryClient) GetResults(ctx context.Context, tournamentID string) ([]ResultPayload, error) {
	url := fmt.Sprintf("%s/v1/tournaments/%s/results", c.baseURL, tournamentID)
	resp, err := doRequest[resultsResponse](ctx, c, url)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func doRequest[T any](ctx context.Context, client *DirectoryClient, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Authorization", client.apiKey)
	req.Header.Set("Accept", "application/json")

	deadline, ok := ctx.Deadline()
	var err error
	if ok {
		err = client.client.DoDeadline(req, resp, deadline)
	} else {
		err = client.client.Do(req, resp)
	}
	if err != nil {
		return nil, fmt.Errorf("directory request failed: %w", err)
	}

	client.updateRateLimit(resp)

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("directory request to %s returned status %d", url, resp.StatusCode())
	}

	var payload T
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode directory response: %w", err)
	}
	return &payload, nil
}
