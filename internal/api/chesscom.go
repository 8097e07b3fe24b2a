package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"chess-tracker/internal/config"
)

// ChessClient talks to the chess.com public data API. Every method is a
// single GET with no retries; retry policy belongs to callers.
type ChessClient struct {
	baseURL string
	client  *fasthttp.Client
}

func NewChessClient(cfg *config.Config) *ChessClient {
	return &ChessClient{
		baseURL: cfg.ChessAPIBase,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

func (c *ChessClient) BaseURL() string {
	return c.baseURL
}

// GetProfile fetches a player's public profile. The joined field is the
// account-creation epoch; zero when chess.com omits it.
func (c *ChessClient) GetProfile(ctx context.Context, handle string) (*ProfileResponse, error) {
	url := fmt.Sprintf("%s/player/%s", c.baseURL, handle)
	return doRequest[ProfileResponse](ctx, c, url)
}

// GetArchiveIndex fetches the list of monthly archive URLs chess.com knows
// about for a player. Used when the join date cannot drive planning.
func (c *ChessClient) GetArchiveIndex(ctx context.Context, handle string) (*ArchiveIndexResponse, error) {
	url := fmt.Sprintf("%s/player/%s/games/archives", c.baseURL, handle)
	return doRequest[ArchiveIndexResponse](ctx, c, url)
}

// GetMonthlyArchive fetches one month's games. The URL comes from the
// planner or the archive index and is used as-is.
func (c *ChessClient) GetMonthlyArchive(ctx context.Context, url string) (*MonthlyArchiveResponse, error) {
	return doRequest[MonthlyArchiveResponse](ctx, c, url)
}

func doRequest[T any](ctx context.Context, client *ChessClient, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, &TransportError{URL: url, Err: err}
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, &TransportError{URL: url, Err: err}
		}
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return nil, &RequestError{StatusCode: status, URL: url}
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, &ParseError{URL: url, Err: err}
	}
	return &result, nil
}

type ProfileResponse struct {
	Username string `json:"username"`
	PlayerID int64  `json:"player_id"`
	Status   string `json:"status"`
	Joined   int64  `json:"joined"`
}

type ArchiveIndexResponse struct {
	Archives []string `json:"archives"`
}

type MonthlyArchiveResponse struct {
	Games []Game `json:"games"`
}

type Game struct {
	URL         string     `json:"url"`
	EndTime     int64      `json:"end_time"`
	TimeClass   string     `json:"time_class"`
	TimeControl string     `json:"time_control"`
	Rated       bool       `json:"rated"`
	White       PlayerSide `json:"white"`
	Black       PlayerSide `json:"black"`
}

// PlayerSide keeps Rating as a pointer so a missing rating is
// distinguishable from zero and the record can be dropped downstream.
type PlayerSide struct {
	Username string `json:"username"`
	Rating   *int   `json:"rating"`
	Result   string `json:"result"`
}
