package sleeper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/league-sync/internal/domain/bracket"
	"github.com/riskibarqy/league-sync/internal/domain/league"
	"github.com/riskibarqy/league-sync/internal/platform/logging"
	"github.com/riskibarqy/league-sync/internal/platform/resilience"
	"github.com/riskibarqy/league-sync/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.sleeper.app/v1"
	maxBodyBytes   = 8 << 20
	breakerName    = "sleeper"
)

const (
	endpointUser        = "user"
	endpointLeagues     = "leagues"
	endpointLeagueUsers = "league_users"
	endpointRosters     = "rosters"
	endpointBracket     = "bracket"
	endpointTrending    = "trending"
)

// RequestObserver receives one observation per remote request.
type RequestObserver interface {
	ObserveRemoteRequest(endpoint, outcome string, elapsed time.Duration)
	SetBreakerState(name, state string)
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	RatePerSec     float64
	RateBurst      int
	CircuitBreaker resilience.BreakerConfig
	Logger         *logging.Logger
	Metrics        RequestObserver
}

// Client talks to the public Sleeper read API. It never retries; callers decide.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	breaker    *resilience.Breaker
	logger     *logging.Logger
	metrics    RequestObserver
	flight     singleflight.Group
}

var _ usecase.RemoteSportsProvider = (*Client)(nil)

// StatusError is a non-2xx answer from the remote API.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sleeper %s status=%d body=%s", e.Endpoint, e.StatusCode, e.Body)
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("sleeper")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	burst := cfg.RateBurst
	if burst < 1 {
		burst = 1
	}

	metrics := cfg.Metrics
	breaker := resilience.NewBreaker(breakerName, cfg.CircuitBreaker, resilience.WithStateChange(func(name string, from, to resilience.State) {
		logger.Warn("circuit breaker state changed", "breaker", name, "from", string(from), "to", string(to))
		if metrics != nil {
			metrics.SetBreakerState(name, string(to))
		}
	}))

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		limiter:    rate.NewLimiter(limit, burst),
		breaker:    breaker,
		logger:     logger,
		metrics:    metrics,
	}
}

func (c *Client) GetParticipant(ctx context.Context, usernameOrID string) (usecase.RemoteParticipant, error) {
	usernameOrID = strings.TrimSpace(usernameOrID)
	if usernameOrID == "" {
		return usecase.RemoteParticipant{}, fmt.Errorf("%w: username is required", usecase.ErrInvalidInput)
	}

	var payload *userPayload
	if err := c.doJSON(ctx, endpointUser, "/user/"+url.PathEscape(usernameOrID), nil, &payload); err != nil {
		return usecase.RemoteParticipant{}, err
	}
	if payload == nil || strings.TrimSpace(payload.UserID) == "" {
		return usecase.RemoteParticipant{}, crerr.Mark(crerr.Newf("sleeper user %q not found", usernameOrID), usecase.ErrRemoteNotFound)
	}
	return payload.toParticipant(), nil
}

func (c *Client) ListLeagues(ctx context.Context, remoteUserID, sport, season string) ([]league.Snapshot, error) {
	path := fmt.Sprintf("/user/%s/leagues/%s/%s", url.PathEscape(remoteUserID), url.PathEscape(sport), url.PathEscape(season))

	var payload []leaguePayload
	if err := c.doJSON(ctx, endpointLeagues, path, nil, &payload); err != nil {
		return nil, err
	}

	out := make([]league.Snapshot, 0, len(payload))
	for _, item := range payload {
		if strings.TrimSpace(item.LeagueID) == "" {
			continue
		}
		snapshot := item.toSnapshot()
		if snapshot.Season == "" {
			snapshot.Season = season
		}
		if snapshot.Sport == "" {
			snapshot.Sport = sport
		}
		out = append(out, snapshot)
	}
	return out, nil
}

func (c *Client) GetLeagueParticipants(ctx context.Context, leagueID string) ([]usecase.RemoteParticipant, error) {
	var payload []leagueUserPayload
	if err := c.doJSON(ctx, endpointLeagueUsers, "/league/"+url.PathEscape(leagueID)+"/users", nil, &payload); err != nil {
		return nil, err
	}

	out := make([]usecase.RemoteParticipant, 0, len(payload))
	for _, item := range payload {
		out = append(out, item.toParticipant())
	}
	return out, nil
}

func (c *Client) GetRosters(ctx context.Context, leagueID string) ([]usecase.RemoteRoster, error) {
	var payload []rosterPayload
	if err := c.doJSON(ctx, endpointRosters, "/league/"+url.PathEscape(leagueID)+"/rosters", nil, &payload); err != nil {
		return nil, err
	}

	out := make([]usecase.RemoteRoster, 0, len(payload))
	for _, item := range payload {
		out = append(out, item.toRoster())
	}
	return out, nil
}

func (c *Client) GetBracket(ctx context.Context, leagueID string, bracketType bracket.Type) ([]usecase.RemoteBracketMatch, error) {
	if !bracketType.Valid() {
		return nil, fmt.Errorf("%w: bracket type %q", usecase.ErrInvalidInput, bracketType)
	}

	path := fmt.Sprintf("/league/%s/%s_bracket", url.PathEscape(leagueID), bracketType)
	var payload []bracketMatchPayload
	if err := c.doJSON(ctx, endpointBracket, path, nil, &payload); err != nil {
		return nil, err
	}

	out := make([]usecase.RemoteBracketMatch, 0, len(payload))
	for _, item := range payload {
		out = append(out, item.toMatch())
	}
	return out, nil
}

func (c *Client) GetTrendingPlayers(ctx context.Context, sport string, direction usecase.TrendDirection, lookbackHours, limit int) ([]usecase.TrendingPlayer, error) {
	if !direction.Valid() {
		return nil, fmt.Errorf("%w: trend direction %q", usecase.ErrInvalidInput, direction)
	}

	query := url.Values{}
	if lookbackHours > 0 {
		query.Set("lookback_hours", strconv.Itoa(lookbackHours))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	path := fmt.Sprintf("/players/%s/trending/%s", url.PathEscape(sport), direction)
	var payload []trendingPayload
	if err := c.doJSON(ctx, endpointTrending, path, query, &payload); err != nil {
		return nil, err
	}

	out := make([]usecase.TrendingPlayer, 0, len(payload))
	for _, item := range payload {
		out = append(out, usecase.TrendingPlayer{PlayerID: item.PlayerID, Count: item.Count})
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, endpoint, path string, query url.Values, target any) error {
	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	if err := c.waitLimiter(ctx, endpoint); err != nil {
		return err
	}

	// The shared request outlives any single caller; each caller stops waiting on its own ctx.
	shared := context.WithoutCancel(ctx)
	ch := c.flight.DoChan(fullURL, func() (any, error) {
		var raw []byte
		err := c.breaker.Execute(func() error {
			var reqErr error
			raw, reqErr = c.executeRequest(shared, endpoint, fullURL)
			return reqErr
		}, isBreakerFailure)
		return raw, err
	})

	var (
		out any
		err error
	)
	select {
	case <-ctx.Done():
		c.observe(endpoint, "canceled", 0)
		return crerr.Wrapf(ctx.Err(), "sleeper %s request", endpoint)
	case res := <-ch:
		out, err = res.Val, res.Err
	}
	if err != nil {
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			c.observe(endpoint, "rejected", 0)
			c.logger.WarnContext(ctx, "sleeper circuit breaker rejected request", "endpoint", endpoint, "state", string(c.breaker.State()))
			return crerr.Mark(crerr.Wrapf(err, "sleeper %s", endpoint), usecase.ErrRemoteUnavailable)
		}
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return crerr.Mark(crerr.Newf("sleeper %s: unexpected payload type %T", endpoint, out), usecase.ErrRemoteMalformed)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		c.logger.WarnContext(ctx, "sleeper response decode failed", "endpoint", endpoint, "path", path, "error", err)
		return crerr.Mark(crerr.Wrapf(err, "decode sleeper %s payload", endpoint), usecase.ErrRemoteMalformed)
	}
	return nil
}

func (c *Client) waitLimiter(ctx context.Context, endpoint string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return crerr.Wrapf(ctxErr, "sleeper %s rate limit wait", endpoint)
		}
		return crerr.Mark(crerr.Wrapf(err, "sleeper %s rate limit wait", endpoint), usecase.ErrRemoteUnavailable)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, endpoint, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, crerr.Wrap(err, "build request")
	}
	req.Header.Set("accept", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			c.observe(endpoint, "canceled", time.Since(started))
			return nil, crerr.Wrapf(ctxErr, "sleeper %s request", endpoint)
		}
		c.observe(endpoint, "transport_error", time.Since(started))
		c.logger.WarnContext(ctx, "sleeper request failed", "endpoint", endpoint, "error", err)
		return nil, crerr.Mark(crerr.Wrapf(err, "sleeper %s request", endpoint), usecase.ErrRemoteUnavailable)
	}
	defer resp.Body.Close()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := buf.ReadFrom(io.LimitReader(resp.Body, maxBodyBytes)); err != nil {
		c.observe(endpoint, "transport_error", time.Since(started))
		return nil, crerr.Mark(crerr.Wrapf(err, "read sleeper %s body", endpoint), usecase.ErrRemoteUnavailable)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.observe(endpoint, "status_"+strconv.Itoa(resp.StatusCode), time.Since(started))
		c.logger.WarnContext(ctx, "sleeper returned non-2xx", "endpoint", endpoint, "status", resp.StatusCode)
		statusErr := &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: abbreviate(buf.B)}
		marked := crerr.Mark(statusErr, usecase.ErrRemoteUnavailable)
		if resp.StatusCode == http.StatusNotFound {
			marked = crerr.Mark(marked, usecase.ErrRemoteNotFound)
		}
		return nil, marked
	}

	c.observe(endpoint, "ok", time.Since(started))
	return append([]byte(nil), buf.B...), nil
}

func (c *Client) observe(endpoint, outcome string, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveRemoteRequest(endpoint, outcome, elapsed)
}

// isBreakerFailure counts transport errors, throttling and 5xx against the upstream.
// Client-side cancellation and 4xx answers do not trip the breaker.
func isBreakerFailure(err error) bool {
	if crerr.Is(err, context.Canceled) || crerr.Is(err, context.DeadlineExceeded) {
		return false
	}
	var statusErr *StatusError
	if crerr.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
	}
	return crerr.Is(err, usecase.ErrRemoteUnavailable)
}

func abbreviate(raw []byte) string {
	const limit = 256
	text := strings.TrimSpace(string(raw))
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
