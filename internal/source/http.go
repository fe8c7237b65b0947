package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/ppiankov/supplematch/internal/model"
	"github.com/ppiankov/supplematch/internal/worker"
)

const (
	httpMaxRetries = 3
	maxBodyBytes   = 4 << 20
)

// httpSleepFunc is the sleep function used between retries (injectable for tests)
var httpSleepFunc = time.Sleep

// HTTPSource reads records from a REST backend
type HTTPSource struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	userAgent  string
	limiter    *worker.Limiter
}

// NewHTTPSource creates an HTTP source. limiter may be nil.
func NewHTTPSource(cfg model.SourceConfig, limiter *worker.Limiter) *HTTPSource {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &HTTPSource{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
		},
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		userAgent: cfg.UserAgent,
		limiter:   limiter,
	}
}

// Profile fetches GET {base}/profiles/{user}
func (s *HTTPSource) Profile(ctx context.Context, userID string) (*model.ProfileRecord, error) {
	endpoint := fmt.Sprintf("%s/profiles/%s", s.baseURL, url.PathEscape(userID))

	var raw map[string]any
	if err := s.getJSON(ctx, endpoint, &raw); err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("profile for %s: %w", userID, ErrNotFound)
	}

	p, err := decodeProfile(raw)
	if err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if p.UserID == "" {
		p.UserID = userID
	}
	return p, nil
}

// Checkins fetches GET {base}/checkins?user_id=&since=
func (s *HTTPSource) Checkins(ctx context.Context, userID string, since time.Time) ([]model.Checkin, error) {
	rows, err := s.getRows(ctx, "checkins", userID, since)
	if err != nil {
		return nil, fmt.Errorf("checkins: %w", err)
	}
	var out []model.Checkin
	if err := decodeRows(rows, &out); err != nil {
		return nil, fmt.Errorf("decode checkins: %w", err)
	}
	return out, nil
}

// NutritionLogs fetches GET {base}/nutrition_logs?user_id=&since=
func (s *HTTPSource) NutritionLogs(ctx context.Context, userID string, since time.Time) ([]model.NutritionLog, error) {
	rows, err := s.getRows(ctx, "nutrition_logs", userID, since)
	if err != nil {
		return nil, fmt.Errorf("nutrition logs: %w", err)
	}
	var out []model.NutritionLog
	if err := decodeRows(rows, &out); err != nil {
		return nil, fmt.Errorf("decode nutrition logs: %w", err)
	}
	return out, nil
}

func (s *HTTPSource) getRows(ctx context.Context, table, userID string, since time.Time) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("user_id", userID)
	q.Set("since", since.UTC().Format(time.RFC3339))
	endpoint := fmt.Sprintf("%s/%s?%s", s.baseURL, table, q.Encode())

	var rows []map[string]any
	if err := s.getJSON(ctx, endpoint, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// getJSON performs a GET with retry on transient failures and decodes the body into out
func (s *HTTPSource) getJSON(ctx context.Context, endpoint string, out any) error {
	var err error
	for attempt := 0; attempt < httpMaxRetries; attempt++ {
		var retryable bool
		retryable, err = s.getOnce(ctx, endpoint, out)
		if err == nil || !retryable {
			return err
		}
		if attempt < httpMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			httpSleepFunc(backoff)
		}
	}
	return err
}

func (s *HTTPSource) getOnce(ctx context.Context, endpoint string, out any) (bool, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, endpoint); err != nil {
			return false, fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	if s.apiKey != "" {
		req.Header.Set("apikey", s.apiKey)
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return isRetryableNetworkError(err.Error()), fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return false, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return true, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return false, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return true, fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("decode body: %w", err)
	}
	return false, nil
}

// isRetryableNetworkError checks error strings for transient network failures
func isRetryableNetworkError(errMsg string) bool {
	s := strings.ToLower(errMsg)
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}
