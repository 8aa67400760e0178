// Package backend is the request/response command channel to the RailOptiX
// backend. Server-pushed state arrives on the realtime channel instead.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/railoptix-client/internal/metrics"
	"github.com/GoSim-25-26J-441/railoptix-client/internal/railway/domain"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

var (
	// ErrRejected means the backend answered with success:false
	ErrRejected         = errors.New("backend rejected the request")
	ErrUnexpectedStatus = errors.New("unexpected backend status")
)

const (
	acceptPath   = "/api/accept-suggestion"
	simulatePath = "/api/simulate"
	healthPath   = "/"

	RequestIDHeader = "X-Request-Id"
)

// Options tunes the HTTP client
type Options struct {
	Timeout time.Duration
	// RateLimit is requests per second; zero disables pacing
	RateLimit  float64
	Burst      int
	HTTPClient *http.Client
}

// Client handles command calls to the RailOptiX backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a new backend client
func NewClient(baseURL string, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		limiter:    rate.NewLimiter(limit, burst),
	}
}

// AcceptRequest is the body of an accept-suggestion call
type AcceptRequest struct {
	SuggestionID string `json:"suggestion_id"`
	ConflictID   string `json:"conflict_id"`
}

// AcceptResponse is the backend's implementation result
type AcceptResponse struct {
	Success              bool                 `json:"success"`
	SuggestionID         string               `json:"suggestion_id,omitempty"`
	ConflictID           string               `json:"conflict_id,omitempty"`
	ActionsTaken         []domain.TrainAction `json:"actions_taken,omitempty"`
	ActualDelayReduction float64              `json:"actual_delay_reduction,omitempty"`
	ImplementationTime   string               `json:"implementation_time,omitempty"`
	Status               string               `json:"status,omitempty"`
	Error                string               `json:"error,omitempty"`
	Timestamp            string               `json:"timestamp,omitempty"`
}

// AcceptSuggestion asks the backend to implement a suggestion. Any failure,
// including success:false, is returned as an error. There is no retry.
func (c *Client) AcceptSuggestion(ctx context.Context, suggestionID, conflictID string) (*AcceptResponse, error) {
	var resp AcceptResponse
	err := c.do(ctx, http.MethodPost, acceptPath, AcceptRequest{
		SuggestionID: suggestionID,
		ConflictID:   conflictID,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if !resp.Success {
		reason := resp.Error
		if reason == "" {
			reason = "success=false"
		}
		return &resp, fmt.Errorf("%w: %s", ErrRejected, reason)
	}
	return &resp, nil
}

type simulateRequest struct {
	Scenario domain.SimulationScenario `json:"scenario"`
}

type simulateResponse struct {
	Status     string                   `json:"status"`
	Simulation *domain.SimulationResult `json:"simulation"`
	Timestamp  string                   `json:"timestamp"`
}

// Simulate runs a what-if scenario on the backend
func (c *Client) Simulate(ctx context.Context, scenario domain.SimulationScenario) (*domain.SimulationResult, error) {
	var resp simulateResponse
	if err := c.do(ctx, http.MethodPost, simulatePath, simulateRequest{Scenario: scenario}, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" || resp.Simulation == nil {
		return nil, fmt.Errorf("%w: simulation status %q", ErrRejected, resp.Status)
	}
	if resp.Simulation.Timestamp == "" {
		resp.Simulation.Timestamp = resp.Timestamp
	}
	return resp.Simulation, nil
}

// HealthResponse is the backend's index payload
type HealthResponse struct {
	Service   string `json:"service"`
	Status    string `json:"status"`
	Version   string `json:"version,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Health fetches the backend index
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var resp HealthResponse
	if err := c.do(ctx, http.MethodGet, healthPath, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestIDFrom(ctx))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	if err != nil {
		return fmt.Errorf("failed to call backend: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: backend returned status %d: %s", ErrUnexpectedStatus, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

type requestIDKey struct{}

// WithRequestID attaches an id that outbound calls forward in X-Request-Id
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
