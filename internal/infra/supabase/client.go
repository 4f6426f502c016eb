// Package supabase provides a client for Supabase (PostgREST + Auth +
// Edge Functions). It is the only persistence of the scheduling backend.
package supabase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/domain"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/infra/resilience"
	"github.com/EduardoNJuniorJF/agendamento-sub000/internal/port"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("supabase")

var (
	_ port.AgentStore       = (*Client)(nil)
	_ port.VehicleStore     = (*Client)(nil)
	_ port.AppointmentStore = (*Client)(nil)
	_ port.VacationStore    = (*Client)(nil)
	_ port.TimeOffStore     = (*Client)(nil)
	_ port.BonusStore       = (*Client)(nil)
	_ port.DirectoryStore   = (*Client)(nil)
	_ port.Authenticator    = (*Client)(nil)
	_ port.UserAdmin        = (*AdminUsers)(nil)
)

// Client wraps HTTP calls to the Supabase APIs.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	apiKey         string
	serviceRoleKey string
	cb             *gobreaker.CircuitBreaker
	bulkhead       *resilience.Bulkhead
	cfg            resilience.Config
	logger         *zap.Logger
}

// NewClient creates a Supabase client.
func NewClient(httpClient *http.Client, baseURL, apiKey, serviceRoleKey string, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient:     httpClient,
		baseURL:        strings.TrimRight(baseURL, "/"),
		apiKey:         apiKey,
		serviceRoleKey: serviceRoleKey,
		cb:             cb,
		bulkhead:       resilience.NewBulkhead(cfg.MaxConcurrency),
		cfg:            cfg,
		logger:         logger,
	}
}

// IsRejection reports whether err is the backend answering with a 4xx.
// Used by the circuit breaker so that validation failures do not trip it.
func IsRejection(err error) bool {
	var api *APIError
	return errors.As(err, &api) && api.Status >= 400 && api.Status < 500
}

// request is one HTTP call to Supabase.
type request struct {
	method string
	url    string
	body   io.Reader
	bearer string
	prefer string
}

// do executes an authenticated request. A 404 or 204 yields a nil body.
// Non-2xx answers are returned as *APIError; 4xx ones are marked
// permanent so reads are not retried on them.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.bulkhead.Release()

	req, err := http.NewRequestWithContext(ctx, r.method, r.url, r.body)
	if err != nil {
		c.logger.Error("supabase: failed to create request",
			zap.String("method", r.method),
			zap.String("url", r.url),
			zap.Error(err),
		)
		return nil, resilience.Permanent(err)
	}

	bearer := r.bearer
	if bearer == "" {
		bearer = c.serviceRoleKey
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Content-Type", "application/json")
	if r.prefer != "" {
		req.Header.Set("Prefer", r.prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("supabase: request failed",
			zap.String("method", r.method),
			zap.String("url", r.url),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		c.logger.Error("supabase: failed to read response body",
			zap.String("method", r.method),
			zap.String("url", r.url),
			zap.Error(err),
		)
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("supabase: non-2xx response",
			zap.String("method", r.method),
			zap.String("url", r.url),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		apiErr := parseAPIError(resp.StatusCode, body)
		if resp.StatusCode < 500 {
			return nil, resilience.Permanent(apiErr)
		}
		return nil, apiErr
	}

	c.logger.Debug("supabase: request OK",
		zap.String("method", r.method),
		zap.String("url", r.url),
		zap.Int("status", resp.StatusCode),
	)
	return body, nil
}

// read runs an idempotent call under the breaker with retries.
func (c *Client) read(ctx context.Context, service string, fn func() error) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, fn)
	})
	return c.mapError(service, err)
}

// write runs a mutating call under the breaker. Writes are never retried.
func (c *Client) write(ctx context.Context, service string, fn func() error) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, fn()
	})
	return c.mapError(service, err)
}

// mapError turns transport and backend failures into domain errors.
// Domain errors raised inside fn pass through unchanged.
func (c *Client) mapError(service string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.ErrCircuitOpen{Service: "supabase"}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var (
		notFound   *domain.ErrNotFound
		conflict   *domain.ErrConflict
		validation *domain.ErrValidation
		forbidden  *domain.ErrForbidden
	)
	if errors.As(err, &notFound) || errors.As(err, &conflict) || errors.As(err, &validation) || errors.As(err, &forbidden) {
		return err
	}

	var api *APIError
	if errors.As(err, &api) {
		switch {
		case api.IsUniqueViolation():
			return &domain.ErrConflict{Message: api.Message}
		case api.Status == http.StatusForbidden:
			return &domain.ErrForbidden{Action: api.Message}
		}
		return &domain.ErrExternalService{Service: service, Status: api.Status, Message: api.Message, Err: api}
	}
	return &domain.ErrExternalService{Service: service, Err: err}
}

func (c *Client) restURL(path string) string {
	return fmt.Sprintf("%s/rest/v1/%s", c.baseURL, path)
}

func (c *Client) authURL(path string) string {
	return fmt.Sprintf("%s/auth/v1/%s", c.baseURL, path)
}

func (c *Client) functionsURL(name string) string {
	return fmt.Sprintf("%s/functions/v1/%s", c.baseURL, name)
}

// Ping probes PostgREST with a cheap read. Used by /healthz.
func (c *Client) Ping(ctx context.Context) error {
	var rows []struct {
		ID string `json:"id"`
	}
	return c.getJSON(ctx, "supabase/health", "bonus_settings?select=id&limit=1", &rows)
}
