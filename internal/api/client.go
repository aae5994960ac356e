// Package api implements the authenticated client for the micebot remote API.
//
// The client owns a single session token. Every resource operation first
// checks the token with a heartbeat and, when it is no longer accepted,
// authenticates once before issuing its request. HTTP status codes are mapped
// per operation to the domain errors declared in the model package.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"micebot/internal/model"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "micebot/internal/api"

// Client is the authenticated remote API client.
//
// The token is guarded for memory safety only: sessions are not coordinated,
// so overlapping calls on one client may each re-authenticate and the last
// result wins. Callers that need a single session serialise their calls.
type Client struct {
	endpoint string
	username string
	password string

	mu          sync.RWMutex
	accessToken string

	httpClient *http.Client
	tracer     trace.Tracer
	metrics    *Metrics
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithMetrics records every request on m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTracer replaces the tracer obtained from the global provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = tracer
	}
}

// New creates a client for the API at endpoint. No request is sent until the
// first operation.
func New(endpoint, username, password string, logger zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		username:   username,
		password:   password,
		httpClient: &http.Client{},
		tracer:     otel.Tracer(tracerName),
		logger:     logger.With().Str("component", "api-client").Logger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// AccessToken returns the current session token, or an empty string when the
// client never authenticated.
func (c *Client) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.accessToken
}

func (c *Client) setAccessToken(token string) {
	c.mu.Lock()
	c.accessToken = token
	c.mu.Unlock()
}

type authResponse struct {
	AccessToken string `json:"access_token"`
}

type heartbeatResponse struct {
	Valid *bool `json:"valid"`
}

// Authenticate exchanges the credentials for a session token.
//
// It returns false when the remote rejects the credentials with 401, leaving
// the token untouched. Any other response must carry an access token;
// otherwise ErrAuthContractViolation is returned.
func (c *Client) Authenticate(ctx context.Context) (bool, error) {
	form := url.Values{}
	form.Set("username", c.username)
	form.Set("password", c.password)

	resp, err := c.send(ctx, request{
		operation:   opAuthenticate,
		method:      http.MethodPost,
		path:        PathAuth,
		body:        []byte(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	})
	if err != nil {
		return false, model.NewTransportError(actionAuthenticate, 0, err)
	}

	if resp.status == http.StatusUnauthorized {
		c.logger.Warn().Str("username", c.username).Msg("credentials rejected by the API")
		return false, nil
	}

	var payload authResponse
	if err := json.Unmarshal(resp.body, &payload); err != nil || payload.AccessToken == "" {
		c.logger.Error().
			Int("status", resp.status).
			Msg("authentication response without access token")
		return false, model.NewAuthContractViolation()
	}

	c.setAccessToken(payload.AccessToken)
	c.logger.Debug().Msg("authenticated")

	return true, nil
}

// Heartbeat reports whether the current token is still accepted by the API.
// Without a token no request is sent.
func (c *Client) Heartbeat(ctx context.Context) bool {
	token := c.AccessToken()
	if token == "" {
		return false
	}

	resp, err := c.send(ctx, request{
		operation: opHeartbeat,
		method:    http.MethodGet,
		path:      PathHeartbeat,
		token:     token,
	})
	if err != nil {
		c.logger.Warn().Err(err).Msg("heartbeat request failed")
		return false
	}

	if resp.status == http.StatusUnauthorized {
		return false
	}

	var payload heartbeatResponse
	if err := json.Unmarshal(resp.body, &payload); err != nil {
		c.logger.Warn().Err(err).Int("status", resp.status).Msg("undecodable heartbeat response")
		return false
	}

	return payload.Valid != nil && *payload.Valid
}

// ensureAuthenticated authenticates once when the heartbeat fails. A rejected
// authentication is not retried; the resource call proceeds with whatever
// token the client holds.
func (c *Client) ensureAuthenticated(ctx context.Context) error {
	if c.Heartbeat(ctx) {
		return nil
	}

	c.metrics.reauthenticated()

	ok, err := c.Authenticate(ctx)
	if err != nil {
		return err
	}
	if !ok {
		c.logger.Warn().Msg("re-authentication rejected, proceeding with current token")
	}

	return nil
}

type request struct {
	operation   string
	action      string
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
	token       string
}

type response struct {
	status int
	body   []byte
}

// send issues a single request and reads the whole response body. Only
// failures that prevent reading a response are returned as errors.
func (c *Client) send(ctx context.Context, req request) (*response, error) {
	target := c.endpoint + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	ctx, span := c.tracer.Start(ctx, "api."+req.operation, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	requestID := ksuid.New().String()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if req.contentType != "" {
		httpReq.Header.Set("Content-Type", req.contentType)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}

	span.SetAttributes(
		attribute.String("http.method", req.method),
		attribute.String("http.url", target),
		attribute.String("request.id", requestID),
	)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(httpReq.Header))

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.observe(req.operation, 0, time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error().Err(err).
			Str("operation", req.operation).
			Str("request_id", requestID).
			Msg("request to API failed")
		return nil, err
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	c.metrics.observe(req.operation, httpResp.StatusCode, time.Since(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	span.SetAttributes(attribute.Int("http.status_code", httpResp.StatusCode))

	c.logger.Debug().
		Str("operation", req.operation).
		Str("method", req.method).
		Str("path", req.path).
		Int("status", httpResp.StatusCode).
		Dur("duration", time.Since(start)).
		Str("request_id", requestID).
		Msg("api request")

	return &response{status: httpResp.StatusCode, body: data}, nil
}

// authorized runs the authentication gate and then sends req bearing the
// resulting token. The token is read after the gate.
func (c *Client) authorized(ctx context.Context, req request) (*response, error) {
	if err := c.ensureAuthenticated(ctx); err != nil {
		return nil, err
	}

	req.token = c.AccessToken()
	resp, err := c.send(ctx, req)
	if err != nil {
		return nil, model.NewTransportError(req.action, 0, err)
	}
	return resp, nil
}

// decode unmarshals a success body into out and validates it, so that a
// missing required field is reported instead of silently defaulted.
func decode(action string, resp *response, out any) error {
	if err := json.Unmarshal(resp.body, out); err != nil {
		derr := model.NewTransportError(action, resp.status, fmt.Errorf("undecodable response: %w", err))
		derr.Body = string(resp.body)
		return derr
	}

	if err := model.Validate(out); err != nil {
		derr := model.NewTransportError(action, resp.status, fmt.Errorf("malformed response: %w", err))
		derr.Body = string(resp.body)
		return derr
	}

	return nil
}

func formatBool(b bool) string {
	return strconv.FormatBool(b)
}
