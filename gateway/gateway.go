package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// TokenSource supplies the current access credential and the coalesced
// refresh operation. *session.Store satisfies it.
type TokenSource interface {
	AccessToken() string
	Refresh(ctx context.Context) error
}

// Executor is the single outbound call surface feature clients depend on.
type Executor interface {
	Execute(ctx context.Context, method, path string, body interface{}) (*Response, error)
}

// Response is a successful backend reply.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON decodes the response body into v.
func (r *Response) JSON(v interface{}) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return errors.Wrap(err, "[Response.JSON] decode body")
	}
	return nil
}

// StatusError is a backend reply with an error status. The gateway never
// interprets these beyond the authorization-failure handling; they propagate
// to the caller unchanged.
type StatusError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Message)
}

// pendingRequest is one outbound call awaiting credential attachment or a
// retry after refresh. The retried flag is the loop-prevention invariant: a
// request marked as retried is never resubmitted again.
type pendingRequest struct {
	id      string
	method  string
	path    string
	body    []byte
	retried bool
}

// Gateway is the authenticated request path. It attaches the current access
// credential as a bearer header, detects authorization failures, and drives
// the session store through a refresh-and-retry cycle transparently to the
// caller.
type Gateway struct {
	baseURL string
	tokens  TokenSource
	client  *http.Client
	log     zerolog.Logger
	metrics *metrics
}

var _ Executor = (*Gateway)(nil)

// Option modifies a Gateway instance.
type Option func(*Gateway)

// WithHTTPClient sets the HTTP client used for outbound calls.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) {
		g.client = client
	}
}

// WithLogger sets the gateway's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(g *Gateway) {
		g.log = log
	}
}

// New initializes a gateway against baseURL, reading credentials from
// tokens.
func New(baseURL string, tokens TokenSource, options ...Option) (*Gateway, error) {
	if baseURL == "" {
		return nil, errors.New("[gateway.New] baseURL is required")
	}
	if tokens == nil {
		return nil, errors.New("[gateway.New] token source is required")
	}

	gw := &Gateway{
		baseURL: baseURL,
		tokens:  tokens,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(gw)
	}
	if gw.metrics == nil {
		gw.metrics = newMetrics(nil)
	}
	return gw, nil
}

// Execute issues one call to the backend. On an authorization failure the
// gateway refreshes the session's access credential and resubmits the
// original call exactly once; any other failure propagates unchanged.
func (g *Gateway) Execute(ctx context.Context, method, path string, body interface{}) (*Response, error) {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "[Gateway.Execute] marshal request body")
		}
		payload = data
	}

	pending := pendingRequest{
		id:     uuid.New().String(),
		method: method,
		path:   path,
		body:   payload,
	}

	resp, err := g.send(ctx, pending)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && !pending.retried {
		g.log.Debug().Str("request_id", pending.id).Str("path", path).Msg("authorization failure, refreshing")
		if refreshErr := g.tokens.Refresh(ctx); refreshErr != nil {
			// The session store has already transitioned to logged out;
			// surface the original authorization failure.
			g.metrics.refreshFailures.Inc()
			g.log.Debug().Err(refreshErr).Str("request_id", pending.id).Msg("refresh failed")
			return nil, statusError(resp)
		}
		g.metrics.refreshes.Inc()

		retry := pending
		retry.retried = true
		g.metrics.retries.Inc()
		resp, err = g.send(ctx, retry)
		if err != nil {
			return nil, err
		}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, statusError(resp)
	}
	return resp, nil
}

// send performs one HTTP exchange for a pending request, attaching the
// current access credential when one is present.
func (g *Gateway) send(ctx context.Context, pending pendingRequest) (*Response, error) {
	var reader io.Reader
	if pending.body != nil {
		reader = bytes.NewReader(pending.body)
	}

	req, err := http.NewRequestWithContext(ctx, pending.method, g.baseURL+pending.path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "[Gateway.send] build request")
	}
	req.Header.Set("Content-Type", "application/json")
	if token := g.tokens.AccessToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.metrics.requests.WithLabelValues(pending.method, "error").Inc()
		return nil, errors.Wrap(err, "[Gateway.send] http request")
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "[Gateway.send] read response body")
	}

	g.metrics.requests.WithLabelValues(pending.method, fmt.Sprintf("%d", resp.StatusCode)).Inc()
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}

func statusError(resp *Response) *StatusError {
	message := http.StatusText(resp.StatusCode)
	var out struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body, &out); err == nil && out.Error != "" {
		message = out.Error
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: message, Body: resp.Body}
}
