// Package authapi is the HTTP client for the remote authentication API.
package authapi

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

	"github.com/chatly/chatweb/internal/model"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/chatly/chatweb/internal/authapi"

// maxResponseBytes bounds how much of a response body is decoded.
const maxResponseBytes = 1 << 20

var (
	ErrUnexpectedResponse = errors.New("unexpected response from auth api")
)

// StatusError reports a server-side failure of the remote API.
type StatusError struct {
	Op   string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("auth api %s: status %d", e.Op, e.Code)
}

// Client calls the remote authentication API.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
}

// NewClient creates a Client for baseURL. Every call is bounded by timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tracer:  otel.Tracer(tracerName),
	}
}

// Login submits login credentials. A response without a token is a rejection,
// not an error.
func (c *Client) Login(ctx context.Context, creds model.LoginCredentials) (model.AuthResponse, error) {
	var resp model.AuthResponse
	err := c.do(ctx, "login", http.MethodPost, "/auth/login", "", creds, &resp)
	return resp, err
}

// Register submits a registration. A response without a token is a rejection.
func (c *Client) Register(ctx context.Context, creds model.RegisterCredentials) (model.AuthResponse, error) {
	var resp model.AuthResponse
	err := c.do(ctx, "register", http.MethodPost, "/auth/register", "", creds, &resp)
	return resp, err
}

// GoogleAuth exchanges a Google ID token for an API session token.
func (c *Client) GoogleAuth(ctx context.Context, idToken string) (model.AuthResponse, error) {
	var resp model.AuthResponse
	err := c.do(ctx, "google", http.MethodPost, "/api/google", "", model.GoogleAuthRequest{TokenID: idToken}, &resp)
	return resp, err
}

// ValidUser asks whether token identifies a logged-in user.
func (c *Client) ValidUser(ctx context.Context, token string) (model.ValidSessionResponse, error) {
	var resp model.ValidSessionResponse
	err := c.do(ctx, "valid", http.MethodGet, "/auth/valid", token, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, op, method, path, token string, in, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "authapi."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, op+" failed")
		}
		span.End()
	}()

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("auth api %s: %w", op, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode >= http.StatusInternalServerError {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return &StatusError{Op: op, Code: resp.StatusCode}
	}

	// 4xx responses still carry a JSON body; with no token in it they are
	// rejections, which the caller sees as an empty result.
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %s: %v", ErrUnexpectedResponse, op, err)
	}

	return nil
}
