// Package client talks to the calendar REST API.
package client

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

	"github.com/lomoval/personal-calendar/internal/app"
	"github.com/lomoval/personal-calendar/internal/storage"
)

const defaultTimeout = 10 * time.Second

// APIError is a non-success response of the API.
type APIError struct {
	StatusCode int
	Message    string
	Details    []app.FieldError
}

func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("calendar api: %d %s", e.StatusCode, e.Message)
	}
	parts := make([]string, 0, len(e.Details))
	for _, d := range e.Details {
		parts = append(parts, d.Field+": "+d.Message)
	}
	return fmt.Sprintf("calendar api: %d %s (%s)", e.StatusCode, e.Message, strings.Join(parts, "; "))
}

// Unwrap exposes the service error kind so callers can use errors.Is/As
// the same way they do against the service itself.
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return app.ErrNotFound
	case http.StatusBadRequest:
		return &app.ValidationError{Details: e.Details}
	default:
		return nil
	}
}

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Health(ctx context.Context) error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.do(ctx, http.MethodGet, "/health", nil, http.StatusOK, &resp); err != nil {
		return err
	}
	if resp.Status != "healthy" {
		return fmt.Errorf("calendar api is %q", resp.Status)
	}
	return nil
}

func (c *Client) ListByMonth(ctx context.Context, year int, month time.Month) ([]storage.Event, error) {
	events := make([]storage.Event, 0)
	path := fmt.Sprintf("/api/events/%04d/%02d", year, int(month))
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) GetEvent(ctx context.Context, id int64) (storage.Event, error) {
	var e storage.Event
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/events/%d", id), nil, http.StatusOK, &e)
	return e, err
}

func (c *Client) CreateEvent(ctx context.Context, in app.EventInput) (storage.Event, error) {
	var e storage.Event
	err := c.do(ctx, http.MethodPost, "/api/events", in, http.StatusCreated, &e)
	return e, err
}

func (c *Client) UpdateEvent(ctx context.Context, id int64, in app.EventInput) (storage.Event, error) {
	var e storage.Event
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/api/events/%d", id), in, http.StatusOK, &e)
	return e, err
}

func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/events/%d", id), nil, http.StatusNoContent, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, expected int, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to prepare request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != expected {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	var body struct {
		Error   string           `json:"error"`
		Message string           `json:"message"`
		Details []app.FieldError `json:"details"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		return apiErr
	}
	if body.Error != "" {
		apiErr.Message = body.Error
	}
	if body.Message != "" {
		apiErr.Message += ": " + body.Message
	}
	apiErr.Details = body.Details
	return apiErr
}
