// Package client reads the four dashboard collections over HTTP. It
// implements dashboard.Source, so a snapshot can be assembled away from the
// server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/sorayamlj/FocusTache/domain"
)

const (
	tasksPath    = "/api/v1/tasks"
	sessionsPath = "/api/v1/sessions"
	notesPath    = "/api/v1/notes"
	eventsPath   = "/api/v1/calendar/events"

	// taskPageSize matches the largest page the server hands out.
	taskPageSize = 1000
)

type Client struct {
	baseURL string
	token   string
	timeout time.Duration
	http    *fasthttp.Client
}

type Option func(*Client)

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New builds a client for the API at baseURL, authenticating with a bearer token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		timeout: 5 * time.Second,
		http: &fasthttp.Client{
			Name:                "focustache-client",
			MaxIdleConnDuration: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// The owner is implied by the token; the argument exists to satisfy
// dashboard.Source.

// Tasks pages through the whole task list.
func (c *Client) Tasks(ctx context.Context, _ string) ([]domain.Task, error) {
	tasks := []domain.Task{}
	for offset := 0; ; offset += taskPageSize {
		page := []domain.Task{}
		path := fmt.Sprintf("%s?limit=%d&offset=%d", tasksPath, taskPageSize, offset)
		if err := c.fetch(ctx, path, "tasks", &page); err != nil {
			return nil, err
		}
		tasks = append(tasks, page...)
		if len(page) < taskPageSize {
			return tasks, nil
		}
	}
}

func (c *Client) Sessions(ctx context.Context, _ string) ([]domain.FocusSession, error) {
	sessions := []domain.FocusSession{}
	err := c.fetch(ctx, sessionsPath, "sessions", &sessions)
	return sessions, err
}

func (c *Client) Notes(ctx context.Context, _ string) ([]domain.Note, error) {
	notes := []domain.Note{}
	err := c.fetch(ctx, notesPath, "notes", &notes)
	return notes, err
}

func (c *Client) Events(ctx context.Context, _ string) ([]domain.CalendarEvent, error) {
	events := []domain.CalendarEvent{}
	err := c.fetch(ctx, eventsPath, "events", &events)
	return events, err
}

func (c *Client) fetch(ctx context.Context, path, collection string, dst interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		return fmt.Errorf("GET %s: unexpected status %d", path, status)
	}
	return DecodeCollection(resp.Body(), collection, dst)
}

// DecodeCollection unmarshals a list body into dst. The list may arrive bare,
// under its collection name, or inside a data envelope, either directly or
// named: [...], {"tasks": [...]}, {"data": [...]}, {"data": {"tasks": [...]}}.
// An empty body or a null collection decodes to an empty list.
func DecodeCollection(body []byte, collection string, dst interface{}) error {
	raw, err := locate(bytes.TrimSpace(body), collection, 0)
	if err != nil {
		return err
	}
	if raw == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", collection, err)
	}
	return nil
}

func locate(body []byte, collection string, depth int) (json.RawMessage, error) {
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return nil, nil
	}
	switch body[0] {
	case '[':
		return body, nil
	case '{':
		if depth > 1 {
			return nil, fmt.Errorf("decode %s: collection not found", collection)
		}
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(body, &obj); err != nil {
			return nil, fmt.Errorf("decode %s: %w", collection, err)
		}
		if named, ok := obj[collection]; ok {
			return locate(bytes.TrimSpace(named), collection, depth+1)
		}
		if data, ok := obj["data"]; ok {
			return locate(bytes.TrimSpace(data), collection, depth+1)
		}
		return nil, fmt.Errorf("decode %s: collection not found", collection)
	default:
		return nil, fmt.Errorf("decode %s: unexpected body", collection)
	}
}
