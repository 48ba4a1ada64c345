// Package client is a small HTTP client for the teamboard JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/kazz187/teamboard/internal/lifecycle"
	"github.com/kazz187/teamboard/internal/sweeper"
	"github.com/kazz187/teamboard/internal/task"
	"github.com/kazz187/teamboard/pkg/cerr"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/") + "/api",
		apiKey:     apiKey,
		httpClient: http.DefaultClient,
	}
}

// WithHTTPClient replaces http.DefaultClient.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) CreateTask(ctx context.Context, req *task.CreateTaskRequest) (*task.Task, error) {
	var t task.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", nil, req, &t); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &t, nil
}

func (c *Client) ListTasks(ctx context.Context, query url.Values) ([]*task.Task, error) {
	var resp task.ListTasksResponse
	if err := c.do(ctx, http.MethodGet, "/tasks", query, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return resp.Tasks, nil
}

func (c *Client) MoveToTrash(ctx context.Context, taskID string) (*lifecycle.EntryView, error) {
	var v lifecycle.EntryView
	if err := c.do(ctx, http.MethodPost, "/tasks/"+url.PathEscape(taskID)+"/trash", nil, nil, &v); err != nil {
		return nil, fmt.Errorf("failed to move task to trash: %w", err)
	}
	return &v, nil
}

func (c *Client) ListTrash(ctx context.Context) ([]*lifecycle.EntryView, error) {
	var resp lifecycle.ListTrashResponse
	if err := c.do(ctx, http.MethodGet, "/trash", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to list trash: %w", err)
	}
	return resp.Entries, nil
}

func (c *Client) Restore(ctx context.Context, entryID string) (*task.Task, error) {
	var t task.Task
	if err := c.do(ctx, http.MethodPost, "/trash/"+url.PathEscape(entryID)+"/restore", nil, nil, &t); err != nil {
		return nil, fmt.Errorf("failed to restore trash entry: %w", err)
	}
	return &t, nil
}

func (c *Client) PermanentlyDelete(ctx context.Context, entryID string) (*lifecycle.PermanentlyDeleteResponse, error) {
	var resp lifecycle.PermanentlyDeleteResponse
	if err := c.do(ctx, http.MethodDelete, "/trash/"+url.PathEscape(entryID), nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to delete trash entry: %w", err)
	}
	return &resp, nil
}

func (c *Client) EmptyTrash(ctx context.Context) (*lifecycle.EmptyTrashResponse, error) {
	var resp lifecycle.EmptyTrashResponse
	if err := c.do(ctx, http.MethodDelete, "/trash", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to empty trash: %w", err)
	}
	return &resp, nil
}

func (c *Client) Sweep(ctx context.Context) (*sweeper.Result, error) {
	var res sweeper.Result
	if err := c.do(ctx, http.MethodPost, "/trash/sweep", nil, nil, &res); err != nil {
		return nil, fmt.Errorf("failed to sweep trash: %w", err)
	}
	return &res, nil
}

// do sends one request. Error responses are decoded into a *cerr.Error so
// callers can branch on the code.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return cerr.DecodeHTTPError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}
