package client

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
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"todolist/internal/core/domain"
	"todolist/internal/core/model/request"
	"todolist/internal/core/model/response"
)

const DefaultBaseURL = "http://localhost:8080"

// APIError is any non-2xx answer other than a 404 on /todos/{id}.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Errors     []response.ValidationError
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("server returned %d", e.StatusCode)

	if e.Message != "" {
		msg += ": " + e.Message
	}

	for _, fe := range e.Errors {
		msg += fmt.Sprintf("; %s: %s", fe.Field, fe.Message)
	}

	return msg
}

// Client speaks the to-do HTTP API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   10 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) List(ctx context.Context) ([]domain.Todo, error) {
	var todos []domain.Todo

	if err := c.do(ctx, http.MethodGet, "/todos", nil, &todos); err != nil {
		return nil, err
	}

	if todos == nil {
		todos = []domain.Todo{}
	}

	return todos, nil
}

// Board fetches the server-side arrangement for mode.
func (c *Client) Board(ctx context.Context, mode domain.SortMode) (domain.Buckets, error) {
	var board response.BoardResponse

	path := "/todos/board?sort=" + url.QueryEscape(string(mode))

	if err := c.do(ctx, http.MethodGet, path, nil, &board); err != nil {
		return domain.Buckets{}, err
	}

	return board.Buckets, nil
}

func (c *Client) Create(ctx context.Context, req request.CreateTodoRequest) (domain.Todo, error) {
	return c.todo(ctx, http.MethodPost, "/todos", req)
}

func (c *Client) Update(ctx context.Context, id int, req request.PatchTodoRequest) (domain.Todo, error) {
	return c.todo(ctx, http.MethodPatch, todoPath(id), req)
}

func (c *Client) Toggle(ctx context.Context, id int) (domain.Todo, error) {
	return c.todo(ctx, http.MethodPost, todoPath(id)+"/toggle", nil)
}

func (c *Client) Delete(ctx context.Context, id int) error {
	var msg response.TodoMessage
	return c.do(ctx, http.MethodDelete, todoPath(id), nil, &msg)
}

func (c *Client) todo(ctx context.Context, method, path string, body any) (domain.Todo, error) {
	var msg response.TodoMessage

	if err := c.do(ctx, method, path, body, &msg); err != nil {
		return domain.Todo{}, err
	}

	if msg.Todo == nil {
		return domain.Todo{}, fmt.Errorf("%s %s: response has no todo", method, path)
	}

	return *msg.Todo, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound && isTodoPath(path) {
		return domain.ErrTodoNotFound
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}

		var errResp response.ErrorResponse
		if json.Unmarshal(data, &errResp) == nil {
			apiErr.Code = errResp.Error.Code
			apiErr.Message = errResp.Message
			apiErr.Errors = errResp.Error.Errors
		}

		return apiErr
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func todoPath(id int) string {
	return "/todos/" + strconv.Itoa(id)
}

// isTodoPath matches /todos/{id} and its sub-resources.
func isTodoPath(path string) bool {
	rest, ok := strings.CutPrefix(path, "/todos/")
	if !ok {
		return false
	}

	id, _, _ := strings.Cut(rest, "/")
	_, err := strconv.Atoi(id)

	return err == nil
}
