// Package client talks to the todo-list HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/yao-todolist/todo-api/internal/session"
)

const (
	DefaultBaseURL = "http://localhost:3000/api"
	DefaultTimeout = 10 * time.Second

	// TokenKey is the storage key holding the bearer token.
	TokenKey = "auth_token"
)

// ErrUnauthorized matches any 401 answer.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx answer carrying the server's message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	return nil
}

type Client struct {
	baseURL string
	http    *http.Client
	storage session.Storage
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New returns a Client for baseURL (DefaultBaseURL when empty). When
// storage holds TokenKey, every request carries it as a bearer token.
// storage may be nil.
func New(baseURL string, storage session.Storage, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		storage: storage,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is the body of a successful login.
type LoginResult struct {
	Message  string `json:"message"`
	Token    string `json:"token"`
	UserName string `json:"userName"`
	UserID   int64  `json:"userId"`
}

type Task struct {
	CreateID int64  `json:"createid"`
	Text     string `json:"text"`
	Status   bool   `json:"status"`
}

func (c *Client) Register(ctx context.Context, name, email, password string) (int64, error) {
	var out struct {
		UserID int64 `json:"userId"`
	}
	if err := c.post(ctx, "/register", credentials{name, email, password}, nil, &out); err != nil {
		return 0, err
	}
	return out.UserID, nil
}

func (c *Client) Login(ctx context.Context, name, email, password string) (*LoginResult, error) {
	var out LoginResult
	if err := c.post(ctx, "/login", credentials{name, email, password}, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTask adds a task for userID. A non-empty idempotencyKey is sent as
// the Idempotency-Key header.
func (c *Client) CreateTask(ctx context.Context, text, userID, idempotencyKey string) (int64, error) {
	var hdr http.Header
	if idempotencyKey != "" {
		hdr = http.Header{"Idempotency-Key": []string{idempotencyKey}}
	}
	body := map[string]string{"text": text, "user_id": userID}

	var out struct {
		CreateID int64 `json:"createid"`
	}
	if err := c.post(ctx, "/create", body, hdr, &out); err != nil {
		return 0, err
	}
	return out.CreateID, nil
}

func (c *Client) ListTasks(ctx context.Context, userID string) ([]Task, error) {
	var out struct {
		Tasks []Task `json:"tasks"`
	}
	if err := c.post(ctx, "/tasks", map[string]string{"user_id": userID}, nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

func (c *Client) post(ctx context.Context, path string, in any, hdr http.Header, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	for k, vs := range hdr {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.authorize(ctx, req); err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var env struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&env)
		return &APIError{Status: resp.StatusCode, Message: env.Message}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	if c.storage == nil {
		return nil
	}
	token, ok, err := c.storage.GetItem(ctx, TokenKey)
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	if ok && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}
