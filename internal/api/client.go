package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/CaptainBerkay35/taskmanager/internal/domain"
)

// Client is the typed HTTP client for the task manager REST API.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		Timeout: 10 * time.Second,
	}
}

// APIError wraps non-2xx responses, keeping the server's error payload.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error: status=%d %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error: status=%d body=%s", e.StatusCode, e.Body)
}

// UserMessage returns the server-provided message when there is one,
// falling back to a generic line. Shown to the user verbatim.
func (e *APIError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed (HTTP %d)", e.StatusCode)
}

// AuthResponse is the login/register payload.
type AuthResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
}

// DeleteProjectResult reports what a cascading project delete removed,
// for user messaging.
type DeleteProjectResult struct {
	ProjectName       string `json:"projectName"`
	DeletedTasksCount int    `json:"deletedTasksCount"`
}

// Login exchanges credentials for a bearer token and profile.
func (c *Client) Login(ctx context.Context, username, password string) (AuthResponse, error) {
	body := map[string]any{"username": username, "password": password}
	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, "auth/login", body, &resp)
	return resp, err
}

// Register creates an account; same response shape as Login.
func (c *Client) Register(ctx context.Context, username, email, password, fullName string) (AuthResponse, error) {
	body := map[string]any{
		"username": username,
		"email":    email,
		"password": password,
		"fullName": fullName,
	}
	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, "auth/register", body, &resp)
	return resp, err
}

func (c *Client) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var resp []domain.Task
	err := c.do(ctx, http.MethodGet, "tasks", nil, &resp)
	for i := range resp {
		resp[i].Normalize()
	}
	return resp, err
}

func (c *Client) GetTask(ctx context.Context, id string) (domain.Task, error) {
	var resp domain.Task
	err := c.do(ctx, http.MethodGet, "tasks/"+url.PathEscape(id), nil, &resp)
	resp.Normalize()
	return resp, err
}

func (c *Client) CreateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	var resp domain.Task
	err := c.do(ctx, http.MethodPost, "tasks", t, &resp)
	return resp, err
}

// UpdateTask is a full replace (PUT), mirroring the server contract.
func (c *Client) UpdateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	var resp domain.Task
	err := c.do(ctx, http.MethodPut, "tasks/"+url.PathEscape(t.ID), t, &resp)
	return resp, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "tasks/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var resp []domain.Category
	err := c.do(ctx, http.MethodGet, "categories", nil, &resp)
	return resp, err
}

func (c *Client) GetCategory(ctx context.Context, id string) (domain.Category, error) {
	var resp domain.Category
	err := c.do(ctx, http.MethodGet, "categories/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

func (c *Client) CreateCategory(ctx context.Context, cat domain.Category) (domain.Category, error) {
	var resp domain.Category
	err := c.do(ctx, http.MethodPost, "categories", cat, &resp)
	return resp, err
}

func (c *Client) UpdateCategory(ctx context.Context, cat domain.Category) (domain.Category, error) {
	var resp domain.Category
	err := c.do(ctx, http.MethodPut, "categories/"+url.PathEscape(cat.ID), cat, &resp)
	return resp, err
}

// DeleteCategory fails with a 409 APIError while tasks or projects still
// reference the category.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "categories/"+url.PathEscape(id), nil, nil)
}

func (c *Client) ListProjects(ctx context.Context) ([]domain.Project, error) {
	var resp []domain.Project
	err := c.do(ctx, http.MethodGet, "projects", nil, &resp)
	return resp, err
}

func (c *Client) GetProject(ctx context.Context, id string) (domain.Project, error) {
	var resp domain.Project
	err := c.do(ctx, http.MethodGet, "projects/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

func (c *Client) CreateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	var resp domain.Project
	err := c.do(ctx, http.MethodPost, "projects", p, &resp)
	return resp, err
}

func (c *Client) UpdateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	var resp domain.Project
	err := c.do(ctx, http.MethodPut, "projects/"+url.PathEscape(p.ID), p, &resp)
	return resp, err
}

// DeleteProject cascades server-side; the result carries the number of
// tasks removed with the project.
func (c *Client) DeleteProject(ctx context.Context, id string) (DeleteProjectResult, error) {
	var resp DeleteProjectResult
	err := c.do(ctx, http.MethodDelete, "projects/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

// SubTasksByTask lists the sub-tasks owned by a task.
func (c *Client) SubTasksByTask(ctx context.Context, taskID string) ([]domain.SubTask, error) {
	var resp []domain.SubTask
	err := c.do(ctx, http.MethodGet, "subtasks/ByTask/"+url.PathEscape(taskID), nil, &resp)
	return resp, err
}

func (c *Client) CreateSubTask(ctx context.Context, st domain.SubTask) (domain.SubTask, error) {
	var resp domain.SubTask
	err := c.do(ctx, http.MethodPost, "subtasks", st, &resp)
	return resp, err
}

func (c *Client) UpdateSubTask(ctx context.Context, st domain.SubTask) (domain.SubTask, error) {
	var resp domain.SubTask
	err := c.do(ctx, http.MethodPut, "subtasks/"+url.PathEscape(st.ID), st, &resp)
	return resp, err
}

func (c *Client) DeleteSubTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "subtasks/"+url.PathEscape(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	u := c.base() + "/api/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, u, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return newAPIError(resp.StatusCode, b)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// newAPIError extracts the {error:{code,message}} envelope when present.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status, Body: string(body)}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
		if apiErr.Message == "" {
			apiErr.Message = envelope.Message
		}
	}
	return apiErr
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
