package studyboardsdk

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
)

// Client is a minimal studyboard HTTP API client. Login stores the bearer token
// used by every later call.
type Client struct {
	BaseURL     string
	BasePath    string
	BearerToken string
	HTTPClient  *http.Client
	Timeout     time.Duration
}

// New creates a client with sane defaults.
func New(baseURL string) *Client {
	return &Client{
		BaseURL:  baseURL,
		BasePath: "/v0",
		Timeout:  10 * time.Second,
	}
}

// Actor represents the API actor model.
type Actor struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Task represents a kanban task.
type Task struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Responsible string `json:"responsible"`
	Deadline    string `json:"deadline,omitempty"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

// Project represents the API project model (partial).
type Project struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Discipline  string   `json:"discipline"`
	DueDate     string   `json:"due_date"`
	Status      string   `json:"status"`
	Members     []string `json:"members"`
	Tasks       []Task   `json:"tasks"`
	Access      []string `json:"access"`
}

type Comment struct {
	User string `json:"user"`
	Text string `json:"text"`
}

// Activity represents a feed entry.
type Activity struct {
	ID          string    `json:"id"`
	Discipline  string    `json:"discipline"`
	Description string    `json:"description"`
	DueDate     string    `json:"due_date,omitempty"`
	Status      string    `json:"status"`
	User        string    `json:"user"`
	Comments    []Comment `json:"comments"`
	Pinned      bool      `json:"pinned"`
	ProjectID   string    `json:"project_id,omitempty"`
}

// Board holds tasks bucketed by status.
type Board struct {
	Todo     []Task `json:"todo"`
	Progress []Task `json:"progress"`
	Done     []Task `json:"done"`
}

type Dashboard struct {
	Actor           Actor      `json:"actor"`
	Today           string     `json:"today"`
	ActiveProjects  []Project  `json:"active_projects"`
	DailyActivities []Activity `json:"daily_activities"`
}

type NewProject struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Discipline  string   `json:"discipline"`
	DueDate     string   `json:"due_date"`
	Status      string   `json:"status,omitempty"`
	Access      []string `json:"access,omitempty"`
}

type NewActivity struct {
	Discipline  string `json:"discipline"`
	Description string `json:"description"`
	DueDate     string `json:"due_date,omitempty"`
	Status      string `json:"status,omitempty"`
	ProjectID   string `json:"project_id,omitempty"`
}

// APIError wraps non-2xx responses.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Body)
}

// Login authenticates and keeps the returned token.
func (c *Client) Login(ctx context.Context, name, password string) (Actor, error) {
	var out struct {
		Token string `json:"token"`
		Actor Actor  `json:"actor"`
	}
	body := map[string]string{"name": name, "password": password}
	if err := c.do(ctx, http.MethodPost, "auth/login", body, &out); err != nil {
		return Actor{}, err
	}
	c.BearerToken = out.Token
	return out.Actor, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "auth/logout", nil, nil); err != nil {
		return err
	}
	c.BearerToken = ""
	return nil
}

func (c *Client) Me(ctx context.Context) (Actor, error) {
	var out Actor
	err := c.do(ctx, http.MethodGet, "me", nil, &out)
	return out, err
}

func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var out struct {
		Items []Project `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, "projects", nil, &out)
	return out.Items, err
}

func (c *Client) Project(ctx context.Context, id string) (Project, error) {
	var out Project
	err := c.do(ctx, http.MethodGet, "projects/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) CreateProject(ctx context.Context, p NewProject) (Project, error) {
	var out Project
	err := c.do(ctx, http.MethodPost, "projects", p, &out)
	return out, err
}

func (c *Client) Board(ctx context.Context, projectID string) (Board, error) {
	var out Board
	err := c.do(ctx, http.MethodGet, "projects/"+url.PathEscape(projectID)+"/board", nil, &out)
	return out, err
}

func (c *Client) AddTask(ctx context.Context, projectID, title, priority string) (Task, error) {
	var out Task
	body := map[string]string{"title": title}
	if priority != "" {
		body["priority"] = priority
	}
	err := c.do(ctx, http.MethodPost, "projects/"+url.PathEscape(projectID)+"/tasks", body, &out)
	return out, err
}

func (c *Client) MoveTask(ctx context.Context, projectID, taskID, status string) (Task, error) {
	var out Task
	endpoint := fmt.Sprintf("projects/%s/tasks/%s", url.PathEscape(projectID), url.PathEscape(taskID))
	err := c.do(ctx, http.MethodPatch, endpoint, map[string]string{"status": status}, &out)
	return out, err
}

func (c *Client) Activities(ctx context.Context) ([]Activity, error) {
	var out struct {
		Items []Activity `json:"items"`
	}
	err := c.do(ctx, http.MethodGet, "activities", nil, &out)
	return out.Items, err
}

func (c *Client) CreateActivity(ctx context.Context, a NewActivity) (Activity, error) {
	var out Activity
	err := c.do(ctx, http.MethodPost, "activities", a, &out)
	return out, err
}

func (c *Client) AddComment(ctx context.Context, activityID, text string) (Activity, error) {
	var out Activity
	err := c.do(ctx, http.MethodPost, "activities/"+url.PathEscape(activityID)+"/comments", map[string]string{"text": text}, &out)
	return out, err
}

func (c *Client) TogglePin(ctx context.Context, activityID string) (Activity, error) {
	var out Activity
	err := c.do(ctx, http.MethodPost, "activities/"+url.PathEscape(activityID)+"/pin", nil, &out)
	return out, err
}

func (c *Client) Dashboard(ctx context.Context) (Dashboard, error) {
	var out Dashboard
	err := c.do(ctx, http.MethodGet, "dashboard", nil, &out)
	return out, err
}

// Ask sends a prompt to the assistant. Provider failures arrive as answer text.
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	var out struct {
		Answer string `json:"answer"`
	}
	err := c.do(ctx, http.MethodPost, "assistant", map[string]string{"prompt": prompt}, &out)
	return out.Answer, err
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	url := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.BearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(b)}
		var env struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(b, &env) == nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) base() string {
	basePath := strings.Trim(c.BasePath, "/")
	if basePath == "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return strings.TrimRight(c.BaseURL, "/") + "/" + basePath
}
