// Package client is a typed GraphQL client for the ws-flare gateway, used
// by flarectl and CI scripts.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is where a locally started gateway listens.
const DefaultBaseURL = "http://localhost:3000"

// ErrNoResult is returned when the gateway resolves a field to null, which
// it does for callers without a valid token.
var ErrNoResult = errors.New("gateway returned no result; check the access token")

// Client provides typed access to the gateway for interactive tools.
type Client struct {
	http *resty.Client
}

// Option customises client instantiation.
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// New constructs a Client pointing at the provided gateway base URL.
func New(base string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid gateway base url: %w", err)
	}
	cli := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(trimmed, "/")).
			SetTimeout(15*time.Second).
			SetHeader("Accept", "application/json"),
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

// APIError represents a non-GraphQL error response, such as a rejected token.
type APIError struct {
	Status  int
	Message string
}

func (e APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("gateway request failed with status %d", e.Status)
	}
	return fmt.Sprintf("gateway request failed (%d): %s", e.Status, e.Message)
}

// QueryError carries the errors array of a GraphQL response.
type QueryError struct {
	Messages []string
}

func (e *QueryError) Error() string {
	return "graphql: " + strings.Join(e.Messages, "; ")
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) do(ctx context.Context, query string, vars map[string]any, token string, v any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	req := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(request{Query: query, Variables: vars})
	if strings.TrimSpace(token) != "" {
		req.SetAuthToken(strings.TrimSpace(token))
	}
	resp, err := req.Post("/graphql")
	if err != nil {
		return fmt.Errorf("perform request: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return APIError{Status: resp.StatusCode(), Message: extractError(resp.Body())}
	}

	var out response
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(out.Errors) > 0 {
		qe := &QueryError{}
		for _, e := range out.Errors {
			qe.Messages = append(qe.Messages, e.Message)
		}
		return qe
	}
	if v == nil || len(out.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(out.Data, v); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}

func extractError(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return strings.TrimSpace(string(body))
	}
	return strings.TrimSpace(payload.Error)
}

// User is the result of login and signup.
type User struct {
	UserID   string `json:"userId"`
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Login exchanges credentials for an access token.
func (c *Client) Login(ctx context.Context, username, password string) (User, error) {
	const query = `mutation Login($username: String!, $password: String!) {
	login(username: $username, password: $password) { userId token username }
}`
	var data struct {
		Login *User `json:"login"`
	}
	vars := map[string]any{"username": username, "password": password}
	if err := c.do(ctx, query, vars, "", &data); err != nil {
		return User{}, err
	}
	if data.Login == nil {
		return User{}, ErrNoResult
	}
	return *data.Login, nil
}

// GenerateCiToken mints a token that lets a pipeline start jobs for taskID.
func (c *Client) GenerateCiToken(ctx context.Context, token, taskID string) (string, error) {
	const query = `query CiToken($taskId: String!) { generateCiToken(taskId: $taskId) { token } }`
	var data struct {
		GenerateCiToken *struct {
			Token string `json:"token"`
		} `json:"generateCiToken"`
	}
	if err := c.do(ctx, query, map[string]any{"taskId": taskID}, token, &data); err != nil {
		return "", err
	}
	if data.GenerateCiToken == nil {
		return "", ErrNoResult
	}
	return data.GenerateCiToken.Token, nil
}

// Job mirrors the gateway's Job type.
type Job struct {
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt"`
	TaskID    string `json:"taskId"`
	IsRunning *bool  `json:"isRunning"`
	Passed    *bool  `json:"passed"`
}

const jobFields = `id createdAt taskId isRunning passed`

// CreateJob starts a load test run for taskID.
func (c *Client) CreateJob(ctx context.Context, token, taskID string) (Job, error) {
	query := `mutation CreateJob($taskId: String!) { createJob(taskId: $taskId) { ` + jobFields + ` } }`
	var data struct {
		CreateJob *Job `json:"createJob"`
	}
	if err := c.do(ctx, query, map[string]any{"taskId": taskID}, token, &data); err != nil {
		return Job{}, err
	}
	if data.CreateJob == nil {
		return Job{}, ErrNoResult
	}
	return *data.CreateJob, nil
}

// CreateCiJob starts a run for the task bound to a CI token.
func (c *Client) CreateCiJob(ctx context.Context, ciToken string) (Job, error) {
	query := `mutation { createCiJob { ` + jobFields + ` } }`
	var data struct {
		CreateCiJob *Job `json:"createCiJob"`
	}
	if err := c.do(ctx, query, nil, ciToken, &data); err != nil {
		return Job{}, err
	}
	if data.CreateCiJob == nil {
		return Job{}, ErrNoResult
	}
	return *data.CreateCiJob, nil
}

// GetJob fetches one job, returning ErrNoResult when it does not exist.
func (c *Client) GetJob(ctx context.Context, token, jobID string) (Job, error) {
	query := `query Job($jobId: String!) { job(jobId: $jobId) { ` + jobFields + ` } }`
	var data struct {
		Job *Job `json:"job"`
	}
	if err := c.do(ctx, query, map[string]any{"jobId": jobID}, token, &data); err != nil {
		return Job{}, err
	}
	if data.Job == nil {
		return Job{}, ErrNoResult
	}
	return *data.Job, nil
}

// SocketTick is one bucket of connectedSocketTimeFrame.
type SocketTick struct {
	GT        string `json:"gt"`
	LT        string `json:"lt"`
	Tick      int    `json:"tick"`
	Connected struct {
		Count int `json:"count"`
	} `json:"connectedSocketCount"`
}

// SocketTicks returns the connected socket count per bucket of a job.
func (c *Client) SocketTicks(ctx context.Context, token, jobID string, tickSeconds int) ([]SocketTick, error) {
	const query = `query Sockets($jobId: String!, $tickSeconds: Int!) {
	connectedSocketTimeFrame(jobId: $jobId, tickSeconds: $tickSeconds) {
		gt lt tick connectedSocketCount { count }
	}
}`
	var data struct {
		Ticks []SocketTick `json:"connectedSocketTimeFrame"`
	}
	vars := map[string]any{"jobId": jobID, "tickSeconds": tickSeconds}
	if err := c.do(ctx, query, vars, token, &data); err != nil {
		return nil, err
	}
	return data.Ticks, nil
}

// UsageStats summarises one usage bucket.
type UsageStats struct {
	Samples int      `json:"samples"`
	CPUAvg  *float64 `json:"cpuAvg"`
	CPUMax  *float64 `json:"cpuMax"`
	MemAvg  *float64 `json:"memAvg"`
	MemMax  *float64 `json:"memMax"`
}

// UsageTick is one bucket of usageTicks.
type UsageTick struct {
	GT    string     `json:"gt"`
	LT    string     `json:"lt"`
	Tick  int        `json:"tick"`
	Stats UsageStats `json:"stats"`
}

// UsageTicks returns resource usage stats per bucket of a job.
func (c *Client) UsageTicks(ctx context.Context, token, jobID string, tickSeconds int) ([]UsageTick, error) {
	const query = `query Usages($jobId: String!, $tickSeconds: Int!) {
	usageTicks(jobId: $jobId, tickSeconds: $tickSeconds) {
		gt lt tick stats { samples cpuAvg cpuMax memAvg memMax }
	}
}`
	var data struct {
		Ticks []UsageTick `json:"usageTicks"`
	}
	vars := map[string]any{"jobId": jobID, "tickSeconds": tickSeconds}
	if err := c.do(ctx, query, vars, token, &data); err != nil {
		return nil, err
	}
	return data.Ticks, nil
}
