// Package integration talks to systems outside the client: the
// status-reporting backend over HTTP.
package integration

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

	"github.com/valter-silva-au/dlog/pkg/models"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// BackendClient calls the status-reporting backend's JSON endpoints.
type BackendClient struct {
	baseURL    string
	healthURL  string
	httpClient *http.Client
}

// NewBackendClient creates a client for the API rooted at baseURL, for
// example http://localhost:8000/api. healthURL may be empty, in which case
// /health on the same host is used. A nil httpClient means a client without
// a timeout: requests always run to completion or transport failure.
func NewBackendClient(baseURL, healthURL string, httpClient *http.Client) *BackendClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	baseURL = strings.TrimRight(baseURL, "/")
	if healthURL == "" {
		healthURL = deriveHealthURL(baseURL)
	}
	return &BackendClient{
		baseURL:    baseURL,
		healthURL:  healthURL,
		httpClient: httpClient,
	}
}

// BaseURL returns the API root the client was built with.
func (c *BackendClient) BaseURL() string { return c.baseURL }

type startFollowupRequest struct {
	UserID string `json:"user_id"`
}

type completeFollowupRequest struct {
	UserID  string   `json:"user_id"`
	Answers []string `json:"answers"`
}

type weeklyReportRequest struct {
	UserID    string `json:"user_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// SubmitWorkUpdate posts a work update to /work-updates.
func (c *BackendClient) SubmitWorkUpdate(ctx context.Context, sub models.WorkUpdateSubmission) (*models.SubmissionResult, error) {
	var out models.SubmissionResult
	detail, err := c.do(ctx, http.MethodPost, "/work-updates", sub, &out)
	if err != nil {
		return nil, err
	}
	if out.Message == "" {
		out.Message = detail
	}
	return &out, nil
}

// StartFollowup posts to /followups/start.
func (c *BackendClient) StartFollowup(ctx context.Context, userID string) (*models.FollowupStart, error) {
	var out models.FollowupStart
	detail, err := c.do(ctx, http.MethodPost, "/followups/start", startFollowupRequest{UserID: userID}, &out)
	if err != nil {
		return nil, err
	}
	if out.Message == "" {
		out.Message = detail
	}
	return &out, nil
}

// CompleteFollowup puts the ordered answers to /followup/{sessionId}/complete.
func (c *BackendClient) CompleteFollowup(ctx context.Context, sessionID, userID string, answers []string) (*models.Ack, error) {
	var out models.Ack
	path := "/followup/" + url.PathEscape(sessionID) + "/complete"
	detail, err := c.do(ctx, http.MethodPut, path, completeFollowupRequest{UserID: userID, Answers: answers}, &out)
	if err != nil {
		return nil, err
	}
	if out.Message == "" {
		out.Message = detail
	}
	return &out, nil
}

// WeeklyReport posts to /reports/weekly.
func (c *BackendClient) WeeklyReport(ctx context.Context, userID string, dates models.DateRange) (*models.WeeklyReportResponse, error) {
	var out models.WeeklyReportResponse
	req := weeklyReportRequest{UserID: userID, StartDate: dates.Start, EndDate: dates.End}
	detail, err := c.do(ctx, http.MethodPost, "/reports/weekly", req, &out)
	if err != nil {
		return nil, err
	}
	if out.Message == "" {
		out.Message = detail
	}
	return &out, nil
}

// do sends body as JSON and decodes the response into out whatever the
// status code, since rejections arrive as JSON too. It returns the FastAPI
// style "detail" field when the body has one. An error means the request
// failed or the response was not JSON.
func (c *BackendClient) do(ctx context.Context, method, path string, body, out any) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling %s %s request: %w", method, path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building %s %s request: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("reading %s %s response: %w", method, path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return "", fmt.Errorf("decoding %s %s response (HTTP %d): %w", method, path, resp.StatusCode, err)
	}

	var fastAPIErr struct {
		Detail json.RawMessage `json:"detail"`
	}
	if resp.StatusCode >= 400 && json.Unmarshal(data, &fastAPIErr) == nil {
		return detailText(fastAPIErr.Detail), nil
	}
	return "", nil
}

// detailText turns a FastAPI "detail" value into display text. Validation
// errors come as a list of objects; only the first message is used.
func detailText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var items []struct {
		Msg string `json:"msg"`
	}
	if json.Unmarshal(raw, &items) == nil && len(items) > 0 {
		return items[0].Msg
	}
	return ""
}

// HealthStatus is the backend's /health answer.
type HealthStatus struct {
	Status       string        `json:"status"`
	Database     string        `json:"database,omitempty"`
	LMStudio     string        `json:"lm_studio,omitempty"`
	Error        string        `json:"error,omitempty"`
	ResponseTime time.Duration `json:"-"`
}

// Healthy reports whether the backend considers itself fully available.
func (h HealthStatus) Healthy() bool { return h.Status == "healthy" }

// Health queries the backend's health endpoint.
func (c *BackendClient) Health(ctx context.Context) (*HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.healthURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building health request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checking backend health: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var hs HealthStatus
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&hs); err != nil {
		return nil, fmt.Errorf("decoding health response (HTTP %d): %w", resp.StatusCode, err)
	}
	hs.ResponseTime = time.Since(start)
	return &hs, nil
}

// deriveHealthURL maps http://host:port/api to http://host:port/health.
func deriveHealthURL(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return strings.TrimSuffix(baseURL, "/api") + "/health"
	}
	u.Path = "/health"
	u.RawQuery = ""
	return u.String()
}
