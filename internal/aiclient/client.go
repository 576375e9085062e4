// Package aiclient is a minimal wrapper around the AI backend's HTTP API.
// It is intentionally light—just the endpoints our services require:
// repository processing, auto-fix jobs, and the thinking SSE stream.
package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the AI backend service.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
}

// NewClient returns a ready-to-use AI backend client.
func NewClient(baseURL, token string) *Client {
	return &Client{
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
		token:   token,
	}
}

// ProcessRequest asks the backend to clone, chunk, embed and summarise a
// repository.
type ProcessRequest struct {
	Repo   string `json:"repo"`
	Branch string `json:"branch"`
}

// ProcessResponse acknowledges an enqueued processing job.
type ProcessResponse struct {
	JobID string `json:"job_id"`
}

// EnqueueProcessing submits a connected repository for embedding.
func (c *Client) EnqueueProcessing(ctx context.Context, req ProcessRequest) (ProcessResponse, error) {
	var resp ProcessResponse
	err := c.post(ctx, "/v1/repos/process", req, &resp)
	return resp, err
}

// FixRequest submits a GitHub issue for automated fixing.
type FixRequest struct {
	Repo       string `json:"repo"`
	IssueNum   int    `json:"issue_number"`
	IssueTitle string `json:"issue_title"`
	IssueBody  string `json:"issue_body"`
}

// FixJob is the backend's view of an auto-fix job.
type FixJob struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	Patch       string `json:"patch,omitempty"`
	Explanation string `json:"explanation,omitempty"`
	Error       string `json:"error,omitempty"`
}

// SubmitFix starts an auto-fix job at the backend.
func (c *Client) SubmitFix(ctx context.Context, req FixRequest) (FixJob, error) {
	var job FixJob
	err := c.post(ctx, "/v1/fixes", req, &job)
	return job, err
}

// GetFixJob fetches the current state of an auto-fix job.
func (c *Client) GetFixJob(ctx context.Context, id string) (FixJob, error) {
	var job FixJob
	err := c.get(ctx, "/v1/fixes/"+id, &job)
	return job, err
}

// ---- plumbing --------------------------------------------------------------

func (c *Client) post(ctx context.Context, path string, body, v interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.addHeaders(req)

	return c.do(req, v)
}

func (c *Client) get(ctx context.Context, path string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	c.addHeaders(req)

	return c.do(req, v)
}

// addHeaders sets authentication and Accept headers.
func (c *Client) addHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("User-Agent", "gittldr-api")
}

// do executes the HTTP request and decodes JSON into v.
func (c *Client) do(req *http.Request, v interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("ai backend: unexpected status %s", resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}
