// Package genai is the client for the external generative collaborator. All
// content generation — structured JSON documents, images, videos, chat — is
// delegated to it; this service only sequences and stores the results.
package genai

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
)

// requestRetries bounds the attempts made for a single API call.
const requestRetries = 3

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	// PollInterval spaces out video operation polls. Overridable in tests.
	PollInterval time.Duration
	// Backoffs spaces out retries of failed requests. Overridable in tests.
	Backoffs []time.Duration
}

// ImageInput is an inline image attached to a request. Data marshals as
// base64, which is the only place base64 text is ever materialized.
type ImageInput struct {
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

type StructuredRequest struct {
	Prompt     string         `json:"prompt"`
	SchemaName string         `json:"schema_name"`
	Schema     map[string]any `json:"schema,omitempty"`
	Images     []ImageInput   `json:"images,omitempty"`
}

type structuredResponse struct {
	Document json.RawMessage `json:"document"`
}

type ImageRequest struct {
	Prompt      string       `json:"prompt"`
	AspectRatio string       `json:"aspect_ratio,omitempty"`
	Count       int          `json:"count,omitempty"`
	Images      []ImageInput `json:"images,omitempty"`
}

type GeneratedImage struct {
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

type imagesResponse struct {
	Images []GeneratedImage `json:"images"`
}

type VideoRequest struct {
	Prompt      string      `json:"prompt"`
	AspectRatio string      `json:"aspect_ratio,omitempty"`
	StartFrame  *ImageInput `json:"start_frame,omitempty"`
	EndFrame    *ImageInput `json:"end_frame,omitempty"`
	// SourceVideo makes the collaborator continue an existing clip instead
	// of generating from scratch.
	SourceVideo *ImageInput `json:"source_video,omitempty"`
}

type startVideoResponse struct {
	OperationID string `json:"operation_id"`
}

// VideoOperation is the polled state of a video generation. Done with a
// non-empty Error means the remote generation failed.
type VideoOperation struct {
	OperationID string `json:"operation_id"`
	Done        bool   `json:"done"`
	Error       string `json:"error,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
	Data        []byte `json:"data,omitempty"`
	DownloadURL string `json:"download_url,omitempty"`
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		PollInterval: 5 * time.Second,
		Backoffs:     []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
	}
}

// GenerateJSON asks the collaborator for a structured document matching the
// named schema. The document is returned verbatim.
func (c *Client) GenerateJSON(ctx context.Context, req StructuredRequest) (json.RawMessage, error) {
	var result structuredResponse
	if err := c.post(ctx, "/generate/structured", req, &result); err != nil {
		return nil, err
	}
	if len(result.Document) == 0 {
		return nil, fmt.Errorf("structured response has no document")
	}
	return result.Document, nil
}

// GenerateImages produces one or more images from a text prompt and optional
// reference images.
func (c *Client) GenerateImages(ctx context.Context, req ImageRequest) ([]GeneratedImage, error) {
	if req.Count <= 0 {
		req.Count = 1
	}
	var result imagesResponse
	if err := c.post(ctx, "/generate/images", req, &result); err != nil {
		return nil, err
	}
	if len(result.Images) == 0 {
		return nil, fmt.Errorf("image response contains no images")
	}
	return result.Images, nil
}

// StartVideo submits a video generation and returns the remote operation id.
func (c *Client) StartVideo(ctx context.Context, req VideoRequest) (string, error) {
	var result startVideoResponse
	if err := c.post(ctx, "/generate/videos", req, &result); err != nil {
		return "", err
	}
	if result.OperationID == "" {
		return "", fmt.Errorf("video response has no operation id")
	}
	return result.OperationID, nil
}

// GetVideoOperation fetches the current state of a video generation.
func (c *Client) GetVideoOperation(ctx context.Context, operationID string) (*VideoOperation, error) {
	var result VideoOperation
	if err := c.get(ctx, "/operations/"+operationID, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// WaitVideo polls the operation at PollInterval until it is done, the remote
// side reports a failure, or ctx is cancelled. When the finished operation
// carries only a download URL, the bytes are fetched before returning.
func (c *Client) WaitVideo(ctx context.Context, operationID string) (*VideoOperation, error) {
	for {
		op, err := c.GetVideoOperation(ctx, operationID)
		if err != nil {
			return nil, err
		}
		if op.Done {
			if op.Error != "" {
				return nil, fmt.Errorf("video generation failed: %s", op.Error)
			}
			if len(op.Data) == 0 && op.DownloadURL != "" {
				data, err := c.DownloadFile(ctx, op.DownloadURL)
				if err != nil {
					return nil, err
				}
				op.Data = data
			}
			if len(op.Data) == 0 {
				return nil, fmt.Errorf("video operation finished without content")
			}
			return op, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.PollInterval):
		}
	}
}

// DownloadFile fetches raw bytes from a collaborator-issued URL.
func (c *Client) DownloadFile(ctx context.Context, downloadURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("failed to download file: status %d, body: %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimSuffix(c.baseURL, "/") + path
	// A fresh request per attempt: the body reader is consumed on each send.
	return c.RetryWithBackoff(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		return c.do(req, out)
	}, requestRetries)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	url := strings.TrimSuffix(c.baseURL, "/") + path
	return c.RetryWithBackoff(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("x-api-key", c.apiKey)

		return c.do(req, out)
	}, requestRetries)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &statusError{
			status: resp.StatusCode,
			msg:    fmt.Sprintf("request to %s failed: status %d, body: %s", req.URL.Path, resp.StatusCode, string(body)),
		}
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
		}
	}
	return nil
}

// statusError carries the HTTP status of a failed request so the retry loop
// can tell transient failures from permanent ones.
type statusError struct {
	status int
	msg    string
}

func (e *statusError) Error() string { return e.msg }

func (e *statusError) transient() bool {
	return e.status == http.StatusTooManyRequests || e.status >= http.StatusInternalServerError
}

// RetryWithBackoff executes a function with exponential backoff retry logic.
// Context errors and non-transient API statuses are returned immediately;
// everything else is retried up to maxRetries attempts.
func (c *Client) RetryWithBackoff(fn func() error, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		var se *statusError
		if errors.As(err, &se) && !se.transient() {
			return err
		}

		lastErr = err
		if i < maxRetries-1 && i < len(c.Backoffs) {
			time.Sleep(c.Backoffs[i])
		}
	}

	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}
