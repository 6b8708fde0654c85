// Package client is a typed HTTP client for the resume analyzer API, used by
// the CLI and by other Go programs that want analyses without speaking
// multipart themselves.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/resume-analyzer/internal/models"
)

// DefaultTimeout bounds one whole analyze call on the client side. The server
// itself does not time requests out; the model call dominates, so the default
// is generous.
const DefaultTimeout = 60 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *zap.Logger
}

func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// APIError is a non-2xx response from the server, carrying the detail message
// from the error body.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Detail)
}

// Analyze uploads the resume file together with the job description and
// returns the parsed analysis. Server-side rejections come back as *APIError.
func (c *Client) Analyze(ctx context.Context, resumePath, jobDescription string) (*models.AnalysisResult, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return nil, errors.New("job description must not be empty")
	}

	file, err := os.Open(resumePath)
	if err != nil {
		return nil, fmt.Errorf("opening resume file: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("resumeFile", filepath.Base(resumePath))
	if err != nil {
		return nil, fmt.Errorf("building multipart form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("reading resume file: %w", err)
	}
	if err := writer.WriteField("jobDescription", jobDescription); err != nil {
		return nil, fmt.Errorf("building multipart form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("building multipart form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/resume/analyze", &body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	c.log.Debug("sending analyze request",
		zap.String("url", req.URL.String()),
		zap.String("file", filepath.Base(resumePath)),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling analyze endpoint: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp.StatusCode, payload)
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decoding analysis: %w", err)
	}
	result.Raw = json.RawMessage(payload)

	return &result, nil
}

// Health fetches the service health document.
func (c *Client) Health(ctx context.Context) (*models.HealthStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/resume/health", nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling health endpoint: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp.StatusCode, payload)
	}

	var health models.HealthStatus
	if err := json.Unmarshal(payload, &health); err != nil {
		return nil, fmt.Errorf("decoding health: %w", err)
	}

	return &health, nil
}

func decodeAPIError(status int, payload []byte) error {
	apiErr := &APIError{StatusCode: status}

	var body models.ErrorResponse
	if err := json.Unmarshal(payload, &body); err == nil && body.Detail != "" {
		apiErr.Detail = body.Detail
	} else {
		apiErr.Detail = strings.TrimSpace(string(payload))
	}

	return apiErr
}

// IsTimeout reports whether err is a client-side timeout rather than a server
// response.
func IsTimeout(err error) bool {
	var urlErr *url.Error
	return errors.As(err, &urlErr) && urlErr.Timeout()
}

// IsConnectionRefused reports whether err means nothing accepted the
// connection at all, as opposed to the server answering with an error.
func IsConnectionRefused(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}
