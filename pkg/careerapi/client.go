package careerapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pathway-finder/webclient/pkg/common/httpclient"
	"github.com/pathway-finder/webclient/pkg/common/logger"
)

// Endpoint paths of the career API. These are a fixed contract; the service
// is expected to expose exactly these routes.
const (
	PathPredict       = "/predict"
	PathUpload        = "/upload"
	PathRetrain       = "/api/retrain"
	PathVisualization = "/visualizations/"

	// UploadField is the multipart field carrying the dataset file.
	UploadField = "file"
)

type requestIDKey struct{}

// WithRequestID attaches a correlation id that is forwarded as X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.New().String()
}

// Body encodes a request payload.
type Body interface {
	Encode() (io.Reader, string, error)
}

// JSONBody sends Value as application/json.
type JSONBody struct {
	Value interface{}
}

func (b JSONBody) Encode() (io.Reader, string, error) {
	payload, err := json.Marshal(b.Value)
	if err != nil {
		return nil, "", err
	}
	return bytes.NewReader(payload), "application/json", nil
}

// MultipartFile sends Content as a single file part named Field.
type MultipartFile struct {
	Field    string
	FileName string
	Content  io.Reader
}

func (b MultipartFile) Encode() (io.Reader, string, error) {
	buf := new(bytes.Buffer)
	writer := multipart.NewWriter(buf)

	part, err := writer.CreateFormFile(b.Field, b.FileName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, b.Content); err != nil {
		return nil, "", fmt.Errorf("failed to copy file content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return buf, writer.FormDataContentType(), nil
}

// Client calls the career recommendation service.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for baseURL. An empty baseURL is accepted and produces
// a client whose calls all fail with ErrNotConfigured.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		httpClient = httpclient.New(0)
	}
	c := &Client{http: httpClient}

	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return c, nil
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid career API base URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid career API base URL %q: scheme and host required", baseURL)
	}
	c.baseURL = strings.TrimRight(parsed.String(), "/")
	return c, nil
}

// Configured reports whether a base URL was supplied.
func (c *Client) Configured() bool {
	return c.baseURL != ""
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Predict(ctx context.Context, req PredictionRequest) (PredictionResult, error) {
	var out PredictionResult
	err := c.Do(ctx, "predict", http.MethodPost, PathPredict, JSONBody{Value: req}, &out)
	return out, err
}

// Upload sends a dataset file. The response body is not inspected.
func (c *Client) Upload(ctx context.Context, fileName string, content io.Reader) error {
	body := MultipartFile{Field: UploadField, FileName: fileName, Content: content}
	return c.Do(ctx, "upload", http.MethodPost, PathUpload, body, nil)
}

func (c *Client) Retrain(ctx context.Context, fileName string) (Metrics, error) {
	var out Metrics
	err := c.Do(ctx, "retrain", http.MethodPost, PathRetrain, JSONBody{Value: RetrainRequest{FileName: fileName}}, &out)
	return out, err
}

func (c *Client) Visualization(ctx context.Context, parameter string) (Charts, error) {
	var out Charts
	err := c.Do(ctx, "visualization", http.MethodGet, PathVisualization+url.PathEscape(parameter), nil, &out)
	return out, err
}

// Do performs one request against the career API. When out is non-nil the
// response body is decoded into it as JSON.
func (c *Client) Do(ctx context.Context, op, method, path string, body Body, out interface{}) error {
	if !c.Configured() {
		return &Error{Op: op, Kind: KindNotConfigured, Err: ErrNotConfigured}
	}

	var reader io.Reader
	contentType := ""
	if body != nil {
		var err error
		reader, contentType, err = body.Encode()
		if err != nil {
			return &Error{Op: op, Kind: KindEncode, Err: fmt.Errorf("encoding request: %w", err)}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Op: op, Kind: KindEncode, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	corrID := requestIDFrom(ctx)
	req.Header.Set("X-Request-ID", corrID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Log.WithError(err).WithFields(map[string]interface{}{
			"op":         op,
			"request_id": corrID,
			"timeout":    httpclient.IsTimeout(err),
		}).Error("career API request failed")
		return &Error{Op: op, Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	logger.Log.WithFields(map[string]interface{}{
		"op":         op,
		"url":        req.URL.String(),
		"status":     resp.StatusCode,
		"request_id": corrID,
		"duration":   time.Since(start).Milliseconds(),
	}).Info("career API request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return &Error{Op: op, Kind: KindStatus, StatusCode: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Op: op, Kind: KindDecode, StatusCode: resp.StatusCode, Err: err}
	}
	if v, ok := out.(validator); ok {
		if err := v.validate(); err != nil {
			return &Error{Op: op, Kind: KindDecode, StatusCode: resp.StatusCode, Err: err}
		}
	}
	return nil
}
