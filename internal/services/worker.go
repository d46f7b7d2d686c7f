// Audio worker client and search [Provider]
//
// The worker is a self-hosted HTTP service that renders timelines, serves the effect catalog
// and runs a scraper-backed video search on POST /ytsearch.
package services

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

	"github.com/desertthunder/club100/internal/models"
	"github.com/desertthunder/club100/internal/shared"
)

const defaultWorkerURL string = "http://localhost:5001"

// WorkerSong is one /ytsearch result as the worker sends it.
type WorkerSong struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Thumbnail string `json:"thumbnail"`
}

// GenerateRequest is the body of POST /generate.
type GenerateRequest struct {
	Timeline []models.TrackItem `json:"timeline"`
	Language string             `json:"language"`
}

// GenerateResponse is the worker's reply to a render submission.
type GenerateResponse struct {
	JobID  string `json:"jobId"`
	Output string `json:"output"`
}

// WorkerJob is one entry of GET /jobs.
type WorkerJob struct {
	ID         string `json:"id"`
	CreatedAt  string `json:"created_at"`
	Status     string `json:"status"`
	OutputPath string `json:"output_path"`
}

// Created parses the job's ISO timestamp, returning the zero time when it cannot be parsed.
func (j WorkerJob) Created() time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, j.CreatedAt); err == nil {
			return t
		}
	}
	return time.Time{}
}

// WorkerClient talks to the audio worker over JSON.
type WorkerClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewWorkerClient creates a client for the worker at baseURL.
func NewWorkerClient(baseURL string, client *http.Client) *WorkerClient {
	if baseURL == "" {
		baseURL = defaultWorkerURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &WorkerClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: client}
}

// BaseURL returns the worker root URL without a trailing slash.
func (w *WorkerClient) BaseURL() string {
	return w.baseURL
}

func (w *WorkerClient) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, w.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("%w: worker error (status %d): %s", shared.ErrAPIRequest, resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("%w: worker error: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Search calls POST /ytsearch and returns the raw worker results.
func (w *WorkerClient) Search(ctx context.Context, query string) ([]WorkerSong, error) {
	var songs []WorkerSong
	if err := w.doRequest(ctx, http.MethodPost, "/ytsearch", map[string]string{"query": query}, &songs); err != nil {
		return nil, err
	}
	return songs, nil
}

// Effects calls GET /effects.
func (w *WorkerClient) Effects(ctx context.Context) ([]models.Effect, error) {
	var effects []models.Effect
	if err := w.doRequest(ctx, http.MethodGet, "/effects", nil, &effects); err != nil {
		return nil, err
	}
	return effects, nil
}

// EffectDataURL calls GET /effects/{id}/data and returns the inline data URL of the effect audio.
func (w *WorkerClient) EffectDataURL(ctx context.Context, effectID string) (string, error) {
	var out struct {
		DataURL string `json:"dataUrl"`
	}
	endpoint := fmt.Sprintf("/effects/%s/data", url.PathEscape(effectID))
	if err := w.doRequest(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return "", err
	}
	return out.DataURL, nil
}

// Generate submits a timeline for rendering. The worker renders synchronously.
func (w *WorkerClient) Generate(ctx context.Context, items []models.TrackItem, language string) (*GenerateResponse, error) {
	if items == nil {
		items = []models.TrackItem{}
	}

	var out GenerateResponse
	if err := w.doRequest(ctx, http.MethodPost, "/generate", GenerateRequest{Timeline: items, Language: language}, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRenderSubmissionFailed, err)
	}
	if out.JobID == "" {
		return nil, fmt.Errorf("%w: worker returned no job id", shared.ErrRenderSubmissionFailed)
	}
	return &out, nil
}

// DownloadURL returns the download reference for a rendered job.
func (w *WorkerClient) DownloadURL(jobID string) string {
	return w.baseURL + "/download/" + url.PathEscape(jobID)
}

// Jobs calls GET /jobs, newest first.
func (w *WorkerClient) Jobs(ctx context.Context) ([]WorkerJob, error) {
	var jobs []WorkerJob
	if err := w.doRequest(ctx, http.MethodGet, "/jobs", nil, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// ClearCache calls POST /cache/clear, dropping the worker's downloaded audio.
func (w *WorkerClient) ClearCache(ctx context.Context) error {
	return w.doRequest(ctx, http.MethodPost, "/cache/clear", nil, nil)
}

// WorkerProvider implements [Provider] on top of the worker's /ytsearch endpoint.
type WorkerProvider struct {
	client *WorkerClient
}

// NewWorkerProvider wraps client as a search provider.
func NewWorkerProvider(client *WorkerClient) *WorkerProvider {
	return &WorkerProvider{client: client}
}

// Name returns the provider name.
func (p *WorkerProvider) Name() string {
	return "worker"
}

// Available reports whether a worker client is configured.
func (p *WorkerProvider) Available() bool {
	return p.client != nil
}

// Search calls the worker and validates each result. Any worker failure is [shared.ErrProviderRequestFailed].
func (p *WorkerProvider) Search(ctx context.Context, query string) ([]models.Song, error) {
	if p.client == nil {
		return nil, fmt.Errorf("%w: worker not configured", shared.ErrProviderUnavailable)
	}

	raw, err := p.client.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrProviderRequestFailed, err)
	}

	decoded := make([]Decoded, len(raw))
	for i, s := range raw {
		decoded[i] = DecodeWorkerSong(s)
	}
	return collect(decoded), nil
}

// DecodeWorkerSong validates a worker result; it needs a URL.
func DecodeWorkerSong(s WorkerSong) Decoded {
	if strings.TrimSpace(s.URL) == "" {
		return Decoded{}
	}
	return Decoded{
		Song:  models.Song{URL: s.URL, Title: s.Title, Artist: s.Artist, Thumbnail: s.Thumbnail},
		Valid: true,
	}
}
