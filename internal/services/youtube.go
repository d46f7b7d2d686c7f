// YouTube Data API v3 [Provider] implementation
//
// Response types based on https://developers.google.com/youtube/v3/docs/search/list
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/club100/internal/models"
	"github.com/desertthunder/club100/internal/shared"
	"golang.org/x/oauth2"
)

const (
	defaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"
	youtubeWatchURL       = "https://www.youtube.com/watch?v="
	youtubeMaxResults     = "5"
)

// quotaReasons are the error reasons the Data API returns when the project's quota is spent.
var quotaReasons = map[string]bool{
	"quotaExceeded":      true,
	"dailyLimitExceeded": true,
	"rateLimitExceeded":  true,
}

// YouTubeSearchItem is one entry of a search.list response.
type YouTubeSearchItem struct {
	ID struct {
		VideoID string `json:"videoId"`
	} `json:"id"`
	Snippet *YouTubeSnippet `json:"snippet"`
}

// YouTubeSnippet holds the display metadata of a search result.
type YouTubeSnippet struct {
	Title        *string `json:"title"`
	ChannelTitle *string `json:"channelTitle"`
	Thumbnails   struct {
		Default struct {
			URL string `json:"url"`
		} `json:"default"`
	} `json:"thumbnails"`
}

type youtubeSearchResponse struct {
	Items []YouTubeSearchItem `json:"items"`
}

type youtubeErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// YouTubeProvider implements [Provider] against the YouTube Data API.
//
// Requests authenticate with an API key, or with an OAuth2 bearer token when one is configured.
type YouTubeProvider struct {
	baseURL    string
	apiKey     string
	bearer     bool
	httpClient *http.Client
}

// NewYouTubeProvider creates a provider for the Data API.
//
// When accessToken is set, client is wrapped by an [oauth2.Transport] carrying a static token.
func NewYouTubeProvider(baseURL, apiKey, accessToken string, client *http.Client) *YouTubeProvider {
	if baseURL == "" {
		baseURL = defaultYouTubeBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	if accessToken != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)
		oc := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken}))
		oc.Timeout = client.Timeout
		client = oc
	}

	return &YouTubeProvider{baseURL: baseURL, apiKey: apiKey, bearer: accessToken != "", httpClient: client}
}

// NewYouTubeProviderFromConfig builds a provider from the [shared.Config] credentials section.
func NewYouTubeProviderFromConfig(cfg *shared.Config, client *http.Client) *YouTubeProvider {
	yt := cfg.Credentials.YouTube
	return NewYouTubeProvider(yt.BaseURL, yt.APIKey, yt.AccessToken, client)
}

// Name returns the provider name.
func (y *YouTubeProvider) Name() string {
	return "youtube"
}

// Available reports whether a credential is configured.
func (y *YouTubeProvider) Available() bool {
	return y.apiKey != "" || y.bearer
}

// Search calls search.list restricted to videos and returns up to five songs.
//
// Quota exhaustion is reported as [shared.ErrProviderQuotaExceeded]; other failures as [shared.ErrProviderRequestFailed].
func (y *YouTubeProvider) Search(ctx context.Context, query string) ([]models.Song, error) {
	if !y.Available() {
		return nil, fmt.Errorf("%w: youtube: %w", shared.ErrProviderUnavailable, shared.ErrMissingCredentials)
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("maxResults", youtubeMaxResults)
	params.Set("q", query)
	if y.apiKey != "" {
		params.Set("key", y.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrProviderRequestFailed, err)
	}

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrProviderRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyYouTubeError(resp)
	}

	var result youtubeSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", shared.ErrProviderRequestFailed, err)
	}

	decoded := make([]Decoded, len(result.Items))
	for i, item := range result.Items {
		decoded[i] = DecodeYouTubeItem(item)
	}
	return collect(decoded), nil
}

// DecodeYouTubeItem validates a search item; it needs a video id, a title and a channel title.
func DecodeYouTubeItem(item YouTubeSearchItem) Decoded {
	if item.ID.VideoID == "" || item.Snippet == nil || item.Snippet.Title == nil || item.Snippet.ChannelTitle == nil {
		return Decoded{}
	}

	return Decoded{
		Song: models.Song{
			URL:       youtubeWatchURL + item.ID.VideoID,
			Title:     *item.Snippet.Title,
			Artist:    *item.Snippet.ChannelTitle,
			Thumbnail: item.Snippet.Thumbnails.Default.URL,
		},
		Valid: true,
	}
}

func classifyYouTubeError(resp *http.Response) error {
	var errResp youtubeErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
		if len(errResp.Error.Errors) > 0 && quotaReasons[errResp.Error.Errors[0].Reason] {
			return fmt.Errorf("%w (status %d): %s", shared.ErrProviderQuotaExceeded, resp.StatusCode, errResp.Error.Errors[0].Reason)
		}
		if errResp.Error.Message != "" {
			return fmt.Errorf("%w: youtube API error (status %d): %s", shared.ErrProviderRequestFailed, resp.StatusCode, errResp.Error.Message)
		}
	}
	return fmt.Errorf("%w: youtube API error: status %d", shared.ErrProviderRequestFailed, resp.StatusCode)
}
