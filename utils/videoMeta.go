package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"coursehub/config"

	"github.com/go-resty/resty/v2"
)

// VideoMeta is the subset of an oEmbed response stored on a lesson.
type VideoMeta struct {
	Title        string `json:"title"`
	ThumbnailURL string `json:"thumbnail_url"`
	Provider     string `json:"provider_name"`
	Error        string `json:"error"`
}

var oembedClient = resty.New().SetTimeout(5 * time.Second).SetRetryCount(1)

// IsValidVideoURL accepts absolute http(s) URLs with a host.
func IsValidVideoURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// FetchVideoMeta asks the configured oEmbed endpoint for the title and
// thumbnail of videoURL.
func FetchVideoMeta(ctx context.Context, videoURL string) (*VideoMeta, error) {
	endpoint := config.Current().OEmbedEndpoint
	if endpoint == "" {
		return nil, fmt.Errorf("oembed endpoint not configured")
	}

	resp, err := oembedClient.R().
		SetContext(ctx).
		SetQueryParam("url", videoURL).
		SetHeader("Accept", "application/json").
		Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("oembed request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("oembed status %d", resp.StatusCode())
	}

	var meta VideoMeta
	if err := json.Unmarshal(resp.Body(), &meta); err != nil {
		return nil, fmt.Errorf("oembed decode: %w", err)
	}
	if meta.Error != "" {
		return nil, fmt.Errorf("oembed: %s", meta.Error)
	}
	return &meta, nil
}
