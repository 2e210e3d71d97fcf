// Package blob hands fragment images to the hosted media service and returns
// durable URLs. The service is an external collaborator; upload failures are
// fatal to the capture request that carried the image.
package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Uploader stores a binary blob and returns its hosted URL.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

// HTTPUploader posts unsigned multipart uploads to the media service.
type HTTPUploader struct {
	client *resty.Client
	preset string
}

// NewHTTPUploader creates an uploader against the media service upload URL,
// using the given unsigned upload preset.
func NewHTTPUploader(uploadURL, preset string) *HTTPUploader {
	c := resty.New().
		SetBaseURL(uploadURL).
		SetTimeout(30 * time.Second)
	return &HTTPUploader{client: c, preset: preset}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
	URL       string `json:"url"`
}

// Upload sends the blob and returns the hosted URL the service assigned.
func (u *HTTPUploader) Upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty upload")
	}

	resp, err := u.client.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(data)).
		SetFormData(map[string]string{"upload_preset": u.preset}).
		Post("")
	if err != nil {
		return "", fmt.Errorf("media upload: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("media upload status %d: %s", resp.StatusCode(), resp.String())
	}

	var ur uploadResponse
	if err := json.Unmarshal(resp.Body(), &ur); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if ur.SecureURL != "" {
		return ur.SecureURL, nil
	}
	if ur.URL != "" {
		return ur.URL, nil
	}
	return "", fmt.Errorf("media upload returned no url")
}
