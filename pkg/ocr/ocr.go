package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// OCRError is any transport or decode failure talking to the OCR service or
// the image conversion API.
type OCRError struct {
	Cause string
}

func (e *OCRError) Error() string {
	return fmt.Sprintf("ocr: %s", e.Cause)
}

type ClientConfig struct {
	// Endpoint is the image-to-text microservice URL.
	Endpoint string
	// Convert configures the HEIC-to-PNG conversion job API. Leave the
	// endpoint empty to skip conversion and send HEIC URLs through as-is.
	Convert ConvertConfig
	Timeout time.Duration
}

// Client proxies image URLs through an external OCR microservice. HEIC
// images are converted to PNG first; the OCR service's engine cannot read
// HEIC.
type Client struct {
	config ClientConfig
	http   *http.Client
}

func NewWithConfig(config ClientConfig) *Client {
	if config.Timeout == 0 {
		config.Timeout = 60 * time.Second
	}
	if config.Convert.PollAttempts == 0 {
		config.Convert.PollAttempts = 20
	}
	if config.Convert.PollInterval == 0 {
		config.Convert.PollInterval = 3 * time.Second
	}

	return &Client{
		config: config,
		http: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

type ocrRequest struct {
	URL string `json:"url"`
}

type ocrResponse struct {
	Contents string `json:"contents"`
}

// ImageToText extracts the text of the image at imageURL.
func (c *Client) ImageToText(ctx context.Context, imageURL string) (string, error) {
	if isHEIC(imageURL) && c.config.Convert.Endpoint != "" {
		converted, err := c.convertToPNG(ctx, imageURL)
		if err != nil {
			return "", err
		}
		imageURL = converted
	}

	body, err := json.Marshal(ocrRequest{URL: imageURL})
	if err != nil {
		return "", &OCRError{Cause: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &OCRError{Cause: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &OCRError{Cause: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &OCRError{Cause: fmt.Sprintf("image-to-text returned status %d", resp.StatusCode)}
	}

	var out ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &OCRError{Cause: fmt.Sprintf("decoding image-to-text response: %v", err)}
	}

	return out.Contents, nil
}

// isHEIC matches on the URL path extension, ignoring query parameters.
func isHEIC(imageURL string) bool {
	u, err := url.Parse(imageURL)
	if err != nil {
		return strings.HasSuffix(strings.ToLower(imageURL), ".heic")
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".heic")
}
