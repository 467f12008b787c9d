package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type ConvertConfig struct {
	Endpoint     string // conversion API base, e.g. https://api.cloudconvert.com/v2
	APIKey       string
	PollAttempts int
	PollInterval time.Duration
}

// The conversion API runs a three-task job: import the source URL, convert
// it to PNG, export the result to a downloadable URL.
type convertJobRequest struct {
	Tasks map[string]map[string]any `json:"tasks"`
	Tag   string                    `json:"tag"`
}

type convertJob struct {
	Data struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Tasks  []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
			Result struct {
				Files []struct {
					URL string `json:"url"`
				} `json:"files"`
			} `json:"result"`
		} `json:"tasks"`
	} `json:"data"`
}

// convertToPNG submits a conversion job for imageURL and polls it until the
// export task publishes the converted file's URL.
func (c *Client) convertToPNG(ctx context.Context, imageURL string) (string, error) {
	job := convertJobRequest{
		Tasks: map[string]map[string]any{
			"import-image": {
				"operation": "import/url",
				"url":       imageURL,
			},
			"convert-image": {
				"operation":     "convert",
				"input":         "import-image",
				"output_format": "png",
				"engine":        "imagemagick",
			},
			"export-image": {
				"operation": "export/url",
				"input":     "convert-image",
			},
		},
		Tag: "heic-to-png",
	}

	body, err := json.Marshal(job)
	if err != nil {
		return "", &OCRError{Cause: err.Error()}
	}

	created, err := c.convertCall(ctx, http.MethodPost, c.config.Convert.Endpoint+"/jobs", body)
	if err != nil {
		return "", err
	}
	if created.Data.ID == "" {
		return "", &OCRError{Cause: "conversion job created without an id"}
	}

	return c.awaitExport(ctx, created.Data.ID)
}

// awaitExport polls the job until it finishes or the attempts run out. A
// job that reports an error status fails immediately.
func (c *Client) awaitExport(ctx context.Context, jobID string) (string, error) {
	jobURL := fmt.Sprintf("%s/jobs/%s", c.config.Convert.Endpoint, jobID)

	for attempt := 0; attempt < c.config.Convert.PollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", &OCRError{Cause: ctx.Err().Error()}
			case <-time.After(c.config.Convert.PollInterval):
			}
		}

		job, err := c.convertCall(ctx, http.MethodGet, jobURL, nil)
		if err != nil {
			return "", err
		}

		switch job.Data.Status {
		case "error":
			return "", &OCRError{Cause: fmt.Sprintf("conversion job %s failed", jobID)}
		case "finished":
			for _, task := range job.Data.Tasks {
				if task.Name != "export-image" || task.Status != "finished" {
					continue
				}
				if len(task.Result.Files) > 0 && task.Result.Files[0].URL != "" {
					return task.Result.Files[0].URL, nil
				}
			}
			return "", &OCRError{Cause: fmt.Sprintf("conversion job %s finished without an exported file", jobID)}
		}
	}

	return "", &OCRError{Cause: fmt.Sprintf("conversion job %s did not finish in time", jobID)}
}

func (c *Client) convertCall(ctx context.Context, method, url string, body []byte) (*convertJob, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, &OCRError{Cause: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+c.config.Convert.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &OCRError{Cause: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &OCRError{Cause: fmt.Sprintf("conversion API returned status %d", resp.StatusCode)}
	}

	var job convertJob
	if err := json.NewDecoder(resp.Body).Decode(&job); err != nil {
		return nil, &OCRError{Cause: fmt.Sprintf("decoding conversion response: %v", err)}
	}
	return &job, nil
}
