package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOCRServer(t *testing.T, contents string) (*httptest.Server, *string) {
	t.Helper()
	var lastURL string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ocrRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		lastURL = req.URL
		json.NewEncoder(w).Encode(ocrResponse{Contents: contents})
	}))
	return server, &lastURL
}

func TestImageToText(t *testing.T) {
	server, lastURL := newOCRServer(t, "2 cups flour\n1 cup sugar")
	defer server.Close()

	c := NewWithConfig(ClientConfig{Endpoint: server.URL})

	text, err := c.ImageToText(context.Background(), "https://images.example/IMG_2314.jpg")
	require.NoError(t, err)
	assert.Equal(t, "2 cups flour\n1 cup sugar", text)
	assert.Equal(t, "https://images.example/IMG_2314.jpg", *lastURL)
}

func TestImageToTextServiceDown(t *testing.T) {
	c := NewWithConfig(ClientConfig{Endpoint: "http://127.0.0.1:1/api/image-to-text"})

	_, err := c.ImageToText(context.Background(), "https://images.example/IMG_2314.jpg")
	var ocrErr *OCRError
	assert.ErrorAs(t, err, &ocrErr)
}

func TestImageToTextBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewWithConfig(ClientConfig{Endpoint: server.URL})

	_, err := c.ImageToText(context.Background(), "https://images.example/IMG_2314.jpg")
	assert.ErrorContains(t, err, "status 502")
}

func TestIsHEIC(t *testing.T) {
	assert.True(t, isHEIC("https://images.example/IMG_1476.heic"))
	assert.True(t, isHEIC("https://images.example/IMG_1476.HEIC"))
	assert.True(t, isHEIC("https://images.example/IMG_1476.heic?versionId=1"))
	assert.False(t, isHEIC("https://images.example/IMG_1476.png"))
	assert.False(t, isHEIC("https://images.example/heic-guide.html"))
}

// conversion API stub: one job create, then polls that finish after a
// couple of "processing" rounds.
func newConvertServer(t *testing.T, pollsUntilDone int32, exportURL string) *httptest.Server {
	t.Helper()
	var polls int32
	mux := http.NewServeMux()

	mux.HandleFunc("/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var job convertJobRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&job))
		assert.Contains(t, job.Tasks, "import-image")
		assert.Contains(t, job.Tasks, "convert-image")
		assert.Contains(t, job.Tasks, "export-image")
		assert.Equal(t, "png", job.Tasks["convert-image"]["output_format"])

		fmt.Fprint(w, `{"data":{"id":"job-1","status":"waiting"}}`)
	})

	mux.HandleFunc("/jobs/job-1", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		if atomic.AddInt32(&polls, 1) < pollsUntilDone {
			fmt.Fprint(w, `{"data":{"id":"job-1","status":"processing"}}`)
			return
		}
		fmt.Fprintf(w, `{"data":{"id":"job-1","status":"finished","tasks":[
			{"name":"convert-image","status":"finished"},
			{"name":"export-image","status":"finished","result":{"files":[{"url":%q}]}}
		]}}`, exportURL)
	})

	return httptest.NewServer(mux)
}

func TestImageToTextHEICConversion(t *testing.T) {
	ocrServer, lastURL := newOCRServer(t, "handwritten recipe")
	defer ocrServer.Close()

	convertServer := newConvertServer(t, 3, "https://storage.example/converted.png")
	defer convertServer.Close()

	c := NewWithConfig(ClientConfig{
		Endpoint: ocrServer.URL,
		Convert: ConvertConfig{
			Endpoint:     convertServer.URL,
			APIKey:       "test-key",
			PollAttempts: 10,
			PollInterval: time.Millisecond,
		},
	})

	text, err := c.ImageToText(context.Background(), "https://images.example/IMG_1476.heic")
	require.NoError(t, err)
	assert.Equal(t, "handwritten recipe", text)

	// The OCR service must see the converted PNG, not the HEIC source.
	assert.Equal(t, "https://storage.example/converted.png", *lastURL)
}

func TestHEICConversionTimesOut(t *testing.T) {
	convertServer := newConvertServer(t, 100, "https://storage.example/converted.png")
	defer convertServer.Close()

	c := NewWithConfig(ClientConfig{
		Endpoint: "http://127.0.0.1:1/unused",
		Convert: ConvertConfig{
			Endpoint:     convertServer.URL,
			APIKey:       "test-key",
			PollAttempts: 3,
			PollInterval: time.Millisecond,
		},
	})

	_, err := c.ImageToText(context.Background(), "https://images.example/IMG_1476.heic")
	assert.ErrorContains(t, err, "did not finish in time")
}

func TestHEICConversionJobError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"data":{"id":"job-9","status":"waiting"}}`)
	})
	mux.HandleFunc("/jobs/job-9", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"data":{"id":"job-9","status":"error"}}`)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := NewWithConfig(ClientConfig{
		Endpoint: "http://127.0.0.1:1/unused",
		Convert: ConvertConfig{
			Endpoint:     server.URL,
			APIKey:       "test-key",
			PollAttempts: 3,
			PollInterval: time.Millisecond,
		},
	})

	_, err := c.ImageToText(context.Background(), "https://images.example/IMG_1476.heic")
	assert.ErrorContains(t, err, "job job-9 failed")
}
