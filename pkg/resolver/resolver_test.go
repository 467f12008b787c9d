package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipe3/ingest/internal/models"
)

type fakeScraper struct {
	calls  int
	result string
	err    error
}

func (f *fakeScraper) Scrape(ctx context.Context, url string) (string, error) {
	f.calls++
	return f.result, f.err
}

type fakeOCR struct {
	calls  int
	result string
	err    error
}

func (f *fakeOCR) ImageToText(ctx context.Context, imageURL string) (string, error) {
	f.calls++
	return f.result, f.err
}

func TestResolveDispatch(t *testing.T) {
	tests := []struct {
		contentType  models.ContentType
		expected     string
		scraperCalls int
		ocrCalls     int
	}{
		{models.ContentTypeURL, "scraped digest", 1, 0},
		{models.ContentTypeImage, "ocr text", 0, 1},
		{models.ContentTypeBulk, "raw recipe text", 0, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.contentType), func(t *testing.T) {
			scraper := &fakeScraper{result: "scraped digest"}
			ocr := &fakeOCR{result: "ocr text"}
			r := New(scraper, ocr)

			content, err := r.Resolve(context.Background(), models.IngestionRequest{
				SourceRef:   "raw recipe text",
				ContentType: tt.contentType,
			})
			require.NoError(t, err)

			assert.Equal(t, tt.expected, content)
			assert.Equal(t, tt.scraperCalls, scraper.calls, "scraper calls")
			assert.Equal(t, tt.ocrCalls, ocr.calls, "ocr calls")
		})
	}
}

func TestResolveBulkPassthroughIsVerbatim(t *testing.T) {
	r := New(&fakeScraper{}, &fakeOCR{})

	text := "Grandma's stew\n1 onion; chopped\nSimmer all day."
	content, err := r.Resolve(context.Background(), models.IngestionRequest{
		SourceRef:   text,
		ContentType: models.ContentTypeBulk,
	})
	require.NoError(t, err)
	assert.Equal(t, text, content)
}

func TestResolveSurfacesSubActionFailure(t *testing.T) {
	scraper := &fakeScraper{err: errors.New("received status code 404")}
	r := New(scraper, &fakeOCR{})

	_, err := r.Resolve(context.Background(), models.IngestionRequest{
		SourceRef:   "https://example.com/gone",
		ContentType: models.ContentTypeURL,
	})
	assert.ErrorContains(t, err, "404")
}

func TestResolveUnknownContentType(t *testing.T) {
	r := New(&fakeScraper{}, &fakeOCR{})

	_, err := r.Resolve(context.Background(), models.IngestionRequest{
		SourceRef:   "whatever",
		ContentType: "VIDEO",
	})
	assert.ErrorContains(t, err, "unknown content type")
}
