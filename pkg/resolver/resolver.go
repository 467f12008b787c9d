package resolver

import (
	"context"
	"fmt"

	"github.com/recipe3/ingest/internal/models"
)

// WebScraper turns a page URL into a plain-text digest.
type WebScraper interface {
	Scrape(ctx context.Context, url string) (string, error)
}

// OCRClient turns an image URL into its embedded text.
type OCRClient interface {
	ImageToText(ctx context.Context, imageURL string) (string, error)
}

// Resolver dispatches an ingestion request to the sub-action matching its
// content type. It adds no retries; redelivery belongs to the queue.
type Resolver struct {
	scraper WebScraper
	ocr     OCRClient
}

func New(scraper WebScraper, ocr OCRClient) *Resolver {
	return &Resolver{
		scraper: scraper,
		ocr:     ocr,
	}
}

// Resolve produces the raw content for one request. BULK requests carry
// their text in the source ref itself and pass through verbatim.
func (r *Resolver) Resolve(ctx context.Context, req models.IngestionRequest) (string, error) {
	switch req.ContentType {
	case models.ContentTypeURL:
		return r.scraper.Scrape(ctx, req.SourceRef)
	case models.ContentTypeImage:
		return r.ocr.ImageToText(ctx, req.SourceRef)
	case models.ContentTypeBulk:
		return req.SourceRef, nil
	default:
		return "", fmt.Errorf("unknown content type: %q", req.ContentType)
	}
}
