package models

import "fmt"

// ContentType is the kind of source an ingestion request points at.
type ContentType string

const (
	ContentTypeURL   ContentType = "URL"
	ContentTypeImage ContentType = "IMAGE"
	ContentTypeBulk  ContentType = "BULK"
)

// IngestionRequest is the inbound queue message. SourceRef carries the page
// URL for URL requests, the image URL for IMAGE requests, and the raw recipe
// text itself for BULK requests.
type IngestionRequest struct {
	SourceRef    string      `json:"url"`
	ContentType  ContentType `json:"content_type"`
	Credit       string      `json:"credit,omitempty"`
	ExplicitID   string      `json:"uuid,omitempty"`
	ReplyChannel string      `json:"sqs_url"`
}

// Identity returns the key the finished recipe is persisted under: the
// source URL for URL requests, otherwise the explicit uuid, falling back to
// credit. IMAGE and BULK requests without either are rejected here, before
// the pipeline touches any external service.
func (r IngestionRequest) Identity() (string, error) {
	if r.ContentType == ContentTypeURL {
		return r.SourceRef, nil
	}
	if r.ExplicitID != "" {
		return r.ExplicitID, nil
	}
	if r.Credit != "" {
		return r.Credit, nil
	}
	return "", fmt.Errorf("%s request has neither uuid nor credit", r.ContentType)
}

// StructuredRecipe is the canonical shape the LLM extraction produces.
type StructuredRecipe struct {
	Name         string   `json:"name"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	Notes        string   `json:"notes"`
	Summary      string   `json:"summary"`
}

// PersistedRecipe is the flat record written to the store, keyed by UUID.
type PersistedRecipe struct {
	UUID   string
	Credit string
	Image  string
	StructuredRecipe
}

// PipelineOutcome is the reply delivered to a request's reply channel.
// Exactly one outcome is sent per ingestion request.
type PipelineOutcome struct {
	StatusCode int    `json:"status_code"`
	Body       string `json:"body"`
}

// Success reports whether the outcome carries a 2xx status.
func (o PipelineOutcome) Success() bool {
	return o.StatusCode >= 200 && o.StatusCode < 300
}
