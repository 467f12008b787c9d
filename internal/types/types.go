package types

import (
	"context"

	"github.com/recipe3/ingest/internal/models"
)

// Core interfaces the pipeline is assembled from. Each stage with an
// external dependency sits behind one of these so it can be faked in tests
// and swapped per environment.

// ContentResolver turns an ingestion request into plain text.
type ContentResolver interface {
	Resolve(ctx context.Context, req models.IngestionRequest) (string, error)
}

// Extractor structures raw recipe text via an LLM.
type Extractor interface {
	Extract(ctx context.Context, content string) (models.StructuredRecipe, error)
}

// ImageSynthesizer produces a hosted illustration URL for a recipe.
// Callers decide what to do when it fails; the pipeline substitutes a
// placeholder URL rather than failing the item.
type ImageSynthesizer interface {
	Synthesize(ctx context.Context, summary, name string) (string, error)
}

// RecipeStore persists finished records. Put is an unconditional upsert
// keyed by the record's UUID; last writer wins.
type RecipeStore interface {
	Put(ctx context.Context, rec models.PersistedRecipe) error
}

// Notifier delivers a pipeline outcome to a request's reply channel.
type Notifier interface {
	Notify(ctx context.Context, replyChannel string, outcome models.PipelineOutcome) error
}
