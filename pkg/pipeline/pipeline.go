// Package pipeline orchestrates one ingestion request end to end:
// resolve the source to text, structure it with the LLM, illustrate it,
// persist it, and reply. Each item moves through an explicit state machine
// so every suspension point and error boundary is visible.
package pipeline

import (
	"context"
	"log"
	"net/http"

	"github.com/recipe3/ingest/internal/models"
	"github.com/recipe3/ingest/internal/types"
)

// state of one in-flight item. Imaging can never produce stateFailed; a
// failed illustration is replaced by the placeholder URL and the item moves
// forward.
type state int

const (
	stateResolving state = iota
	stateExtracting
	stateImaging
	statePersisting
	stateNotified
	stateFailed
)

func (s state) String() string {
	switch s {
	case stateResolving:
		return "resolving"
	case stateExtracting:
		return "extracting"
	case stateImaging:
		return "imaging"
	case statePersisting:
		return "persisting"
	case stateNotified:
		return "notified"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

type PipelineConfig struct {
	// PlaceholderImageURL stands in whenever image synthesis fails.
	PlaceholderImageURL string
}

// Pipeline wires the five stages together. All collaborators are narrow
// interfaces; the pipeline owns only control flow and failure policy.
type Pipeline struct {
	config    PipelineConfig
	resolver  types.ContentResolver
	extractor types.Extractor
	images    types.ImageSynthesizer
	store     types.RecipeStore
	notifier  types.Notifier
}

func NewWithConfig(
	config PipelineConfig,
	resolver types.ContentResolver,
	extractor types.Extractor,
	images types.ImageSynthesizer,
	store types.RecipeStore,
	notifier types.Notifier,
) *Pipeline {
	return &Pipeline{
		config:    config,
		resolver:  resolver,
		extractor: extractor,
		images:    images,
		store:     store,
		notifier:  notifier,
	}
}

// Run processes a batch sequentially. A failing item never aborts the rest
// of the batch, and every item gets exactly one reply, success or not.
func (p *Pipeline) Run(ctx context.Context, batch []models.IngestionRequest) {
	for _, req := range batch {
		outcome := p.runItem(ctx, req)
		if err := p.notifier.Notify(ctx, req.ReplyChannel, outcome); err != nil {
			// Best-effort: a lost reply does not undo a finished ingestion.
			log.Printf("failed to notify %s: %v", req.ReplyChannel, err)
		}
	}
}

// runItem walks one request through the state machine and returns its
// outcome. Resolution, extraction, and persistence failures short-circuit
// to a failure outcome; imaging failures are absorbed.
func (p *Pipeline) runItem(ctx context.Context, req models.IngestionRequest) models.PipelineOutcome {
	identity, err := req.Identity()
	if err != nil {
		return failure(stateResolving, &ResolutionError{Err: err})
	}

	st := stateResolving
	content, err := p.resolver.Resolve(ctx, req)
	if err != nil {
		return failure(st, &ResolutionError{Err: err})
	}

	st = stateExtracting
	recipe, err := p.extractor.Extract(ctx, content)
	if err != nil {
		return failure(st, &ExtractionError{Err: err})
	}

	// Imaging always transitions forward. The error is collapsed to the
	// placeholder URL here, deliberately: a recipe without an illustration
	// still gets stored and acknowledged.
	st = stateImaging
	imageURL, err := p.images.Synthesize(ctx, recipe.Summary, recipe.Name)
	if err != nil {
		imgErr := &ImagingError{Err: err}
		log.Printf("%s for %q, using placeholder image", imgErr, identity)
		imageURL = p.config.PlaceholderImageURL
	}

	st = statePersisting
	err = p.store.Put(ctx, models.PersistedRecipe{
		UUID:             identity,
		Credit:           req.Credit,
		Image:            imageURL,
		StructuredRecipe: recipe,
	})
	if err != nil {
		return failure(st, &StoreError{Err: err})
	}

	return models.PipelineOutcome{
		StatusCode: http.StatusOK,
		Body:       "Recipe Added!",
	}
}

func failure(st state, err error) models.PipelineOutcome {
	log.Printf("pipeline failed while %s: %v", st, err)
	return models.PipelineOutcome{
		StatusCode: http.StatusInternalServerError,
		Body:       err.Error(),
	}
}
