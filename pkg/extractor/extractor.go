package extractor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/recipe3/ingest/internal/models"
)

// Prompt is the fixed instruction prepended to the raw content. Scraped
// digests arrive with their spacing stripped, so the prompt asks the model
// to re-space; section headers become plain list entries.
const Prompt = "Using this web page content, parse the recipe out, summarize it, and put it in JSON format using this format: " +
	"{name: <str>, ingredients: [], instructions: [], notes: <str>, summary: <str>}. " +
	"If words are run together, add spacing. If the recipe has section headers, include them in the list as their own entries."

// ExtractorConfig represents the configuration for a recipe extractor.
type ExtractorConfig struct {
	APIKey       string
	Model        string
	Temperature  float64
	SpanStrategy string
}

// Extractor structures raw recipe text by asking a chat model for the
// canonical JSON shape and decoding the object embedded in its reply.
type Extractor struct {
	config ExtractorConfig
	llm    llms.Model
	span   SpanStrategy
}

// NewWithConfig creates a new Extractor with the given configuration.
func NewWithConfig(config ExtractorConfig) (*Extractor, error) {
	if config.Model == "" {
		config.Model = "gpt-4"
	}
	if config.Temperature < 0 || config.Temperature > 2 {
		return nil, fmt.Errorf("temperature must be between 0 and 2")
	}

	llm, err := openai.New(
		openai.WithModel(config.Model),
		openai.WithToken(config.APIKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return &Extractor{
		config: config,
		llm:    llm,
		span:   SpanStrategyByName(config.SpanStrategy),
	}, nil
}

// NewWithModel builds an Extractor around an existing model. Used by tests
// and by callers that manage their own provider.
func NewWithModel(llm llms.Model, spanStrategy string) *Extractor {
	return &Extractor{
		llm:  llm,
		span: SpanStrategyByName(spanStrategy),
	}
}

// Extract sends content to the model and decodes the returned recipe.
func (e *Extractor) Extract(ctx context.Context, content string) (models.StructuredRecipe, error) {
	var recipe models.StructuredRecipe

	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeHuman, fmt.Sprintf("%s %s", Prompt, content)),
	}

	opts := []llms.CallOption{}
	if e.config.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(e.config.Temperature))
	}

	response, err := e.llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return recipe, fmt.Errorf("error getting response from OpenAI: %w", err)
	}

	if response == nil || len(response.Choices) == 0 || response.Choices[0].Content == "" {
		return recipe, fmt.Errorf("could not get message content")
	}
	reply := response.Choices[0].Content

	span, ok := e.span(reply)
	if !ok {
		return recipe, fmt.Errorf("no JSON object found in model response")
	}

	if err := json.Unmarshal([]byte(span), &recipe); err != nil {
		return recipe, fmt.Errorf("error parsing JSON: %v", err)
	}

	if len(recipe.Ingredients) == 0 || len(recipe.Instructions) == 0 {
		return recipe, fmt.Errorf("model response is missing ingredients or instructions")
	}

	return recipe, nil
}
