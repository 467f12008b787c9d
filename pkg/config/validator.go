package config

import (
	"fmt"
	"net/url"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks every field the pipeline cannot run without. A non-empty
// result is fatal for the whole invocation: no item in any batch can succeed
// with a missing API key, bucket, or table.
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	if c.LLM.APIKey == "" {
		errors = append(errors, ValidationError{
			Field:   "llm.api_key",
			Message: "OpenAI API key is required (OPEN_AI_API_KEY)",
		})
	}

	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "llm.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	switch c.Extractor.SpanStrategy {
	case "naive", "balanced":
	default:
		errors = append(errors, ValidationError{
			Field:   "extractor.span_strategy",
			Message: fmt.Sprintf("unknown span strategy: %s", c.Extractor.SpanStrategy),
		})
	}

	if c.Database.URL == "" {
		errors = append(errors, ValidationError{
			Field:   "database.url",
			Message: "database connection string is required (DATABASE_URL)",
		})
	} else if _, err := url.Parse(c.Database.URL); err != nil {
		errors = append(errors, ValidationError{
			Field:   "database.url",
			Message: "invalid database URL",
		})
	}

	if c.Storage.Bucket == "" {
		errors = append(errors, ValidationError{
			Field:   "storage.bucket",
			Message: "image bucket name is required (BUCKET_NAME)",
		})
	}

	if c.Queue.InboundURL == "" {
		errors = append(errors, ValidationError{
			Field:   "queue.inbound_url",
			Message: "inbound queue URL is required (QUEUE_URL)",
		})
	}

	if c.OCR.Endpoint == "" {
		errors = append(errors, ValidationError{
			Field:   "ocr.endpoint",
			Message: "OCR service endpoint is required (OCR_URL)",
		})
	} else if !strings.HasPrefix(c.OCR.Endpoint, "http") {
		errors = append(errors, ValidationError{
			Field:   "ocr.endpoint",
			Message: "OCR endpoint must be an http(s) URL",
		})
	}

	if c.OCR.ConvertEndpoint != "" && c.OCR.ConvertAPIKey == "" {
		errors = append(errors, ValidationError{
			Field:   "ocr.convert_api_key",
			Message: "conversion API key is required when a conversion endpoint is set (CONVERT_API_KEY)",
		})
	}

	if c.OCR.PollAttempts < 1 {
		errors = append(errors, ValidationError{
			Field:   "ocr.poll_attempts",
			Message: "poll_attempts must be positive",
		})
	}

	if c.Scraper.RateLimit <= 0 {
		errors = append(errors, ValidationError{
			Field:   "scraper.rate_limit",
			Message: "rate_limit must be positive",
		})
	}

	if c.Scraper.WordLimit < 1 {
		errors = append(errors, ValidationError{
			Field:   "scraper.word_limit",
			Message: "word_limit must be positive",
		})
	}

	return errors
}
