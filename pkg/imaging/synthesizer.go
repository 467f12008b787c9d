package imaging

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Generator produces a downloadable image URL for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Uploader moves a base64-encoded image into hosted storage and returns its
// public URL.
type Uploader interface {
	Upload(ctx context.Context, encoded string) (string, error)
}

type SynthesizerConfig struct {
	DownloadTimeout time.Duration
}

// Synthesizer illustrates a recipe: generate an image from the summary,
// retrying once with a title-based prompt, then download the bytes and hand
// them to the uploader. Every failure surfaces as an error; the pipeline
// decides what stands in for a missing image.
type Synthesizer struct {
	config    SynthesizerConfig
	generator Generator
	uploader  Uploader
	download  *http.Client
}

func NewWithConfig(config SynthesizerConfig, generator Generator, uploader Uploader) *Synthesizer {
	if config.DownloadTimeout == 0 {
		config.DownloadTimeout = 60 * time.Second
	}

	return &Synthesizer{
		config:    config,
		generator: generator,
		uploader:  uploader,
		download: &http.Client{
			Timeout: config.DownloadTimeout,
		},
	}
}

// Synthesize returns the hosted URL of a generated illustration.
func (s *Synthesizer) Synthesize(ctx context.Context, summary, name string) (string, error) {
	imageURL, err := s.generator.Generate(ctx, summary)
	if err != nil {
		log.Printf("image generation failed, retrying with title prompt: %v", err)
		imageURL, err = s.generator.Generate(ctx, fmt.Sprintf("A realistic photo of %s", name))
		if err != nil {
			return "", fmt.Errorf("error getting response from OpenAI: %w", err)
		}
	}

	encoded, err := s.downloadBase64(ctx, imageURL)
	if err != nil {
		return "", err
	}

	hosted, err := s.uploader.Upload(ctx, encoded)
	if err != nil {
		return "", fmt.Errorf("error uploading image: %w", err)
	}
	return hosted, nil
}

func (s *Synthesizer) downloadBase64(ctx context.Context, imageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("error downloading generated image: %v", err)
	}

	resp, err := s.download.Do(req)
	if err != nil {
		return "", fmt.Errorf("error downloading generated image: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("image download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading generated image: %v", err)
	}

	return base64.StdEncoding.EncodeToString(data), nil
}

// OpenAIGenerator generates images through the OpenAI images endpoint.
type OpenAIGenerator struct {
	client *openai.Client
}

func NewOpenAIGenerator(apiKey string) *OpenAIGenerator {
	return &OpenAIGenerator{
		client: openai.NewClient(apiKey),
	}
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", fmt.Errorf("image response contained no URL")
	}
	return resp.Data[0].URL, nil
}
