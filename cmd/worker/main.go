package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/fatih/color"

	cfgPkg "github.com/recipe3/ingest/pkg/config"
	"github.com/recipe3/ingest/pkg/extractor"
	"github.com/recipe3/ingest/pkg/imaging"
	"github.com/recipe3/ingest/pkg/ocr"
	"github.com/recipe3/ingest/pkg/pipeline"
	"github.com/recipe3/ingest/pkg/queue"
	"github.com/recipe3/ingest/pkg/resolver"
	"github.com/recipe3/ingest/pkg/scraper"
	"github.com/recipe3/ingest/pkg/store"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Parse()

	config, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}

	if errs := config.Validate(); len(errs) > 0 {
		for _, e := range errs {
			color.Red("config: %v", e)
		}
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}

func run(ctx context.Context, config *cfgPkg.Config) error {
	awsConfig, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(config.Storage.Region))
	if err != nil {
		return fmt.Errorf("failed to load AWS configuration: %v", err)
	}
	sqsClient := sqs.NewFromConfig(awsConfig)
	s3Client := s3.NewFromConfig(awsConfig)

	webScraper := scraper.NewWithConfig(scraper.ScraperConfig{
		RateLimit: config.Scraper.RateLimit,
		Timeout:   config.Scraper.Timeout,
		WordLimit: config.Scraper.WordLimit,
	})

	ocrClient := ocr.NewWithConfig(ocr.ClientConfig{
		Endpoint: config.OCR.Endpoint,
		Convert: ocr.ConvertConfig{
			Endpoint:     config.OCR.ConvertEndpoint,
			APIKey:       config.OCR.ConvertAPIKey,
			PollAttempts: config.OCR.PollAttempts,
			PollInterval: config.OCR.PollInterval,
		},
	})

	recipeExtractor, err := extractor.NewWithConfig(extractor.ExtractorConfig{
		APIKey:       config.LLM.APIKey,
		Model:        config.LLM.Model,
		Temperature:  config.LLM.Temperature,
		SpanStrategy: config.Extractor.SpanStrategy,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize extractor: %v", err)
	}

	synthesizer := imaging.NewWithConfig(
		imaging.SynthesizerConfig{},
		imaging.NewOpenAIGenerator(config.LLM.APIKey),
		imaging.NewS3Uploader(imaging.S3UploaderConfig{
			Bucket: config.Storage.Bucket,
			Region: config.Storage.Region,
		}, s3Client),
	)

	recipeStore, err := store.NewWithConfig(store.RecipeStoreConfig{
		ConnString: config.Database.URL,
		TableName:  config.Database.TableName,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize recipe store: %v", err)
	}
	defer recipeStore.Close()

	pipe := pipeline.NewWithConfig(
		pipeline.PipelineConfig{PlaceholderImageURL: config.Images.PlaceholderURL},
		resolver.New(webScraper, ocrClient),
		recipeExtractor,
		synthesizer,
		recipeStore,
		queue.NewNotifier(sqsClient),
	)

	consumer := queue.NewConsumer(queue.ConsumerConfig{
		QueueURL: config.Queue.InboundURL,
	}, sqsClient, pipe.Run)

	color.Blue("Listening for ingestion requests on %s\n", config.Queue.InboundURL)
	return consumer.Start(ctx)
}
