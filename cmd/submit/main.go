// submit enqueues a single ingestion request and waits for the pipeline's
// reply. Useful for trying a recipe source without going through the app.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/recipe3/ingest/internal/models"
	cfgPkg "github.com/recipe3/ingest/pkg/config"
)

type submitOptions struct {
	SourceRef   string
	ContentType string
	Credit      string
	UUID        string
	ReplyQueue  string
	Timeout     time.Duration
}

func main() {
	var configPath string
	var opts submitOptions

	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.StringVar(&opts.SourceRef, "url", "", "Recipe URL, image URL, or bulk text")
	flag.StringVar(&opts.ContentType, "type", "URL", "Content type: URL, IMAGE, or BULK")
	flag.StringVar(&opts.Credit, "credit", "", "Credit override for the recipe identity")
	flag.StringVar(&opts.UUID, "uuid", "", "Explicit identity for IMAGE/BULK recipes")
	flag.StringVar(&opts.ReplyQueue, "reply", os.Getenv("REPLY_QUEUE_URL"), "Reply queue URL")
	flag.DurationVar(&opts.Timeout, "timeout", 5*time.Minute, "How long to wait for the reply")
	flag.Parse()

	if opts.SourceRef == "" {
		log.Fatal("missing -url")
	}
	if opts.ReplyQueue == "" {
		log.Fatal("missing -reply (or REPLY_QUEUE_URL)")
	}

	config, err := cfgPkg.LoadConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if config.Queue.InboundURL == "" {
		log.Fatal("no inbound queue configured (QUEUE_URL)")
	}

	if err := run(config, opts); err != nil {
		log.Fatal(err)
	}
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func run(config *cfgPkg.Config, opts submitOptions) error {
	ctx, cancel := context.WithTimeout(context.Background(), opts.Timeout)
	defer cancel()

	awsConfig, err := awscfg.LoadDefaultConfig(ctx, awscfg.WithRegion(config.Storage.Region))
	if err != nil {
		return fmt.Errorf("failed to load AWS configuration: %v", err)
	}
	client := sqs.NewFromConfig(awsConfig)

	request := models.IngestionRequest{
		SourceRef:    opts.SourceRef,
		ContentType:  models.ContentType(opts.ContentType),
		Credit:       opts.Credit,
		ExplicitID:   opts.UUID,
		ReplyChannel: opts.ReplyQueue,
	}

	body, err := json.Marshal(request)
	if err != nil {
		return err
	}

	_, err = client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(config.Queue.InboundURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("failed to enqueue request: %v", err)
	}

	color.Blue("Submitted %s request for %s\n", request.ContentType, request.SourceRef)
	spinner := getSpinner("Waiting for the pipeline...")

	outcome, err := awaitReply(ctx, client, opts.ReplyQueue, spinner)
	if err != nil {
		return err
	}

	fmt.Println()
	if outcome.Success() {
		color.Green("✓ %d: %s\n", outcome.StatusCode, outcome.Body)
	} else {
		color.Red("✗ %d: %s\n", outcome.StatusCode, outcome.Body)
	}
	return nil
}

func awaitReply(ctx context.Context, client *sqs.Client, replyQueue string, spinner *progressbar.ProgressBar) (models.PipelineOutcome, error) {
	var outcome models.PipelineOutcome

	for {
		spinner.Add(1)

		out, err := client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(replyQueue),
			MaxNumberOfMessages: 1,
			WaitTimeSeconds:     5,
		})
		if err != nil {
			if ctx.Err() != nil {
				return outcome, fmt.Errorf("timed out waiting for a reply")
			}
			return outcome, fmt.Errorf("failed to poll reply queue: %v", err)
		}

		if len(out.Messages) == 0 {
			continue
		}

		msg := out.Messages[0]
		if err := json.Unmarshal([]byte(aws.ToString(msg.Body)), &outcome); err != nil {
			return outcome, fmt.Errorf("failed to decode reply: %v", err)
		}

		_, err = client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      aws.String(replyQueue),
			ReceiptHandle: msg.ReceiptHandle,
		})
		if err != nil {
			log.Printf("failed to delete reply message: %v", err)
		}

		return outcome, nil
	}
}
