// Package queue adapts the pipeline to SQS: a long-polling consumer for
// inbound ingestion requests and a notifier that answers on each request's
// reply queue.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/recipe3/ingest/internal/models"
)

// sqsAPI is the slice of the SQS client the package needs, faked in tests.
type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// BatchHandler processes one receive batch of decoded requests.
type BatchHandler func(ctx context.Context, batch []models.IngestionRequest)

type ConsumerConfig struct {
	QueueURL        string
	MaxMessages     int32
	WaitTimeSeconds int32
}

// Consumer long-polls the inbound queue and feeds each receive batch to the
// handler. Messages are deleted after the handler returns; the handler's
// always-notify contract means a handled message is a finished message.
// Redelivery of messages we crash on is SQS's at-least-once behavior.
type Consumer struct {
	config   ConsumerConfig
	client   sqsAPI
	handler  BatchHandler
	notifier *Notifier
}

func NewConsumer(config ConsumerConfig, client sqsAPI, handler BatchHandler) *Consumer {
	if config.MaxMessages == 0 {
		config.MaxMessages = 10
	}
	if config.WaitTimeSeconds == 0 {
		config.WaitTimeSeconds = 20
	}

	return &Consumer{
		config:   config,
		client:   client,
		handler:  handler,
		notifier: NewNotifier(client),
	}
}

// Start consumes until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.config.QueueURL),
			MaxNumberOfMessages: c.config.MaxMessages,
			WaitTimeSeconds:     c.config.WaitTimeSeconds,
		})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return ctx.Err()
			}
			log.Printf("receive failed: %v", err)
			continue
		}

		if len(out.Messages) == 0 {
			continue
		}

		c.handleBatch(ctx, out.Messages)
	}
}

func (c *Consumer) handleBatch(ctx context.Context, messages []sqstypes.Message) {
	batch := make([]models.IngestionRequest, 0, len(messages))
	for _, msg := range messages {
		req, err := decodeRequest(aws.ToString(msg.Body))
		if err != nil {
			// A malformed message still gets a failure reply when its body
			// decoded far enough to name a reply queue; either way it is
			// dropped rather than left to redeliver forever.
			if req.ReplyChannel != "" {
				outcome := models.PipelineOutcome{
					StatusCode: http.StatusInternalServerError,
					Body:       fmt.Sprintf("Error reading request: %v", err),
				}
				if nerr := c.notifier.Notify(ctx, req.ReplyChannel, outcome); nerr != nil {
					log.Printf("failed to notify %s: %v", req.ReplyChannel, nerr)
				}
			}
			log.Printf("dropping undecodable message: %v", err)
			continue
		}
		batch = append(batch, req)
	}

	if len(batch) > 0 {
		c.handler(ctx, batch)
	}

	for _, msg := range messages {
		_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      aws.String(c.config.QueueURL),
			ReceiptHandle: msg.ReceiptHandle,
		})
		if err != nil {
			log.Printf("failed to delete message: %v", err)
		}
	}
}

// snsEnvelope is the wrapper SNS puts around messages fanned out to SQS.
type snsEnvelope struct {
	Type    string `json:"Type"`
	Message string `json:"Message"`
}

// decodeRequest unwraps an optional SNS envelope, then decodes the
// ingestion request.
func decodeRequest(body string) (models.IngestionRequest, error) {
	var req models.IngestionRequest

	var envelope snsEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err == nil && envelope.Type == "Notification" {
		body = envelope.Message
	}

	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return req, err
	}
	if req.ContentType == "" {
		return req, errors.New("message has no content_type")
	}
	return req, nil
}
