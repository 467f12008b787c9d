package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/recipe3/ingest/internal/models"
)

// Notifier sends pipeline outcomes to per-request reply queues.
type Notifier struct {
	client sqsAPI
}

func NewNotifier(client sqsAPI) *Notifier {
	return &Notifier{client: client}
}

// Notify marshals the outcome and sends it to replyChannel. Callers treat
// failures as best-effort; this just reports them.
func (n *Notifier) Notify(ctx context.Context, replyChannel string, outcome models.PipelineOutcome) error {
	if replyChannel == "" {
		return fmt.Errorf("request has no reply channel")
	}

	body, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("failed to encode outcome: %v", err)
	}

	_, err = n.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(replyChannel),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("failed to send outcome: %w", err)
	}
	return nil
}
