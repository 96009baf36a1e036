package ingress

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/codeclash/judge/api"
	"github.com/codeclash/judge/internal/lang"
	"github.com/codeclash/judge/internal/problems"
	"github.com/codeclash/judge/internal/queue"
)

// SqsConsumer pulls submit requests from an SQS queue and feeds them to
// the judging pool. It is an alternative ingress to the HTTP endpoint
// for platforms that enqueue submissions asynchronously.
type SqsConsumer struct {
	client   *sqs.Client
	queueURL string
	pool     *queue.Pool
	problems *problems.Registry
	langs    *lang.Registry
}

func NewSqsConsumer(ctx context.Context, region, queueURL string, pool *queue.Pool, registry *problems.Registry, langs *lang.Registry) (*SqsConsumer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return &SqsConsumer{
		client:   sqs.NewFromConfig(cfg),
		queueURL: queueURL,
		pool:     pool,
		problems: registry,
		langs:    langs,
	}, nil
}

// Run long-polls until ctx is cancelled. A message is deleted only after
// the submission has been accepted by the pool; judging failures after
// that point are reported through the submission itself, not the queue.
func (c *SqsConsumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		output, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(c.queueURL),
			MaxNumberOfMessages: 1,
			WaitTimeSeconds:     5,
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("failed to receive messages", "error", err)
			time.Sleep(1 * time.Second)
			continue
		}

		for _, message := range output.Messages {
			if c.handle(ctx, message.Body) {
				_, err = c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
					QueueUrl:      aws.String(c.queueURL),
					ReceiptHandle: message.ReceiptHandle,
				})
				if err != nil {
					slog.Error("failed to delete message", "error", err)
				}
			}
		}
	}
}

// handle reports whether the message should be deleted. Malformed and
// unroutable messages are deleted too; redelivery cannot fix them.
func (c *SqsConsumer) handle(_ context.Context, body *string) bool {
	if body == nil {
		return true
	}

	var req api.SubmitRequest
	if err := json.Unmarshal([]byte(*body), &req); err != nil {
		slog.Error("failed to unmarshal message", "error", err)
		return true
	}
	if _, ok := c.langs.Get(req.Language); !ok {
		slog.Error("message has unsupported language", "language", req.Language)
		return true
	}
	limits, tests, err := c.problems.Snapshot(req.ProblemID)
	if err != nil {
		slog.Error("message references unknown problem", "problem", req.ProblemID)
		return true
	}
	if len(tests) == 0 {
		slog.Error("problem has no test cases", "problem", req.ProblemID)
		return true
	}

	id, err := c.pool.Enqueue(&queue.Submission{
		ProblemID: req.ProblemID,
		Language:  req.Language,
		Code:      req.Code,
		Limits:    limits,
		Tests:     tests,
	})
	if err != nil {
		// pool is full, leave the message for redelivery
		slog.Error("failed to enqueue submission", "error", err)
		return false
	}

	slog.Info("enqueued submission from queue", "submission", id, "problem", req.ProblemID)
	return true
}
