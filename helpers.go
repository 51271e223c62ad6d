package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/streadway/amqp"

	"github.com/muhammadolammi/careeragent/internal/agents"
	"github.com/muhammadolammi/careeragent/internal/career"
	"github.com/muhammadolammi/careeragent/internal/workflow"
)

const (
	runsQueue         = "career_runs"
	runUpdateExchange = "run_updates"
	maxResumeBytes    = 10 << 20
)

func newR2Client(cfg aws.Config, r2 *R2Config) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", r2.AccountID))
	})
}

// downloadResume fetches an uploaded resume from R2. Objects larger than
// maxResumeBytes are refused.
func downloadResume(ctx context.Context, client *s3.Client, bucket, key string) ([]byte, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer out.Body.Close()
	return readLimited(out.Body, maxResumeBytes)
}

var errResumeTooLarge = errors.New("resume exceeds size limit")

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w of %d bytes", errResumeTooLarge, limit)
	}
	return data, nil
}

func publishRunUpdate(rabbitConn *amqp.Connection, update RunUpdate) error {
	ch, err := rabbitConn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	body, err := json.Marshal(update)
	if err != nil {
		return err
	}
	routingKey := fmt.Sprintf("run.%s", update.RunID)

	return ch.Publish(
		runUpdateExchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// describeRunError turns a failed run into one readable message.
func describeRunError(err error) error {
	var nodeErr *workflow.NodeExecutionError
	switch {
	case errors.Is(err, career.ErrInvalidInput):
		return err
	case errors.Is(err, agents.ErrProfileParse):
		return fmt.Errorf("could not read a candidate profile from the resume: %w", err)
	case errors.Is(err, agents.ErrNoJobsFound):
		return fmt.Errorf("no matching jobs were found; try a different --query: %w", err)
	case errors.Is(err, agents.ErrScrapeFailed):
		return fmt.Errorf("the job page could not be read: %w", err)
	case errors.As(err, &nodeErr):
		return fmt.Errorf("workflow step %q failed: %w", nodeErr.Node, nodeErr.Cause)
	}
	return err
}

// declareRunUpdateExchange makes sure the topic exchange for run updates
// exists before any worker publishes to it.
func declareRunUpdateExchange(rabbitConn *amqp.Connection) error {
	ch, err := rabbitConn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()
	return ch.ExchangeDeclare(
		runUpdateExchange, // name
		"topic",           // kind
		true,              // durable
		false,             // auto-delete
		false,             // internal
		false,             // no-wait
		nil,               // arguments
	)
}
