package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/streadway/amqp"
	"golang.org/x/sync/errgroup"

	"github.com/muhammadolammi/careeragent/internal/career"
	"github.com/muhammadolammi/careeragent/internal/database"
	"github.com/muhammadolammi/careeragent/internal/tools"
)

// retry retries a function up to `attempts` times with linear backoff.
func retry[T any](ctx context.Context, attempts int, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for i := 0; i < attempts; i++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(time.Duration(500*(i+1)) * time.Millisecond):
		}
	}
	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}

func decodeRunMessage(body []byte) (RunMessage, error) {
	var run RunMessage
	if err := json.Unmarshal(body, &run); err != nil {
		return run, fmt.Errorf("error unmarshalling message body: %w", err)
	}
	if run.ID == uuid.Nil {
		return run, errors.New("message has no run id")
	}
	return run, nil
}

// processRun downloads the run's resume, executes the workflow and stores
// the result. Downloads and database writes are retried; the workflow is
// not.
func processRun(ctx context.Context, run RunMessage, workerConfig *WorkerConfig) error {
	resume, err := workerConfig.DB.GetRunResume(ctx, run.ID)
	if err != nil {
		return saveRunError(ctx, workerConfig, run.ID, fmt.Errorf("error getting resume for run: %v, err: %w", run.ID, err))
	}

	awsClient := newR2Client(*workerConfig.AwsConfig, workerConfig.R2)
	fileBytes, err := retry(ctx, 3, func() ([]byte, error) {
		return downloadResume(ctx, awsClient, workerConfig.R2.Bucket, resume.ObjectKey)
	})
	if err != nil {
		return saveRunError(ctx, workerConfig, run.ID, fmt.Errorf("file download error: %w", err))
	}

	resumeText, err := tools.ExtractResumeText(resume.Mime, fileBytes)
	if err != nil {
		return saveRunError(ctx, workerConfig, run.ID, fmt.Errorf("text extraction error: %w", err))
	}

	res, err := workerConfig.Agent.Run(ctx, career.Input{
		Mode:        run.Mode,
		ResumeText:  resumeText,
		TargetURL:   run.TargetURL,
		SearchQuery: run.SearchQuery,
		Region:      run.Region,
	})
	if err != nil {
		return saveRunError(ctx, workerConfig, run.ID, describeRunError(err))
	}

	resultJSON, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal run result: %w", err)
	}
	_, err = retry(ctx, 3, func() (any, error) {
		return nil, workerConfig.DB.CreateOrUpdateRunResult(ctx, database.CreateOrUpdateRunResultParams{
			Result: resultJSON,
			RunID:  run.ID,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to save run result after retries: %w", err)
	}
	return nil
}

// saveRunError records runErr as the run's result and returns it.
func saveRunError(ctx context.Context, workerConfig *WorkerConfig, runID uuid.UUID, runErr error) error {
	_, err := retry(ctx, 3, func() (any, error) {
		return nil, workerConfig.DB.CreateOrUpdateRunResult(ctx, database.CreateOrUpdateRunResultParams{
			Error: runErr.Error(),
			RunID: runID,
		})
	})
	if err != nil {
		slog.Error("failed to save run error", slog.String("run_id", runID.String()), slog.Any("error", err))
	}
	return runErr
}

func setRunStatus(ctx context.Context, workerConfig *WorkerConfig, runID uuid.UUID, status RunStatus, message string) {
	// A shutdown must not leave the run stuck in "processing".
	ctx = context.WithoutCancel(ctx)
	if err := workerConfig.DB.UpdateRunStatus(ctx, database.UpdateRunStatusParams{
		Status: string(status),
		ID:     runID,
	}); err != nil {
		slog.Error("failed to update run status",
			slog.String("run_id", runID.String()),
			slog.String("status", string(status)),
			slog.Any("error", err),
		)
	}
	update := RunUpdate{RunID: runID, Status: status, Message: message, Timestamp: time.Now()}
	if err := publishRunUpdate(workerConfig.RabbitConn, update); err != nil {
		slog.Warn("failed to publish update", slog.String("run_id", runID.String()), slog.Any("error", err))
	}
}

func worker(ctx context.Context, id int, workerConfig *WorkerConfig) error {
	logger := slog.With(slog.Int("worker", id+1))

	conn, err := amqp.Dial(workerConfig.RABBITMQUrl)
	if err != nil {
		return fmt.Errorf("error dialling rabbitmq: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("error connecting to rabbitmq channel: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		runsQueue, // queue name
		true,      // durable (survives broker restarts)
		false,     // auto-delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set qos: %w", err)
	}

	msgs, err := ch.Consume(
		runsQueue, // queue name
		"",        // consumer tag
		false,     // auto-ack
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return fmt.Errorf("error consuming rabbitmq message: %w", err)
	}

	for {
		var msg amqp.Delivery
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case msg, ok = <-msgs:
			if !ok {
				return errors.New("rabbitmq channel closed")
			}
		}

		run, err := decodeRunMessage(msg.Body)
		if err != nil {
			logger.Warn("dropping malformed message", slog.Any("error", err))
			if run.ID != uuid.Nil {
				setRunStatus(ctx, workerConfig, run.ID, StatusFailed, "invalid run request")
			}
			_ = msg.Reject(false)
			continue
		}

		logger.Info("processing run", slog.String("run_id", run.ID.String()), slog.String("mode", string(run.Mode)))
		setRunStatus(ctx, workerConfig, run.ID, StatusProcessing, "run started")

		start := time.Now()
		if err := processRun(ctx, run, workerConfig); err != nil {
			logger.Error("run failed", slog.String("run_id", run.ID.String()), slog.Any("error", err))
			setRunStatus(ctx, workerConfig, run.ID, StatusFailed, err.Error())
		} else {
			logger.Info("run completed", slog.String("run_id", run.ID.String()), slog.Duration("elapsed", time.Since(start)))
			setRunStatus(ctx, workerConfig, run.ID, StatusCompleted, "run completed")
		}
		_ = msg.Ack(false)
	}
}

// StartConsumerWorkerPool blocks until ctx is done or a worker fails. The
// first failure stops the rest of the pool.
func (workerConfig *WorkerConfig) StartConsumerWorkerPool(ctx context.Context, numWorkers int) error {
	return runPool(ctx, numWorkers, func(ctx context.Context, id int) error {
		return worker(ctx, id, workerConfig)
	})
}

func runPool(ctx context.Context, n int, fn func(ctx context.Context, id int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := range n {
		slog.Info("worker started", slog.Int("worker", i+1))
		g.Go(func() error {
			if err := fn(gctx, i); err != nil {
				return fmt.Errorf("worker %d: %w", i+1, err)
			}
			return nil
		})
	}
	return g.Wait()
}
