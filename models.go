package main

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/muhammadolammi/careeragent/internal/career"
	"github.com/muhammadolammi/careeragent/internal/database"
)

// runStore is the part of database.Queries the worker uses.
type runStore interface {
	GetRunResume(ctx context.Context, runID uuid.UUID) (database.Resume, error)
	UpdateRunStatus(ctx context.Context, arg database.UpdateRunStatusParams) error
	CreateOrUpdateRunResult(ctx context.Context, arg database.CreateOrUpdateRunResultParams) error
}

type WorkerConfig struct {
	DB          runStore
	R2          *R2Config
	AwsConfig   *aws.Config
	RabbitConn  *amqp.Connection
	RABBITMQUrl string
	Agent       *career.Agent
}

// RunMessage is the body of a message on the runs queue.
type RunMessage struct {
	ID          uuid.UUID   `json:"id"`
	CreatedAt   time.Time   `json:"created_at"`
	UserID      uuid.UUID   `json:"user_id"`
	Mode        career.Mode `json:"mode"`
	TargetURL   string      `json:"target_url"`
	SearchQuery string      `json:"search_query"`
	Region      string      `json:"region"`
}

type RunStatus string

const (
	StatusProcessing RunStatus = "processing"
	StatusCompleted  RunStatus = "completed"
	StatusFailed     RunStatus = "failed"
)

// RunUpdate is published to the run_updates exchange on every status change.
type RunUpdate struct {
	RunID     uuid.UUID `json:"run_id"`
	Status    RunStatus `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
