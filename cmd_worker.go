package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/spf13/cobra"
	"github.com/streadway/amqp"

	"github.com/muhammadolammi/careeragent/internal/database"
)

var workerFlags struct {
	workers int
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume run requests from RabbitMQ and store results in Postgres",
	RunE:  runWorker,
}

func init() {
	workerCmd.Flags().IntVarP(&workerFlags.workers, "workers", "n", 0, "Number of consumers (default WORKER_COUNT)")
}

func runWorker(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if workerFlags.workers > 0 {
		cfg.WorkerCount = workerFlags.workers
	}
	if err := cfg.validateWorker(); err != nil {
		return err
	}

	db, err := sql.Open("postgres", cfg.DBURL)
	if err != nil {
		return fmt.Errorf("error opening db: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("error connecting to db: %w", err)
	}

	awsConfig, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2.AccessKey, cfg.R2.SecretKey, "")),
		config.WithRegion("auto"),
	)
	if err != nil {
		return fmt.Errorf("error creating aws config: %w", err)
	}

	agent, err := newCareerAgent(ctx, cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create career agent: %w", err)
	}

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		return fmt.Errorf("error connecting to RabbitMQ: %w", err)
	}
	defer conn.Close()
	if err := declareRunUpdateExchange(conn); err != nil {
		return fmt.Errorf("failed to declare %s exchange: %w", runUpdateExchange, err)
	}

	workerConfig := WorkerConfig{
		DB:          database.New(db),
		R2:          &cfg.R2,
		AwsConfig:   &awsConfig,
		RabbitConn:  conn,
		RABBITMQUrl: cfg.RabbitMQURL,
		Agent:       agent,
	}

	slog.Info("starting consumer pool", slog.Int("workers", cfg.WorkerCount), slog.String("llm_backend", cfg.LLMBackend))
	return workerConfig.StartConsumerWorkerPool(ctx, cfg.WorkerCount)
}
