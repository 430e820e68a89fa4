package main

import (
	"assignmentgateway/internal/client"
	"assignmentgateway/internal/config"
	"assignmentgateway/internal/kafka"
	"assignmentgateway/internal/logging"
	"assignmentgateway/internal/worker"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.New()
	if err != nil {
		panic(fmt.Sprintf("cannot create config: %v", err))
	}

	logger, err := logging.NewDevelopment(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := cfg.ValidateReminder(); err != nil {
		logger.Fatal(ctx, "invalid reminder config", zap.Error(err))
	}

	assignmentHTTP, err := client.New(cfg.AssignmentURL, cfg.RequestTimeout)
	if err != nil {
		logger.Fatal(ctx, "cannot create assignment client", zap.Error(err))
	}

	producer, err := kafka.NewProducer(kafka.Config{Brokers: cfg.KafkaBrokers, Topic: cfg.ReminderTopic})
	if err != nil {
		logger.Fatal(ctx, "cannot create kafka producer", zap.Error(err))
	}
	defer func() {
		if err := producer.Close(); err != nil {
			logger.Error(ctx, "failed to close kafka producer", zap.Error(err))
		}
	}()

	reminderWorker := worker.NewReminderWorker(client.NewAssignmentClient(assignmentHTTP), producer, logger, worker.Config{
		InstructorID: cfg.ReminderInstructorID,
		ServiceToken: cfg.ServiceToken,
		Interval:     cfg.ReminderInterval,
		Window:       cfg.ReminderWindow,
	})

	logger.Info(ctx, "Starting reminder worker",
		zap.String("topic", cfg.ReminderTopic),
		zap.Duration("interval", cfg.ReminderInterval),
		zap.Duration("window", cfg.ReminderWindow),
	)
	reminderWorker.Start(ctx)
}
