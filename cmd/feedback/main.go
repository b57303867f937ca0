package main

import (
	"context"
	"log"
	"os/signal"
	"sentiment-backend/cmd"
	"sentiment-backend/internal/config"
	"sentiment-backend/internal/database"
	"sentiment-backend/internal/feedback"
	"sentiment-backend/internal/messaging"
	"syscall"
)

// Drains the rabbitmq feedback queue into the feedback database.
func main() {
	log.Println("Starting Feedback Consumer...")

	cmd.LoadEnvFile()

	cfg, err := config.LoadConsumer()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	db, err := database.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	receiver, err := messaging.NewRabbitMQReceiver(cfg.RabbitMQURL)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer receiver.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := feedback.NewConsumer(receiver, feedback.NewDatabaseSink(db))

	log.Println("Consumer started. Waiting for feedback events. Press Ctrl+C to exit.")
	consumer.Run(ctx)

	log.Println("Feedback consumer stopped.")
}
