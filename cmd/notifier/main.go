package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	apptrepository "petcare/internal/appointments/repository"
	authrepository "petcare/internal/auth/repository"
	"petcare/internal/notifications"
	ownerrepository "petcare/internal/owners/repository"
	petrepository "petcare/internal/pets/repository"
	"petcare/pkg/config"
	"petcare/pkg/kafka"
	kafka_config "petcare/pkg/kafka/config"
	kafka_middleware "petcare/pkg/kafka/middleware"
	"petcare/pkg/mailer"
)

const ServiceName = "petcare-notifier"

func main() {
	cfg := config.Load(ServiceName)
	if !cfg.KafkaEnabled() {
		cfg.Log.Fatal("KAFKA_BROKERS must be set to run the notifier")
	}
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	kafkaCfg, err := kafka_config.Load(cfg.KafkaBrokers)
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	vetMailer := notifications.NewVetMailer(
		authrepository.NewMongoUserRepository(cfg),
		petrepository.NewMongoPetRepository(cfg),
		ownerrepository.NewMongoOwnerRepository(cfg),
		apptrepository.NewMongoAppointmentRepository(cfg),
		mailer.FromConfig(cfg),
		cfg.BaseURL,
		cfg.Log,
	)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.KafkaAppointmentsTopic,
		cfg.KafkaConsumerGroup,
		cfg.KafkaAppointmentsTopic+".dlq",
		notifications.NewEventHandler(vetMailer, cfg.Log),
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	defer func() {
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka consumer", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Consuming appointment events",
		"topic", cfg.KafkaAppointmentsTopic,
		"group", cfg.KafkaConsumerGroup,
	)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped", "error", err)
		return
	}
	cfg.Log.Info("Notifier stopped")
}
