package main

import (
	"context"
	"errors"

	"evcharge/internal/bookings/handler"
	"evcharge/internal/bookings/index"
	"evcharge/internal/bookings/ledger"
	"evcharge/internal/bookings/repository"
	"evcharge/internal/bookings/service"
	"evcharge/internal/bookings/stationsync"
	"evcharge/internal/bookings/validator"
	stationsrepo "evcharge/internal/stations/repository"
	"evcharge/pkg/app"
	"evcharge/pkg/auth"
	"evcharge/pkg/config"
	"evcharge/pkg/kafka"
	"evcharge/pkg/kafka/kafkaconfig"
	"evcharge/pkg/kafka/kafkamw"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	if err := cfg.ValidateAuth(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Bookings service")
	ctx, cancel := context.WithCancel(context.Background())

	bookingRepo := repository.NewMongoBookingRepository(cfg)
	stationIndex := index.New(nil)
	slotLedger := ledger.New()

	syncer := stationsync.New(stationsrepo.NewMongoStationRepository(cfg), bookingRepo, stationIndex, slotLedger, cfg.Log)
	if err := syncer.Bootstrap(ctx); err != nil {
		cfg.Log.Fatal("Failed to load stations and reservations", "error", err)
	}
	go syncer.Run(ctx, cfg.StationRefresh)

	publisher := kafka.EventPublisher(kafka.NoopPublisher{})
	var consumer *kafka.Consumer
	if cfg.KafkaEnabled {
		publisher, consumer = initKafka(ctx, cfg, syncer)
	}

	bookingService := service.NewBookingService(
		bookingRepo,
		stationIndex,
		slotLedger,
		validator.NewBookingValidator(cfg.Log, cfg.MaxSlotDuration),
		publisher,
		cfg,
	)
	cfg.Log.Info("Booking service initialized",
		"database", cfg.MongoDatabaseName,
		"stations", stationIndex.Len(),
		"retry_count", cfg.BookingRetryCount,
	)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewBookingHandler(bookingService, cfg.Log),
		app.WithAuthentication(auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)),
		app.WithShutdownHook(func(context.Context) {
			cancel()
			if consumer != nil {
				if err := consumer.Close(); err != nil {
					cfg.Log.Error("Failed to close station event consumer", "error", err)
				}
			}
			if err := publisher.Close(); err != nil {
				cfg.Log.Error("Failed to close event publisher", "error", err)
			}
		}),
	)
	serverApp.Run()
}

func initKafka(ctx context.Context, cfg *config.Config, syncer *stationsync.Syncer) (kafka.EventPublisher, *kafka.Consumer) {
	kafkaCfg, err := kafkaconfig.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	publisher, err := kafkamw.NewPublisher(kafkaCfg, kafkaCfg.BookingTopic, ServiceName, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create booking event publisher", "error", err)
	}

	consumer, err := kafkamw.NewConsumer(kafkaCfg, kafkaCfg.StationTopic, kafkaCfg.ConsumerGroup, syncer.HandleStationEvent, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create station event consumer", "error", err)
	}
	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			cfg.Log.Error("Station event consumer stopped", "error", err)
		}
	}()
	return publisher, consumer
}
