package main

import (
	"context"

	"evcharge/internal/stations/handler"
	"evcharge/internal/stations/repository"
	"evcharge/internal/stations/service"
	"evcharge/internal/stations/validator"
	"evcharge/pkg/app"
	"evcharge/pkg/config"
	"evcharge/pkg/kafka"
	"evcharge/pkg/kafka/kafkaconfig"
	"evcharge/pkg/kafka/kafkamw"
)

const ServiceName = "stations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Stations service")
	publisher := initPublisher(cfg)
	stationService := initServices(cfg, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewStationHandler(stationService, cfg.Log),
		app.WithShutdownHook(func(context.Context) {
			if err := publisher.Close(); err != nil {
				cfg.Log.Error("Failed to close event publisher", "error", err)
			}
		}),
	)
	serverApp.Run()
}

func initPublisher(cfg *config.Config) kafka.EventPublisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, station events are not published")
		return kafka.NoopPublisher{}
	}
	kafkaCfg, err := kafkaconfig.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	publisher, err := kafkamw.NewPublisher(kafkaCfg, kafkaCfg.StationTopic, ServiceName, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create station event publisher", "error", err)
	}
	return publisher
}

func initServices(cfg *config.Config, publisher kafka.EventPublisher) service.StationService {
	stationValidator := validator.NewStationValidator(cfg.Log)
	stationRepo := repository.NewMongoStationRepository(cfg)
	stationService := service.NewStationService(
		stationRepo,
		stationValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Station service initialized", "database", cfg.MongoDatabaseName)
	return stationService
}
