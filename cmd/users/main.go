package main

import (
	"evcharge/internal/users/handler"
	"evcharge/internal/users/repository"
	"evcharge/internal/users/service"
	"evcharge/internal/users/validator"
	"evcharge/pkg/app"
	"evcharge/pkg/auth"
	"evcharge/pkg/config"
)

const ServiceName = "users"

func main() {
	cfg := config.Load(ServiceName)
	if err := cfg.ValidateAuth(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Users service")
	userService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewUserHandler(userService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.UserService {
	userValidator := validator.NewUserValidator(cfg.Log)
	userRepo := repository.NewMongoUserRepository(cfg)
	userService := service.NewUserService(
		userRepo,
		userValidator,
		auth.NewBcryptHasher(cfg.BcryptCost),
		auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL),
		cfg,
	)

	cfg.Log.Info("User service initialized", "database", cfg.MongoDatabaseName)
	return userService
}
