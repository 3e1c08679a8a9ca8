package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "EVproject"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "3000"
	DefaultLogLevel = "info"
	DefaultEnvFile  = ".env"

	DefaultRateLimitRPS   = 5.0
	DefaultRateLimitBurst = 10

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultJWTTTL     = 24 * time.Hour
	DefaultBcryptCost = 10

	DefaultBookingRetryCount    = 3
	DefaultMaxSlotDuration      = 4 * time.Hour
	DefaultMaxStationDistanceKm = 50.0
	DefaultLedgerWaitTimeout    = 2 * time.Second
	DefaultStationRefresh       = 30 * time.Second

	DefaultPageSize        = 50
	DefaultPaginationLimit = 100
)
