package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"
	EnvEnvFile  = "ENV_FILE"

	EnvRateLimitRPS   = "RATE_LIMIT_RPS"
	EnvRateLimitBurst = "RATE_LIMIT_BURST"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvJWTSecret  = "JWT_SECRET"
	EnvJWTTTL     = "JWT_TTL"
	EnvBcryptCost = "BCRYPT_COST"

	EnvBookingRetryCount    = "BOOKING_RETRY_COUNT"
	EnvMaxSlotDuration      = "MAX_SLOT_DURATION"
	EnvMaxStationDistanceKm = "MAX_STATION_DISTANCE_KM"
	EnvLedgerWaitTimeout    = "LEDGER_WAIT_TIMEOUT"
	EnvStationRefresh       = "STATION_REFRESH_INTERVAL"

	EnvKafkaEnabled = "KAFKA_ENABLED"
)
