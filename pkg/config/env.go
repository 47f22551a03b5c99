package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvMaxStayDays        = "MAX_STAY_DAYS"
	EnvAdmissionLockTTL   = "ADMISSION_LOCK_TTL"
	EnvLockAcquireRetries = "LOCK_ACQUIRE_RETRIES"
	EnvLockRetryBackoff   = "LOCK_RETRY_BACKOFF"
	EnvTxMaxRetries       = "TX_MAX_RETRIES"
	EnvTxRetryBackoff     = "TX_RETRY_BACKOFF"
	EnvRoomCacheTTL       = "ROOM_CACHE_TTL"

	EnvKafkaBrokers     = "KAFKA_BROKERS"
	EnvEventsTopic      = "RESERVATION_EVENTS_TOPIC"
	EnvKafkaBatchTimout = "KAFKA_BATCH_TIMEOUT"
)
