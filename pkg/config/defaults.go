package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "roomly"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Longest admissible stay, in nights.
	DefaultMaxStayDays = 30

	// Advisory lock held per room during one admission attempt. The TTL
	// index on the lock collection reaps locks abandoned by a crashed
	// process.
	DefaultAdmissionLockTTL   = 10 * time.Second
	DefaultLockAcquireRetries = 3
	DefaultLockRetryBackoff   = 50 * time.Millisecond

	DefaultTxMaxRetries   = 3
	DefaultTxRetryBackoff = 25 * time.Millisecond

	DefaultRoomCacheTTL = 30 * time.Second

	DefaultKafkaBrokers      = ""
	DefaultEventsTopic       = "reservation-events"
	DefaultKafkaBatchTimeout = 100 * time.Millisecond

	DefaultPaginationLimit = 100
)
