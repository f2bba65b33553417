package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "courtside"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultCatalogBaseURL = "http://localhost:8081"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// A pending booking keeps its slot for this long before the sweeper
	// releases it.
	DefaultHoldWindow    = 10 * time.Minute
	DefaultSweepInterval = 45 * time.Second
	DefaultSlotLockTTL   = 10 * time.Second

	DefaultDayStart = "06:00"
	DefaultDayEnd   = "23:00"

	DefaultPromoPerUserCap = 1

	DefaultPaginationLimit = 100
)
