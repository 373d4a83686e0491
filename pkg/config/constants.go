package config

import "time"

const (
	// Server defaults.
	DefaultHTTPPort        = 8080
	DefaultShutdownTimeout = 30 * time.Second

	// Database drivers.
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	// Database defaults.
	DefaultPostgresPort       = 5432
	DefaultMaxConnections     = 25
	DefaultMinConnections     = 5
	DefaultMaxConnIdleTime    = 30 * time.Minute
	DefaultSlowQueryThreshold = 200 * time.Millisecond

	// Pagination defaults.
	DefaultPageSize    = 20
	DefaultMaxPageSize = 100

	// Cache lifetimes per namespace family.
	DefaultReferenceTTL   = 60 * time.Minute
	DefaultUserProfileTTL = 30 * time.Minute
	DefaultDashboardTTL   = 5 * time.Minute
	DefaultFeedPageTTL    = 5 * time.Minute
	DefaultCacheCleanup   = 5 * time.Minute

	// Moderation defaults.
	DefaultBulkConcurrency = 4
	DefaultMaxBulkSize     = 500
	DefaultRejectReason    = "Rejected by moderator during bulk review"

	// Event transport defaults.
	DefaultNATSURL         = "nats://localhost:4222"
	DefaultKafkaTopic      = "classifieds.moderation"
	DefaultPublishTimeout  = 5 * time.Second
	DefaultNATSReconnects  = 10
	DefaultNATSReconnectIn = 2 * time.Second
)
