package config

import (
	"fmt"
	"time"
)

// Event transports.
const (
	TransportNone  = "none"
	TransportNATS  = "nats"
	TransportKafka = "kafka"
)

// PortalConfig extends BaseConfig with the moderation portal settings
type PortalConfig struct {
	BaseConfig `koanf:",squash"`
	Cache      CacheSettings      `koanf:"cache"`
	Moderation ModerationSettings `koanf:"moderation"`
	Events     EventSettings      `koanf:"events"`
}

// CacheSettings holds entry lifetimes per namespace family
type CacheSettings struct {
	ReferenceTTL    time.Duration `koanf:"reference_ttl"`
	UserProfileTTL  time.Duration `koanf:"user_profile_ttl"`
	DashboardTTL    time.Duration `koanf:"dashboard_ttl"`
	FeedPageTTL     time.Duration `koanf:"feed_page_ttl"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// ModerationSettings controls bulk moderation
type ModerationSettings struct {
	BulkConcurrency     int    `koanf:"bulk_concurrency"`
	MaxBulkSize         int    `koanf:"max_bulk_size"`
	DefaultRejectReason string `koanf:"default_reject_reason"`
}

// EventSettings selects where domain events are forwarded
type EventSettings struct {
	Transport      string        `koanf:"transport"` // none, nats, kafka
	PublishTimeout time.Duration `koanf:"publish_timeout"`
	NATS           NATSSettings  `koanf:"nats"`
	Kafka          KafkaSettings `koanf:"kafka"`
}

// NATSSettings contains the JetStream connection settings
type NATSSettings struct {
	URL           string        `koanf:"url"`
	ClientName    string        `koanf:"client_name"`
	Stream        string        `koanf:"stream"`
	SubjectPrefix string        `koanf:"subject_prefix"`
	MaxReconnect  int           `koanf:"max_reconnect"`
	ReconnectWait time.Duration `koanf:"reconnect_wait"`
}

// KafkaSettings contains the producer settings
type KafkaSettings struct {
	Brokers  []string `koanf:"brokers"`
	Topic    string   `koanf:"topic"`
	ClientID string   `koanf:"client_id"`
}

// Validate validates the portal configuration
func (c *PortalConfig) Validate() error {
	if err := c.BaseConfig.Validate(); err != nil {
		return err
	}
	for name, ttl := range map[string]time.Duration{
		"reference":    c.Cache.ReferenceTTL,
		"user profile": c.Cache.UserProfileTTL,
		"dashboard":    c.Cache.DashboardTTL,
		"feed page":    c.Cache.FeedPageTTL,
	} {
		if ttl <= 0 {
			return fmt.Errorf("%s cache ttl must be positive", name)
		}
	}
	if c.Moderation.BulkConcurrency < 1 {
		return fmt.Errorf("bulk concurrency must be at least 1")
	}
	if c.Moderation.MaxBulkSize < 1 {
		return fmt.Errorf("max bulk size must be at least 1")
	}
	if c.Moderation.DefaultRejectReason == "" {
		return fmt.Errorf("default reject reason is required")
	}
	switch c.Events.Transport {
	case TransportNone, "":
	case TransportNATS:
		if c.Events.NATS.URL == "" {
			return fmt.Errorf("nats url is required when events.transport is nats")
		}
	case TransportKafka:
		if len(c.Events.Kafka.Brokers) == 0 || c.Events.Kafka.Topic == "" {
			return fmt.Errorf("kafka brokers and topic are required when events.transport is kafka")
		}
	default:
		return fmt.Errorf("unsupported event transport: %q", c.Events.Transport)
	}
	return nil
}

// GetDefaultPortalConfig returns default portal configuration
func GetDefaultPortalConfig() *PortalConfig {
	base := GetDefaults()
	base.Service.Name = "portal"

	return &PortalConfig{
		BaseConfig: *base,
		Cache: CacheSettings{
			ReferenceTTL:    DefaultReferenceTTL,
			UserProfileTTL:  DefaultUserProfileTTL,
			DashboardTTL:    DefaultDashboardTTL,
			FeedPageTTL:     DefaultFeedPageTTL,
			CleanupInterval: DefaultCacheCleanup,
		},
		Moderation: ModerationSettings{
			BulkConcurrency:     DefaultBulkConcurrency,
			MaxBulkSize:         DefaultMaxBulkSize,
			DefaultRejectReason: DefaultRejectReason,
		},
		Events: EventSettings{
			Transport:      TransportNone,
			PublishTimeout: DefaultPublishTimeout,
			NATS: NATSSettings{
				URL:           DefaultNATSURL,
				ClientName:    "classifieds-portal",
				Stream:        "CLASSIFIEDS",
				SubjectPrefix: "classifieds",
				MaxReconnect:  DefaultNATSReconnects,
				ReconnectWait: DefaultNATSReconnectIn,
			},
			Kafka: KafkaSettings{
				Brokers:  []string{"localhost:9092"},
				Topic:    DefaultKafkaTopic,
				ClientID: "classifieds-portal",
			},
		},
	}
}
