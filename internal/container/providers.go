package container

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	accountdomain "github.com/narwhalmedia/classifieds/internal/account/domain"
	adminservice "github.com/narwhalmedia/classifieds/internal/admin/service"
	infraevents "github.com/narwhalmedia/classifieds/internal/infrastructure/events"
	"github.com/narwhalmedia/classifieds/internal/infrastructure/events/kafka"
	"github.com/narwhalmedia/classifieds/internal/infrastructure/events/nats"
	listingdomain "github.com/narwhalmedia/classifieds/internal/listing/domain"
	referencedomain "github.com/narwhalmedia/classifieds/internal/reference/domain"
	reportdomain "github.com/narwhalmedia/classifieds/internal/report/domain"
	"github.com/narwhalmedia/classifieds/pkg/cache"
	"github.com/narwhalmedia/classifieds/pkg/config"
	"github.com/narwhalmedia/classifieds/pkg/database"
	"github.com/narwhalmedia/classifieds/pkg/events"
	"github.com/narwhalmedia/classifieds/pkg/interfaces"
	"github.com/narwhalmedia/classifieds/pkg/pagination"
)

// ProvideDB opens the database and applies pending migrations.
func ProvideDB(cfg *config.PortalConfig, log interfaces.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewGormDB(cfg.Database.ToDatabaseConfig(), log)
	if err != nil {
		return nil, nil, err
	}
	if err := database.NewMigrator(db, log).Migrate(); err != nil {
		_ = database.Close(db)
		return nil, nil, err
	}

	cleanup := func() {
		if err := database.Close(db); err != nil {
			log.Error("Failed to close database", interfaces.Error(err))
		}
	}
	return db, cleanup, nil
}

// ProvideCache creates the process-wide reference cache.
func ProvideCache(cfg *config.PortalConfig, log interfaces.Logger) (*cache.ReferenceCache, func()) {
	c := cache.New(
		cache.WithCleanupInterval(cfg.Cache.CleanupInterval),
		cache.WithLogger(log),
	)
	cleanup := func() {
		stats := c.Stats()
		_ = c.Close()
		log.Info("Cache closed",
			interfaces.Int("entries", stats.Entries),
			interfaces.Int64("hits", stats.Hits),
			interfaces.Int64("misses", stats.Misses))
	}
	return c, cleanup
}

// ProvideTTLPolicy reads the cache lifetimes from config.
func ProvideTTLPolicy(cfg *config.PortalConfig) cache.TTLPolicy {
	return cfg.Cache.TTLPolicy()
}

// ProvidePaging builds the page size limits and, when a key is configured,
// the page token encoder.
func ProvidePaging(cfg *config.PortalConfig) (pagination.Policy, error) {
	policy := pagination.Policy{
		DefaultSize: cfg.Pagination.DefaultPageSize,
		MaxSize:     cfg.Pagination.MaxPageSize,
	}
	if cfg.Pagination.TokenKey == "" {
		return policy, nil
	}

	tokens, err := pagination.NewCursorEncoder([]byte(cfg.Pagination.TokenKey), cfg.Pagination.TokenMaxAge)
	if err != nil {
		return pagination.Policy{}, fmt.Errorf("page tokens: %w", err)
	}
	policy.Tokens = tokens
	return policy, nil
}

// ProvideEventBus creates the in-process bus. Cleanup waits for pending
// async deliveries.
func ProvideEventBus(log interfaces.Logger) (*events.InMemoryEventBus, func()) {
	bus := events.NewInMemoryEventBus(log)
	return bus, func() { _ = bus.Stop() }
}

// ForwardedEvents lists every event type sent to the external broker.
func ForwardedEvents() []string {
	types := make([]string, 0, len(listingdomain.AllPostEvents)+len(accountdomain.AllUserEvents)+len(reportdomain.AllReportEvents)+1)
	types = append(types, listingdomain.AllPostEvents...)
	types = append(types, accountdomain.AllUserEvents...)
	types = append(types, reportdomain.AllReportEvents...)
	return append(types, referencedomain.EventCategoryChanged)
}

// ProvideForwarder connects the configured transport and subscribes it to
// the bus. It returns nil when events.transport is none.
func ProvideForwarder(
	cfg *config.PortalConfig,
	bus *events.InMemoryEventBus,
	log interfaces.Logger,
) (*infraevents.Forwarder, func(), error) {
	var (
		sink    infraevents.Sink
		cleanup = func() {}
	)

	switch cfg.Events.Transport {
	case config.TransportNATS:
		client, closeClient, err := nats.NewClient(context.Background(), cfg.Events.NATS, log)
		if err != nil {
			return nil, nil, err
		}
		sink = nats.NewPublisher(client.JetStream(), cfg.Events.NATS.SubjectPrefix, log)
		cleanup = closeClient
	case config.TransportKafka:
		publisher, err := kafka.NewPublisher(cfg.Events.Kafka)
		if err != nil {
			return nil, nil, err
		}
		sink = publisher
		cleanup = func() {
			if err := publisher.Close(); err != nil {
				log.Error("Failed to close Kafka producer", interfaces.Error(err))
			}
		}
	default:
		log.Info("Event forwarding disabled")
		return nil, cleanup, nil
	}

	forwarder := infraevents.NewForwarder(sink, cfg.Events.PublishTimeout, log)
	if err := forwarder.Register(bus, ForwardedEvents()...); err != nil {
		cleanup()
		return nil, nil, err
	}
	return forwarder, cleanup, nil
}

// ProvideBulkCoordinator applies the moderation settings.
func ProvideBulkCoordinator(cfg *config.PortalConfig, log interfaces.Logger) *adminservice.BulkCoordinator {
	return adminservice.NewBulkCoordinator(cfg.Moderation.BulkConcurrency, cfg.Moderation.MaxBulkSize, log)
}

// ProvideAdminSettings collects the admin facade options.
func ProvideAdminSettings(cfg *config.PortalConfig, db *gorm.DB) adminservice.Settings {
	return adminservice.Settings{
		Service:             cfg.Service.Name,
		Version:             config.GetServiceVersion(&cfg.Service),
		DefaultRejectReason: cfg.Moderation.DefaultRejectReason,
		Ping: func(ctx context.Context) error {
			return database.Ping(ctx, db)
		},
	}
}
