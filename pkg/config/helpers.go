package config

import (
	"fmt"
	"os"

	gormlogger "gorm.io/gorm/logger"

	"github.com/narwhalmedia/classifieds/pkg/cache"
	"github.com/narwhalmedia/classifieds/pkg/database"
	"github.com/narwhalmedia/classifieds/pkg/logger"
)

// LoadServiceConfig is a generic helper to load service configuration
func LoadServiceConfig[T Config](serviceName string, cfg T) error {
	manager := NewManager(serviceName)
	return manager.LoadConfig(cfg)
}

// ToDatabaseConfig converts config to database package config
func (c DatabaseConfig) ToDatabaseConfig() *database.Config {
	if c.SSLMode == "" {
		c.SSLMode = "disable"
	}

	return &database.Config{
		Driver:          c.Driver,
		Host:            c.Host,
		Port:            c.Port,
		User:            c.User,
		Password:        c.Password,
		Database:        c.Database,
		SSLMode:         c.SSLMode,
		Path:            c.Path,
		MaxConnections:  c.MaxConnections,
		MinConnections:  c.MinConnections,
		MaxConnLifetime: c.MaxConnLifetime,
		MaxConnIdleTime: c.MaxConnIdleTime,
		SlowThreshold:   c.SlowThreshold,
		LogLevel:        parseGormLevel(c.LogLevel),
	}
}

func parseGormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// ToLoggerConfig converts config to logger package config
func (c LoggerConfig) ToLoggerConfig(svc ServiceConfig) *logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = c.Level
	cfg.Development = c.Development
	if c.Format != "" {
		cfg.Encoding = c.Format
	}
	if c.OutputPath != "" {
		cfg.OutputPaths = []string{c.OutputPath}
	}
	cfg.InitialFields = map[string]interface{}{
		"service": svc.Name,
		"version": GetServiceVersion(&svc),
	}
	return cfg
}

// TTLPolicy converts the cache settings to a cache.TTLPolicy
func (c CacheSettings) TTLPolicy() cache.TTLPolicy {
	return cache.TTLPolicy{
		Reference:   c.ReferenceTTL,
		UserProfile: c.UserProfileTTL,
		Dashboard:   c.DashboardTTL,
		FeedPage:    c.FeedPageTTL,
	}
}

// GetServiceVersion returns the service version from config or git
func GetServiceVersion(cfg *ServiceConfig) string {
	if cfg.Version != "" {
		return cfg.Version
	}

	// Try to get from environment
	if version := os.Getenv("SERVICE_VERSION"); version != "" {
		return version
	}

	// Default to dev
	return "dev"
}

// GetListenAddress returns the formatted listen address for HTTP server
func GetListenAddress(cfg *ServiceConfig) string {
	return fmt.Sprintf(":%d", cfg.Port)
}

// MustLoadServiceConfig loads config and panics on error (for main functions)
func MustLoadServiceConfig[T Config](serviceName string, cfg T) T {
	if err := LoadServiceConfig(serviceName, cfg); err != nil {
		panic(fmt.Sprintf("failed to load %s config: %v", serviceName, err))
	}
	return cfg
}
