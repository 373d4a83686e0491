package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/narwhalmedia/classifieds/pkg/config"
	"github.com/narwhalmedia/classifieds/pkg/interfaces"
)

// streamMaxAge bounds how long forwarded events stay in the stream.
const streamMaxAge = 7 * 24 * time.Hour

// Client wraps NATS and JetStream connections
type Client struct {
	nc       *nats.Conn
	js       jetstream.JetStream
	settings config.NATSSettings
	logger   interfaces.Logger
}

// NewClient connects to NATS and makes sure the event stream exists.
func NewClient(ctx context.Context, settings config.NATSSettings, logger interfaces.Logger) (*Client, func(), error) {
	opts := []nats.Option{
		nats.Name(settings.ClientName),
		nats.MaxReconnects(settings.MaxReconnect),
		nats.ReconnectWait(settings.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", interfaces.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("NATS reconnected", interfaces.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(settings.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	client := &Client{
		nc:       nc,
		js:       js,
		settings: settings,
		logger:   logger,
	}

	if err := client.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := nc.Drain(); err != nil {
			logger.Error("Failed to drain NATS connection", interfaces.Error(err))
		}
		nc.Close()
	}

	logger.Info("NATS client initialized",
		interfaces.String("url", settings.URL),
		interfaces.String("stream", settings.Stream))

	return client, cleanup, nil
}

// StreamConfig is the stream that receives every forwarded event.
func StreamConfig(settings config.NATSSettings) jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:        settings.Stream,
		Description: "Classified portal moderation events",
		Subjects:    []string{settings.SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      streamMaxAge,
		Replicas:    1,
		Storage:     jetstream.FileStorage,
		Discard:     jetstream.DiscardOld,
		// Matches the window used for WithMsgID deduplication.
		Duplicates: 2 * time.Minute,
		MaxMsgs:    -1,
		MaxBytes:   -1,
	}
}

func (c *Client) ensureStream(ctx context.Context) error {
	if _, err := c.js.CreateOrUpdateStream(ctx, StreamConfig(c.settings)); err != nil {
		return fmt.Errorf("failed to create %s stream: %w", c.settings.Stream, err)
	}
	return nil
}

// JetStream returns the JetStream context
func (c *Client) JetStream() jetstream.JetStream {
	return c.js
}

// Health checks the connection and the JetStream account.
func (c *Client) Health(ctx context.Context) error {
	if !c.nc.IsConnected() {
		return fmt.Errorf("NATS client is not connected")
	}
	if _, err := c.js.AccountInfo(ctx); err != nil {
		return fmt.Errorf("failed to get JetStream account info: %w", err)
	}
	return nil
}
