package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"volleyball-live-system/logger"
)

// Publisher delivers live events after the change behind them is committed.
type Publisher interface {
	Publish(ctx context.Context, event LiveEvent) error
	Close()
}

// Config holds the NATS connection settings.
type Config struct {
	URL            string
	SubjectPrefix  string
	ConnectionName string
	MaxReconnects  int
	ReconnectWait  time.Duration
}

// Conn is the part of *nats.Conn the publisher uses.
type Conn interface {
	Publish(subject string, data []byte) error
	Close()
}

type natsPublisher struct {
	conn   Conn
	prefix string
}

// NewPublisher connects to NATS. An empty URL yields a no-op publisher.
func NewPublisher(cfg Config) (Publisher, error) {
	if cfg.URL == "" {
		logger.Info("NATS url not configured, live events are not published")
		return NoopPublisher{}, nil
	}

	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.ConnectionName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Error(err, zap.String("message", "Disconnected from NATS"))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return NewConnPublisher(nc, cfg.SubjectPrefix), nil
}

// NewConnPublisher publishes over an existing connection.
func NewConnPublisher(conn Conn, prefix string) Publisher {
	if prefix == "" {
		prefix = "volleyball"
	}
	return &natsPublisher{conn: conn, prefix: prefix}
}

func (p *natsPublisher) Publish(ctx context.Context, event LiveEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal live event: %w", err)
	}

	subject := Subject(p.prefix, event)
	logger.DebugCtx(ctx, "Publishing live event", zap.String("subject", subject))

	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	return nil
}

func (p *natsPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

// Subject builds "<prefix>.matches.<match_id>.<kind>".
func Subject(prefix string, event LiveEvent) string {
	return fmt.Sprintf("%s.matches.%s.%s", prefix, event.MatchID, event.Kind)
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, LiveEvent) error { return nil }

func (NoopPublisher) Close() {}
