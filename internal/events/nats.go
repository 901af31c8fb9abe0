package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dukerupert/haulfile/internal/domain"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// NATSConfig configures the NATS publisher.
type NATSConfig struct {
	URL           string
	SubjectPrefix string // e.g. "haulfile"; joined to subjects with a dot
	ClientName    string
	MaxReconnects int
	ReconnectWait time.Duration
}

// msgConn is the part of *nats.Conn the publisher needs.
type msgConn interface {
	PublishMsg(m *nats.Msg) error
	Drain() error
}

// NATSPublisher publishes JSON events on core NATS subjects.
type NATSPublisher struct {
	conn   msgConn
	prefix string
	logger zerolog.Logger
}

// NewNATSPublisher connects to the server at cfg.URL.
func NewNATSPublisher(cfg NATSConfig, logger zerolog.Logger) (*NATSPublisher, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("events: NATS URL is required")
	}
	if cfg.ClientName == "" {
		cfg.ClientName = "haulfile"
	}
	if cfg.ReconnectWait <= 0 {
		cfg.ReconnectWait = 2 * time.Second
	}
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = 60
	}

	log := logger.With().Str("component", "events").Logger()

	nc, err := nats.Connect(cfg.URL,
		nats.Name(cfg.ClientName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats disconnected")
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info().Str("url", c.ConnectedUrlRedacted()).Msg("nats reconnected")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error().Err(err).Msg("nats async error")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("events: connect to nats: %w", err)
	}

	return newNATSPublisher(nc, cfg.SubjectPrefix, log), nil
}

func newNATSPublisher(conn msgConn, prefix string, logger zerolog.Logger) *NATSPublisher {
	return &NATSPublisher{conn: conn, prefix: prefix, logger: logger}
}

// Publish encodes payload as JSON and sends it. The request ID travels in
// the X-Request-ID message header.
func (p *NATSPublisher) Publish(ctx context.Context, subject string, payload any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("events: encode %s: %w", subject, err)
	}

	msg := nats.NewMsg(p.subject(subject))
	msg.Data = data
	msg.Header.Set("Content-Type", "application/json")
	if requestID := domain.RequestIDFromContext(ctx); requestID != "" {
		msg.Header.Set("X-Request-ID", requestID)
	}

	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("events: publish %s: %w", msg.Subject, err)
	}

	p.logger.Debug().Str("subject", msg.Subject).Int("bytes", len(data)).Msg("event published")
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

func (p *NATSPublisher) subject(s string) string {
	if p.prefix == "" {
		return s
	}
	return p.prefix + "." + s
}
