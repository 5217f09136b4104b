// Package events publishes issue lifecycle events to NATS JetStream.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/devtrack-ai/issue-platform/pkg/logger"
	"github.com/devtrack-ai/issue-platform/pkg/metrics"
)

const (
	// StreamName is the name of the issue events stream.
	StreamName = "ISSUES"

	// SubjectPrefix is the prefix for all issue event subjects.
	SubjectPrefix = "issues.events"
)

// Type is the kind of issue lifecycle event.
type Type string

const (
	TypeIssueCreated Type = "created"
	TypeIssueUpdated Type = "updated"
	TypeIssueDeleted Type = "deleted"
	TypeCommentAdded Type = "commented"
)

// Event is the envelope published for every issue change.
type Event struct {
	ID         string      `json:"id"`
	Type       Type        `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data,omitempty"`
}

// Publisher emits issue lifecycle events. Publishing is best-effort: a
// broker outage must never fail the originating write.
type Publisher interface {
	Publish(ctx context.Context, t Type, data interface{})
	Close()
}

// Noop is a Publisher that discards all events. Used when no broker is
// configured.
type Noop struct{}

func (Noop) Publish(context.Context, Type, interface{}) {}
func (Noop) Close()                                     {}

// Config holds NATS connection configuration.
type Config struct {
	URL   string
	Token string
}

// NATSPublisher publishes events to a JetStream stream.
type NATSPublisher struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	logger *logger.Logger
}

// Connect establishes a connection to the NATS server and ensures the
// issue events stream exists.
func Connect(ctx context.Context, cfg Config, log *logger.Logger) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	}

	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	p := &NATSPublisher{conn: nc, js: js, logger: log}
	if err := p.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, err
	}

	return p, nil
}

// ensureStream creates the issue events stream if it does not exist.
func (p *NATSPublisher) ensureStream(ctx context.Context) error {
	if _, err := p.js.Stream(ctx, StreamName); err == nil {
		return nil
	}

	_, err := p.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      30 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "Issue lifecycle events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// Publish emits one event. Failures are logged and counted, never returned.
func (p *NATSPublisher) Publish(ctx context.Context, t Type, data interface{}) {
	event := Event{
		ID:         uuid.New().String(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal event", zap.String("type", string(t)), zap.Error(err))
		metrics.IssueEventsPublished.WithLabelValues(string(t), "error").Inc()
		return
	}

	subject := fmt.Sprintf("%s.%s", SubjectPrefix, t)
	if _, err := p.js.Publish(ctx, subject, payload); err != nil {
		p.logger.Error("failed to publish event", zap.String("subject", subject), zap.Error(err))
		metrics.IssueEventsPublished.WithLabelValues(string(t), "error").Inc()
		return
	}

	metrics.IssueEventsPublished.WithLabelValues(string(t), "success").Inc()
}

// Close closes the NATS connection.
func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

// IsConnected reports whether the NATS connection is up.
func (p *NATSPublisher) IsConnected() bool {
	return p.conn != nil && p.conn.IsConnected()
}
