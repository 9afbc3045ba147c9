package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/platform/logger"
	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("marketplace-service/nats-publisher")

const (
	connectTimeout = 10 * time.Second
	maxReconnects  = 5
	reconnectWait  = 2 * time.Second
)

// msgSender is the part of *nats.Conn the publisher needs.
type msgSender interface {
	PublishMsg(m *nats.Msg) error
}

type Publisher struct {
	conn   *nats.Conn
	sender msgSender
	logger *logger.Logger
}

func NewPublisher(url string, log *logger.Logger, appName string) (*Publisher, error) {
	log.Info("NATS Publisher: connecting...", zap.String("url", url))

	opts := []nats.Option{
		nats.Name(fmt.Sprintf("%s NATS Publisher", appName)),
		nats.Timeout(connectTimeout),
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			log.Error("NATS error", zap.String("subject", subject), zap.Error(err))
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Info("NATS connection closed")
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	}

	conn, err := nats.Connect(url, opts...)
	if err != nil {
		log.Error("NATS Publisher: failed to connect", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	log.Info("NATS Publisher: successfully connected", zap.String("url", conn.ConnectedUrl()))

	return &Publisher{
		conn:   conn,
		sender: conn,
		logger: log.Named("NATSPublisher"),
	}, nil
}

// Publish sends data as JSON with the trace context in the message headers.
func (p *Publisher) Publish(ctx context.Context, subject string, data interface{}) error {
	ctx, span := tracer.Start(ctx, "NATS.Publish."+subject)
	defer span.End()
	span.SetAttributes(attribute.String("messaging.destination", subject))

	jsonData, err := json.Marshal(data)
	if err != nil {
		p.logger.Error("NATS Publisher: failed to marshal data to JSON", zap.String("subject", subject), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "marshal failed")
		return fmt.Errorf("failed to marshal data for subject %s: %w", subject, err)
	}

	msg := nats.NewMsg(subject)
	msg.Data = jsonData
	msg.Header = make(nats.Header)
	otel.GetTextMapPropagator().Inject(ctx, NATSHeaderCarrier(msg.Header))

	if err := p.sender.PublishMsg(msg); err != nil {
		p.logger.Error("NATS Publisher: failed to publish message", zap.String("subject", subject), zap.Error(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		return fmt.Errorf("failed to publish message to subject %s: %w", subject, err)
	}

	p.logger.Debug("NATS Publisher: message published", zap.String("subject", subject), zap.Int("data_size_bytes", len(jsonData)))
	return nil
}

type NATSHeaderCarrier nats.Header

func (c NATSHeaderCarrier) Get(key string) string {
	return nats.Header(c).Get(key)
}

func (c NATSHeaderCarrier) Set(key string, value string) {
	nats.Header(c).Set(key, value)
}

func (c NATSHeaderCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if p.conn == nil || p.conn.IsClosed() {
		return
	}
	p.logger.Info("NATS Publisher: draining connection...")
	if err := p.conn.Drain(); err != nil {
		p.logger.Error("NATS Publisher: failed to drain connection", zap.Error(err))
		p.conn.Close()
	}
}
