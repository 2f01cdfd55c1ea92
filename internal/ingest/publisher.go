package ingest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/marekkolman/rates-engine/pkg/models"
	"github.com/marekkolman/rates-engine/pkg/utils/errors"
	"github.com/marekkolman/rates-engine/pkg/utils/logger"
)

// Publisher writes quote messages onto the feed topic, keyed by instrument
// so a consumer group preserves per-instrument ordering.
type Publisher struct {
	writer *kafka.Writer
	log    *logger.Logger
}

func NewPublisher(cfg Config) (*Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.InvalidArgument("feed publisher needs at least one broker")
	}
	if cfg.Topic == "" {
		return nil, errors.InvalidArgument("feed publisher needs a topic")
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}

	return &Publisher{
		writer: writer,
		log:    logger.GetLogger("ingest.publisher"),
	}, nil
}

// Publish sends one quote to the feed topic.
func (p *Publisher) Publish(ctx context.Context, quote models.Quote) error {
	if quote.Instrument == "" || quote.Tenor == "" {
		return errors.InvalidArgument("quote needs instrument and tenor")
	}
	if quote.Timestamp.IsZero() {
		quote.Timestamp = time.Now().UTC()
	}

	value, err := json.Marshal(quote)
	if err != nil {
		return errors.Wrap(err, "marshalling quote")
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(quote.Instrument),
		Value: value,
	})
}

// Close flushes and releases the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
