package ingest

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/marekkolman/rates-engine/internal/store"
	"github.com/marekkolman/rates-engine/pkg/metrics"
	"github.com/marekkolman/rates-engine/pkg/models"
	"github.com/marekkolman/rates-engine/pkg/utils/errors"
	"github.com/marekkolman/rates-engine/pkg/utils/logger"
)

// Config holds the Kafka connection settings for the quote feed.
type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// Consumer reads quote messages off the feed topic and applies them to the
// quote store. Malformed messages are logged and skipped, not fatal.
type Consumer struct {
	reader   *kafka.Reader
	quotes   *store.QuoteStore
	recorder *metrics.Recorder
	log      *logger.Logger
}

// NewConsumer creates a feed consumer in the given consumer group.
func NewConsumer(cfg Config, quotes *store.QuoteStore, recorder *metrics.Recorder) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.InvalidArgument("feed consumer needs at least one broker")
	}
	if cfg.Topic == "" {
		return nil, errors.InvalidArgument("feed consumer needs a topic")
	}
	if quotes == nil {
		return nil, errors.InvalidArgument("feed consumer needs a quote store")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		MinBytes:       1,
		MaxBytes:       1 << 20,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader:   reader,
		quotes:   quotes,
		recorder: recorder,
		log:      logger.GetLogger("ingest.consumer"),
	}, nil
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.Infof("Starting quote feed consumer on topic %s", c.reader.Config().Topic)

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.log.Info("Quote feed consumer shutting down")
				return nil
			}
			return errors.Wrap(err, "reading feed message")
		}
		c.handle(msg)
	}
}

func (c *Consumer) handle(msg kafka.Message) {
	var quote models.Quote
	if err := json.Unmarshal(msg.Value, &quote); err != nil {
		c.log.Warnf("Skipping malformed quote at offset %d: %v", msg.Offset, err)
		return
	}
	if quote.Timestamp.IsZero() {
		quote.Timestamp = msg.Time
	}

	if err := c.quotes.Apply(quote); err != nil {
		c.log.Warnf("Skipping invalid quote %s/%s: %v", quote.Instrument, quote.Tenor, err)
		return
	}
	c.recorder.RecordQuoteUpdate(quote.Instrument, time.Since(quote.Timestamp))
}

// Close releases the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
