// Package kafka provides a click queue backed by a Kafka topic, for
// deployments that already run a broker instead of Redis.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Config struct {
	Brokers []string
	Topic   string
	GroupID string
}

// ClickQueue writes click payloads to a single topic and reads them back
// through a consumer group. The queue key passed by callers is ignored; the
// topic is fixed at construction.
type ClickQueue struct {
	writer *kafka.Writer
	reader *kafka.Reader
	topic  string
}

func NewClickQueue(cfg Config) (*ClickQueue, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers must not be empty")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, errors.New("kafka topic must not be empty")
	}
	if strings.TrimSpace(cfg.GroupID) == "" {
		return nil, errors.New("kafka group id must not be empty")
	}

	return &ClickQueue{
		topic: cfg.Topic,
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  cfg.Topic,
			Balancer:               &kafka.LeastBytes{},
			BatchTimeout:           10 * time.Millisecond,
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     cfg.Brokers,
			Topic:       cfg.Topic,
			GroupID:     cfg.GroupID,
			MinBytes:    1,
			MaxBytes:    10e6,
			MaxWait:     500 * time.Millisecond,
			StartOffset: kafka.FirstOffset,
		}),
	}, nil
}

func (q *ClickQueue) Push(ctx context.Context, _ string, payload []byte) error {
	if err := q.writer.WriteMessages(ctx, kafka.Message{Value: payload, Time: time.Now().UTC()}); err != nil {
		return fmt.Errorf("publish to %s: %w", q.topic, err)
	}
	return nil
}

// Trim is a no-op: the topic's retention policy bounds its size.
func (q *ClickQueue) Trim(context.Context, string, int64) error {
	return nil
}

// BlockingPop fetches the next message and commits it right away, so a
// message is delivered at most once, like BRPOP.
func (q *ClickQueue) BlockingPop(ctx context.Context, _ string, timeout time.Duration) ([]byte, bool, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msg, err := q.reader.FetchMessage(fetchCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("fetch from %s: %w", q.topic, err)
	}

	if err := q.reader.CommitMessages(ctx, msg); err != nil {
		logger.Warn("failed to commit kafka offset",
			zap.Error(err),
			zap.String("topic", msg.Topic),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
		)
	}

	return msg.Value, true, nil
}

func (q *ClickQueue) Close() error {
	return errors.Join(q.writer.Close(), q.reader.Close())
}
