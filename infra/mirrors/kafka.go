package mirrors

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// BlobMirrorKafka publishes payloads keyed by item id. Deletes are tombstones,
// so a compacted topic holds the latest copy of every live item.
type BlobMirrorKafka struct {
	writer MessageWriter
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

func NewBlobMirrorKafka(writer MessageWriter) *BlobMirrorKafka {
	return &BlobMirrorKafka{writer: writer}
}

func (m *BlobMirrorKafka) PutBlob(ctx context.Context, itemId string, payload []byte) error {
	if err := m.writer.WriteMessages(ctx, kafka.Message{Key: []byte(itemId), Value: payload}); err != nil {
		return fmt.Errorf("kafka publish %s: %w", itemId, err)
	}
	return nil
}

func (m *BlobMirrorKafka) DeleteBlob(ctx context.Context, itemId string) error {
	if err := m.writer.WriteMessages(ctx, kafka.Message{Key: []byte(itemId)}); err != nil {
		return fmt.Errorf("kafka tombstone %s: %w", itemId, err)
	}
	return nil
}

func (m *BlobMirrorKafka) Close() error {
	return m.writer.Close()
}
