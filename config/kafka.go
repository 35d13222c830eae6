package config

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

var Kafka *KafkaClient

// KafkaClient publishes engine events and consumes order messages. Topics
// are picked per message, one writer serves them all.
type KafkaClient struct {
	writer *kafka.Writer
}

func NewKafkaService() error {
	brokers := strings.Split(os.Getenv("KAFKA_BROKERS"), ",")

	Kafka = &KafkaClient{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			RequiredAcks: kafka.RequireAll,
			Async:        false,
			BatchTimeout: 10 * time.Millisecond,
		},
	}

	return nil
}

func (c *KafkaClient) Publish(topic string, key, payload []byte) error {
	return c.writer.WriteMessages(context.Background(), kafka.Message{
		Topic: topic,
		Key:   key,
		Value: payload,
	})
}

func (c *KafkaClient) NewReader(topic, group string) *kafka.Reader {
	brokers := strings.Split(os.Getenv("KAFKA_BROKERS"), ",")

	return kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   topic,
		GroupID: group,
	})
}

func (c *KafkaClient) Close() error {
	return c.writer.Close()
}
