package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"github.com/Atomized-titan/qri/pkg/log"
)

// channelToTopic converts a Redis-style channel to a Kafka topic name.
//
//	"qri:issued" → "qri-issued"
func channelToTopic(channel string) (string, error) {
	if channel == "" {
		return "", fmt.Errorf("empty channel")
	}
	topic := strings.NewReplacer(":", "-", "_", "-").Replace(channel)
	return topic, nil
}

// KafkaPublisher implements Publisher using Apache Kafka. Event keys become
// message keys.
type KafkaPublisher struct {
	producer *kafka.Producer
	config   KafkaConfig
	doneCh   chan struct{}
}

// NewKafkaPublisher creates a Kafka producer and makes sure the topic for
// channel exists.
func NewKafkaPublisher(cfg KafkaConfig, channel string) (*KafkaPublisher, error) {
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": cfg.Brokers,
		"acks":              "1",
		"linger.ms":         5,
		"compression.type":  "snappy",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	kp := &KafkaPublisher{
		producer: p,
		config:   cfg,
		doneCh:   make(chan struct{}),
	}

	go kp.deliveryReportHandler()

	if topic, err := channelToTopic(channel); err == nil {
		if err := kp.ensureTopic(topic); err != nil {
			l := log.L()
			l.Warn().Err(err).Str("topic", topic).Msg("failed to ensure kafka topic (may already exist)")
		}
	}

	return kp, nil
}

// ensureTopic creates the topic if it doesn't exist.
func (k *KafkaPublisher) ensureTopic(topic string) error {
	admin, err := kafka.NewAdminClientFromProducer(k.producer)
	if err != nil {
		return fmt.Errorf("failed to create admin client: %w", err)
	}
	defer admin.Close()

	partitions := k.config.Partitions
	if partitions <= 0 {
		partitions = 4
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	results, err := admin.CreateTopics(ctx, []kafka.TopicSpecification{{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: 1,
	}})
	if err != nil {
		return fmt.Errorf("failed to create topics: %w", err)
	}

	for _, r := range results {
		if r.Error.Code() != kafka.ErrNoError && r.Error.Code() != kafka.ErrTopicAlreadyExists {
			return fmt.Errorf("failed to create topic %s: %v", r.Topic, r.Error)
		}
	}

	return nil
}

// deliveryReportHandler processes delivery reports from the producer.
func (k *KafkaPublisher) deliveryReportHandler() {
	l := log.L()
	for e := range k.producer.Events() {
		switch ev := e.(type) {
		case *kafka.Message:
			if ev.TopicPartition.Error != nil {
				l.Warn().Err(ev.TopicPartition.Error).Msg("kafka delivery failed")
			}
		case kafka.Error:
			l.Warn().Err(ev).Bool("fatal", ev.IsFatal()).Msg("kafka producer error")
		}
	}
	close(k.doneCh)
}

// Publish produces the event to the topic derived from channel.
func (k *KafkaPublisher) Publish(ctx context.Context, channel string, event *Event) error {
	topic, err := channelToTopic(channel)
	if err != nil {
		return fmt.Errorf("failed to parse channel: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = k.producer.Produce(&kafka.Message{
		TopicPartition: kafka.TopicPartition{
			Topic:     &topic,
			Partition: kafka.PartitionAny,
		},
		Key:   []byte(event.Key),
		Value: data,
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to produce message: %w", err)
	}

	return nil
}

// Close flushes pending messages and closes the producer.
func (k *KafkaPublisher) Close() error {
	k.producer.Flush(5000)
	k.producer.Close()
	<-k.doneCh
	return nil
}
