package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/lochan-kannan-293/nsg-surveillance-system/internal/domain/entity"
)

// HeartbeatProducer publishes per-job progress events to the heartbeat
// topic, keyed by job id so one job's heartbeats stay ordered.
type HeartbeatProducer struct {
	producer sarama.SyncProducer
	topic    string
}

func NewHeartbeatProducer(brokers []string, topic string) (*HeartbeatProducer, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForLocal

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}

	return &HeartbeatProducer{producer: producer, topic: topic}, nil
}

func (p *HeartbeatProducer) PublishHeartbeat(_ context.Context, hb entity.Heartbeat) error {
	payload, err := json.Marshal(hb)
	if err != nil {
		return fmt.Errorf("marshal heartbeat: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(hb.JobID.String()),
		Value: sarama.ByteEncoder(payload),
	}

	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("send heartbeat: %w", err)
	}
	return nil
}

func (p *HeartbeatProducer) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("close kafka producer: %w", err)
	}
	return nil
}
