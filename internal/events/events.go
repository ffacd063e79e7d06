// Package events publishes download notifications to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
)

// DownloadCompleted is emitted once per successful run.
type DownloadCompleted struct {
	Key            string    `json:"key"`
	ReturnMode     string    `json:"return_mode"`
	StartDate      string    `json:"start_date"`
	CompletionDate string    `json:"completion_date"`
	CRS            string    `json:"crs"`
	Geometries     int       `json:"geometries"`
	Products       int       `json:"products"`
	Files          []string  `json:"files,omitempty"`
	TS             time.Time `json:"ts"`
}

type Publisher interface {
	Publish(ctx context.Context, ev DownloadCompleted) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, DownloadCompleted) error { return nil }
func (Nop) Close() error                                     { return nil }

type KafkaPublisher struct {
	topic string
	prod  sarama.SyncProducer
}

func NewKafka(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("events: no kafka brokers configured")
	}
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Retry.Max = 0

	prod, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("events: create sync producer: %w", err)
	}
	return NewWithProducer(prod, topic), nil
}

func NewWithProducer(prod sarama.SyncProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{topic: topic, prod: prod}
}

// Publish sends ev once; the caller decides whether a failure matters.
func (p *KafkaPublisher) Publish(ctx context.Context, ev DownloadCompleted) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ev.TS.IsZero() {
		ev.TS = time.Now().UTC()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("events: marshal: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.ByteEncoder(b),
	}
	if ev.Key != "" {
		msg.Key = sarama.StringEncoder(ev.Key)
	}
	if _, _, err := p.prod.SendMessage(msg); err != nil {
		return fmt.Errorf("events: send: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	if err := p.prod.Close(); err != nil {
		return fmt.Errorf("events: close producer: %w", err)
	}
	return nil
}
