package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
)

func TestKafkaPublisher_SendsJSON(t *testing.T) {
	prod := mocks.NewSyncProducer(t, nil)
	prod.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var ev DownloadCompleted
		if err := json.Unmarshal(val, &ev); err != nil {
			return err
		}
		if ev.ReturnMode != "csv" || ev.Products != 3 || ev.TS.IsZero() {
			return errors.New("unexpected event payload")
		}
		return nil
	})

	p := NewWithProducer(prod, "awic-downloads")
	err := p.Publish(context.Background(), DownloadCompleted{Key: "k", ReturnMode: "csv", Products: 3})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func TestKafkaPublisher_SendFailure(t *testing.T) {
	prod := mocks.NewSyncProducer(t, nil)
	prod.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewWithProducer(prod, "awic-downloads")
	err := p.Publish(context.Background(), DownloadCompleted{ReturnMode: "raw"})
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("err=%v want ErrOutOfBrokers", err)
	}
	_ = p.Close()
}

func TestKafkaPublisher_CanceledContext(t *testing.T) {
	prod := mocks.NewSyncProducer(t, nil)
	p := NewWithProducer(prod, "awic-downloads")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Publish(ctx, DownloadCompleted{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v want context.Canceled", err)
	}
	_ = p.Close()
}

func TestNewKafka_RequiresBrokers(t *testing.T) {
	if _, err := NewKafka(nil, "t"); err == nil {
		t.Fatal("expected error without brokers")
	}
}

func TestNop(t *testing.T) {
	var p Publisher = Nop{}
	if err := p.Publish(context.Background(), DownloadCompleted{}); err != nil {
		t.Fatalf("Nop.Publish: %v", err)
	}
}
