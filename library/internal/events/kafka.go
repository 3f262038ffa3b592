package events

import (
	"context"

	"github.com/Astemirdum/perpustakaan/pkg/circuit_breaker"
	"github.com/IBM/sarama"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigFastest

// KafkaPublisher writes events to a topic keyed by book id, so all events of
// one book land on one partition in order.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	cb       circuit_breaker.CircuitBreaker
	log      *zap.Logger
}

func NewKafkaPublisher(producer sarama.SyncProducer, topic string, cb circuit_breaker.CircuitBreaker, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		cb:       cb,
		log:      log.Named("events"),
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(e.BookID),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(e.Type)},
		},
	}
	err = p.cb.Call(func() error {
		_, _, err := p.producer.SendMessage(msg)
		return err
	})
	if err != nil {
		return errors.Wrapf(err, "send %s event", e.Type)
	}
	p.log.Debug("event sent", zap.String("type", string(e.Type)), zap.String("borrowId", e.BorrowID))
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
