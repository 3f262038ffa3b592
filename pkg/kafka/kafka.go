package kafka

import (
	"github.com/IBM/sarama"
)

const LedgerTopic = "library.ledger"

type Config struct {
	Enabled bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	Addrs   []string `envconfig:"KAFKA_ADDRS" default:"localhost:9092"`
	Topic   string   `envconfig:"KAFKA_LEDGER_TOPIC" default:"library.ledger"`
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true
	defaultCfg.Producer.Partitioner = sarama.NewHashPartitioner

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}
