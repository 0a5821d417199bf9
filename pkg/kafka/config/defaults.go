package kafka_config

import "time"

const (
	DefaultKafkaBrokers           = "localhost:9092"
	DefaultAllowAutoTopicCreation = false

	// Booking events are small and rare, so the producer flushes almost
	// immediately and waits for every in-sync replica.
	DefaultProducerMaxAttempts  = 3
	DefaultProducerBatchTimeout = 10 * time.Millisecond
	DefaultProducerRequireAcks  = -1
	DefaultProducerCompression  = "snappy"
	DefaultProducerAsync        = false

	// A new notifier group starts from the oldest retained event so no
	// booking confirmation is skipped on first deploy.
	DefaultConsumerStartOffset       = -2
	DefaultConsumerMinBytes          = 1
	DefaultConsumerMaxBytes          = 1 << 20
	DefaultConsumerMaxWait           = 500 * time.Millisecond
	DefaultConsumerCommitInterval    = time.Second
	DefaultConsumerHeartbeatInterval = 3 * time.Second
	DefaultConsumerSessionTimeout    = 10 * time.Second
	DefaultConsumerRebalanceTimeout  = 30 * time.Second
	DefaultConsumerMaxRetries        = 3
	DefaultConsumerRetryBackoff      = 200 * time.Millisecond
)

var validCompressions = []string{"none", "gzip", "snappy", "lz4", "zstd"}
