// Package kafka_config loads the broker settings shared by the booking event
// producer and the notifier consumer.
package kafka_config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"rentmate/pkg/logger"
)

type Config struct {
	Brokers []string

	// Lets writers create missing topics (local development only)
	AllowAutoTopicCreation bool

	Producer ProducerConfig
	Consumer ConsumerConfig
}

type ProducerConfig struct {
	MaxAttempts  int
	BatchTimeout time.Duration
	RequireAcks  int    // -1 = all, 0 = none, 1 = leader only
	Compression  string // none, gzip, snappy, lz4, zstd
	Async        bool
}

type ConsumerConfig struct {
	StartOffset       int64 // -1 = newest, -2 = oldest
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	CommitInterval    time.Duration
	HeartbeatInterval time.Duration
	SessionTimeout    time.Duration
	RebalanceTimeout  time.Duration
	MaxRetries        int
	RetryBackoff      time.Duration
}

// Load reads the Kafka settings from the environment. Unparsable values are
// reported together with the validation failures.
func Load() (*Config, error) {
	env := &envReader{}

	cfg := &Config{
		Brokers:                ParseBrokers(env.str(EnvKafkaBrokers, DefaultKafkaBrokers)),
		AllowAutoTopicCreation: env.boolean(EnvKafkaAllowAutoTopicCreation, DefaultAllowAutoTopicCreation),
		Producer: ProducerConfig{
			MaxAttempts:  env.integer(EnvKafkaProducerMaxAttempts, DefaultProducerMaxAttempts),
			BatchTimeout: env.duration(EnvKafkaProducerBatchTimeout, DefaultProducerBatchTimeout),
			RequireAcks:  env.integer(EnvKafkaProducerRequireAcks, DefaultProducerRequireAcks),
			Compression:  strings.ToLower(env.str(EnvKafkaProducerCompression, DefaultProducerCompression)),
			Async:        env.boolean(EnvKafkaProducerAsync, DefaultProducerAsync),
		},
		Consumer: ConsumerConfig{
			StartOffset:       int64(env.integer(EnvKafkaConsumerStartOffset, DefaultConsumerStartOffset)),
			MinBytes:          env.integer(EnvKafkaConsumerMinBytes, DefaultConsumerMinBytes),
			MaxBytes:          env.integer(EnvKafkaConsumerMaxBytes, DefaultConsumerMaxBytes),
			MaxWait:           env.duration(EnvKafkaConsumerMaxWait, DefaultConsumerMaxWait),
			CommitInterval:    env.duration(EnvKafkaConsumerCommitInterval, DefaultConsumerCommitInterval),
			HeartbeatInterval: env.duration(EnvKafkaConsumerHeartbeatInterval, DefaultConsumerHeartbeatInterval),
			SessionTimeout:    env.duration(EnvKafkaConsumerSessionTimeout, DefaultConsumerSessionTimeout),
			RebalanceTimeout:  env.duration(EnvKafkaConsumerRebalanceTimeout, DefaultConsumerRebalanceTimeout),
			MaxRetries:        env.integer(EnvKafkaConsumerMaxRetries, DefaultConsumerMaxRetries),
			RetryBackoff:      env.duration(EnvKafkaConsumerRetryBackoff, DefaultConsumerRetryBackoff),
		},
	}

	problems := append(env.errs, cfg.problems()...)
	if len(problems) > 0 {
		return nil, fmt.Errorf("kafka configuration validation failed: %s", numbered(problems))
	}
	return cfg, nil
}

func (cfg *Config) Validate() error {
	if problems := cfg.problems(); len(problems) > 0 {
		return fmt.Errorf("kafka configuration validation failed: %s", numbered(problems))
	}
	return nil
}

func (cfg *Config) problems() []string {
	var out []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			out = append(out, fmt.Sprintf(format, args...))
		}
	}

	check(len(cfg.Brokers) > 0, "At least one Kafka broker is required")

	p := cfg.Producer
	check(slices.Contains(validCompressions, p.Compression),
		"ProducerCompression must be one of [%s], got: %s", strings.Join(validCompressions, ", "), p.Compression)
	check(p.RequireAcks >= -1 && p.RequireAcks <= 1, "ProducerRequireAcks must be -1, 0, or 1, got: %d", p.RequireAcks)
	check(p.MaxAttempts > 0, "ProducerMaxAttempts must be positive, got: %d", p.MaxAttempts)
	check(p.BatchTimeout > 0, "ProducerBatchTimeout must be positive, got: %s", p.BatchTimeout)

	c := cfg.Consumer
	check(c.StartOffset >= -2, "ConsumerStartOffset must be -1 (newest), -2 (oldest), or >= 0, got: %d", c.StartOffset)
	check(c.MinBytes > 0 && c.MinBytes <= c.MaxBytes,
		"ConsumerMinBytes must be positive and at most ConsumerMaxBytes, got: %d/%d", c.MinBytes, c.MaxBytes)
	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"ConsumerMaxWait", c.MaxWait},
		{"ConsumerCommitInterval", c.CommitInterval},
		{"ConsumerHeartbeatInterval", c.HeartbeatInterval},
		{"ConsumerSessionTimeout", c.SessionTimeout},
		{"ConsumerRebalanceTimeout", c.RebalanceTimeout},
	} {
		check(d.value > 0, "%s must be positive, got: %s", d.name, d.value)
	}
	check(c.HeartbeatInterval < c.SessionTimeout,
		"ConsumerHeartbeatInterval (%s) must be shorter than ConsumerSessionTimeout (%s)", c.HeartbeatInterval, c.SessionTimeout)
	check(c.MaxRetries >= 0, "ConsumerMaxRetries cannot be negative, got: %d", c.MaxRetries)
	check(c.RetryBackoff >= 0, "ConsumerRetryBackoff cannot be negative, got: %s", c.RetryBackoff)

	return out
}

func (cfg *Config) LogConfiguration(log *logger.Logger) {
	log.Info("Kafka configuration loaded successfully",
		"brokers", cfg.Brokers,
		"allow_auto_topic_creation", cfg.AllowAutoTopicCreation,
		"producer", cfg.Producer,
		"consumer", cfg.Consumer,
	)
}

// ParseBrokers splits a comma separated broker list, dropping blanks.
func ParseBrokers(s string) []string {
	var brokers []string
	for _, broker := range strings.Split(s, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}

func numbered(problems []string) string {
	var b strings.Builder
	for i, p := range problems {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, p)
	}
	return b.String()
}

// envReader falls back to the default on a missing variable and records
// variables that are set but cannot be parsed.
type envReader struct {
	errs []string
}

func (r *envReader) str(key, def string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return def
}

func (r *envReader) parse(key string, parse func(string) error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return
	}
	if err := parse(value); err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s has an invalid value %q", key, value))
	}
}

func (r *envReader) integer(key string, def int) int {
	out := def
	r.parse(key, func(s string) error {
		v, err := strconv.Atoi(s)
		if err == nil {
			out = v
		}
		return err
	})
	return out
}

func (r *envReader) boolean(key string, def bool) bool {
	out := def
	r.parse(key, func(s string) error {
		v, err := strconv.ParseBool(s)
		if err == nil {
			out = v
		}
		return err
	})
	return out
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	out := def
	r.parse(key, func(s string) error {
		v, err := time.ParseDuration(s)
		if err == nil {
			out = v
		}
		return err
	})
	return out
}
