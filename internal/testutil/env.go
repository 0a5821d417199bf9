// Package testutil connects integration tests to the Mongo and Redis
// instances named by TEST_MONGO_URI and TEST_REDIS_ADDR. Tests skip when the
// backing service cannot be reached.
package testutil

import (
	"os"
	"time"

	"rentmate/pkg/config"
	"rentmate/pkg/logger"
)

const (
	DefaultMongoURI     = "mongodb://localhost:27017/?replicaSet=rs0"
	DefaultDatabaseName = "rentmate_test"
	DefaultRedisAddr    = "localhost:6379"
	ConnectionTimeout   = 5 * time.Second
)

type TestEnv struct {
	MongoURI     string
	DatabaseName string
	RedisAddr    string
}

func NewTestEnv() *TestEnv {
	return &TestEnv{
		MongoURI:     getEnv("TEST_MONGO_URI", DefaultMongoURI),
		DatabaseName: getEnv("TEST_DB_NAME", DefaultDatabaseName),
		RedisAddr:    getEnv("TEST_REDIS_ADDR", DefaultRedisAddr),
	}
}

// Config returns a service configuration pointed at the test database with
// short timeouts and a silent logger.
func (e *TestEnv) Config() *config.Config {
	return &config.Config{
		MongoURI:          e.MongoURI,
		MongoDatabaseName: e.DatabaseName,
		ReadTimeout:       ConnectionTimeout,
		WriteTimeout:      ConnectionTimeout,
		BookingLockTTL:    ConnectionTimeout,
		Location:          time.UTC,
		Log:               logger.NewNop(),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
