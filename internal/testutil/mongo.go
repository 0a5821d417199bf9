package testutil

import (
	"context"
	"testing"

	mongoMigration "rentmate/internal/migrations/mongo"
	"rentmate/pkg/client"
	"rentmate/pkg/config"
	"rentmate/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoHelper struct {
	Client   *mongo.Client
	Database *mongo.Database
	DBName   string
}

// NewMongoHelper connects to the test database and drops it when the test
// finishes.
func NewMongoHelper(t *testing.T, env *TestEnv) *MongoHelper {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(env.MongoURI).
		SetServerSelectionTimeout(ConnectionTimeout))
	if err != nil {
		t.Skipf("MongoDB unavailable at %s: %v", env.MongoURI, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		t.Skipf("MongoDB unavailable at %s: %v", env.MongoURI, err)
	}

	h := &MongoHelper{
		Client:   client,
		Database: client.Database(env.DatabaseName),
		DBName:   env.DatabaseName,
	}
	h.CleanDatabase(t)
	t.Cleanup(func() {
		h.CleanDatabase(t)
		h.Close(t)
	})
	return h
}

func (m *MongoHelper) Close(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	if err := m.Client.Disconnect(ctx); err != nil {
		t.Logf("warning: failed to disconnect from MongoDB: %v", err)
	}
}

// CleanDatabase empties every collection but keeps collections and their
// indexes, so migrations only need to run once per test.
func (m *MongoHelper) CleanDatabase(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	collections, err := m.Database.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		t.Fatalf("failed to list collections: %v", err)
	}

	for _, name := range collections {
		if _, err := m.Database.Collection(name).DeleteMany(ctx, bson.D{}); err != nil {
			t.Fatalf("failed to clean collection %s: %v", name, err)
		}
	}
}

func (m *MongoHelper) CountDocuments(t *testing.T, collectionName string) int64 {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), ConnectionTimeout)
	defer cancel()

	count, err := m.Database.Collection(collectionName).CountDocuments(ctx, bson.D{})
	if err != nil {
		t.Fatalf("failed to count documents in %s: %v", collectionName, err)
	}
	return count
}

// Config returns env.Config wired to this helper's client.
func (m *MongoHelper) Config(env *TestEnv) *config.Config {
	cfg := env.Config()
	cfg.Client = &client.Client{Mongo: m.Client}
	return cfg
}

// Migrate creates the collections, validators and indexes of the service
// database.
func (m *MongoHelper) Migrate(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 4*ConnectionTimeout)
	defer cancel()

	if err := mongoMigration.RunMigration(ctx, m.Client, m.DBName, logger.NewNop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
}
