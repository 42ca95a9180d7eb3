package testutil

import (
	"context"
	"io"
	"os"
	"testing"
	"time"

	migrations "petcare/internal/migrations/mongo"
	"petcare/pkg/client"
	"petcare/pkg/config"
	"petcare/pkg/logger"
)

const EnvTestMongoURI = "TEST_MONGO_URI"

type TestEnv struct {
	MongoURI     string
	DatabaseName string
}

// NewTestEnv skips the calling test when TEST_MONGO_URI is not set.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	mongoURI := os.Getenv(EnvTestMongoURI)
	if mongoURI == "" {
		t.Skipf("%s not set, skipping integration test", EnvTestMongoURI)
	}

	return &TestEnv{
		MongoURI:     mongoURI,
		DatabaseName: getEnv("TEST_DB_NAME", DefaultDatabaseName),
	}
}

// Setup starts from an empty, migrated database and returns a config wired to it.
func (e *TestEnv) Setup(t *testing.T) (*MongoHelper, *config.Config) {
	t.Helper()

	helper := NewMongoHelper(t, e.MongoURI, e.DatabaseName)
	helper.DropDatabase(t)

	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	cfg := &config.Config{
		MongoDatabaseName: e.DatabaseName,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
		Log:               log,
		Client:            &client.Client{Mongo: helper.Client},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrations.RunMigration(ctx, helper.Client, e.DatabaseName, log); err != nil {
		t.Fatalf("failed to migrate %s: %v", e.DatabaseName, err)
	}

	t.Cleanup(func() {
		helper.DropDatabase(t)
		helper.Close(t)
	})
	return helper, cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
