//go:build integration

// Package integration runs the console's local stores against real
// PostgreSQL and Redis instances: the run journal on the postgres driver and
// the preference store on Redis.
//
// Run with:
//
//	go test -v -tags=integration ./test/integration/...
package integration

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/journal"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/prefs"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/database"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/redis"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// skipIfNoPostgres skips the test when PostgreSQL is unavailable.
func skipIfNoPostgres(t *testing.T) *database.Client {
	t.Helper()
	db, err := database.New(config.JournalConfig{Driver: "postgres"}, testPostgresConfig())
	if err != nil {
		t.Skipf("skipping integration test: postgres unavailable: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testPostgresConfig() config.PostgresConfig {
	return config.PostgresConfig{
		Host:            envOrDefault("TEST_POSTGRES_HOST", "localhost"),
		Port:            envOrDefaultInt("TEST_POSTGRES_PORT", 5432),
		Database:        envOrDefault("TEST_POSTGRES_DB", "ediconsole_test"),
		User:            envOrDefault("TEST_POSTGRES_USER", "ediconsole"),
		Password:        envOrDefault("TEST_POSTGRES_PASSWORD", "localdev"),
		SSLMode:         "disable",
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

func skipIfNoRedis(t *testing.T) *redis.Client {
	t.Helper()
	client, err := redis.NewClient(config.RedisConfig{
		Addr:     envOrDefault("TEST_REDIS_ADDR", "localhost:6379"),
		PoolSize: 2,
	})
	if err != nil {
		t.Skipf("skipping integration test: redis unavailable: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestJournalOnPostgres(t *testing.T) {
	db := skipIfNoPostgres(t)
	ctx := context.Background()

	j := journal.New(db)
	if err := j.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	runID := fmt.Sprintf("it-%d", time.Now().UnixNano())
	if err := j.Record(ctx, journal.Entry{RunID: runID, Kind: "850", Message: "850 processed", Status: "ok"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	entries, err := j.Recent(ctx, 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) == 0 || entries[0].RunID != runID {
		t.Fatalf("newest entry = %+v, want run %s", entries, runID)
	}
}

func TestPrefsOnRedis(t *testing.T) {
	client := skipIfNoRedis(t)
	ctx := context.Background()
	store := prefs.NewRedisStore(client)

	key := fmt.Sprintf("it-collapsed-%d", time.Now().UnixNano())
	t.Cleanup(func() { client.Del(context.Background(), "edi-console:pref:"+key) })

	if _, found, err := store.GetBool(ctx, key); err != nil || found {
		t.Fatalf("fresh key: found=%v err=%v", found, err)
	}
	if err := store.SetBool(ctx, key, true); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, found, err := store.GetBool(ctx, key)
	if err != nil || !found || !v {
		t.Fatalf("get after set: v=%v found=%v err=%v", v, found, err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
