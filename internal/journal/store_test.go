package journal

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/database"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	s := New(db)
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestRecordAndRecent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, s.Record(ctx, Entry{RunID: "R1", Kind: "850", Message: "Accepted", Status: "ok", CreatedAt: base}))
	require.NoError(t, s.Record(ctx, Entry{Kind: "856", Status: "transport", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, s.Record(ctx, Entry{RunID: "R1", Kind: "replay", Message: "Replay executed", Status: "ok"}))

	entries, err := s.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "replay", entries[0].Kind)
	assert.Equal(t, "856", entries[1].Kind)
	assert.Equal(t, "transport", entries[1].Status)
	assert.True(t, entries[1].CreatedAt.Equal(base.Add(time.Minute)))
}

func TestMigrateIdempotent(t *testing.T) {
	s := newStore(t)
	assert.NoError(t, s.Migrate(context.Background()))
}

func TestRetention(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	s.retain = 3

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(ctx, Entry{RunID: fmt.Sprintf("R%d", i), Kind: "850", Status: "ok"}))
	}
	entries, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "R4", entries[0].RunID)
	assert.Equal(t, "R2", entries[2].RunID)
}

func TestPing(t *testing.T) {
	assert.NoError(t, newStore(t).Ping(context.Background()))
}
