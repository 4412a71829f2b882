package journal

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/database"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(&database.Client{DB: db, Dialect: database.DialectPostgres}), mock
}

func TestRecordPostgresPlaceholders(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO console_runs (run_id, kind, message, status, created_at) VALUES ($1, $2, $3, $4, $5)`)).
		WithArgs("R1", "850", "850 processed", "ok", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`LIMIT $1)`)).
		WithArgs(DefaultRetain).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := s.Record(context.Background(), Entry{RunID: "R1", Kind: "850", Message: "850 processed", Status: "ok"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRollsBackOnInsertFailure(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO console_runs`)).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.Record(context.Background(), Entry{Kind: "856", Status: "transport"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "inserting journal entry")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentPostgres(t *testing.T) {
	s, mock := newMockStore(t)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "run_id", "kind", "message", "status", "created_at"}).
		AddRow(int64(7), "R7", "856", "856 processed", "ok", at.UnixMilli()).
		AddRow(int64(6), "", "850", "", "transport", at.Add(-time.Minute).UnixMilli())
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY id DESC LIMIT $1`)).
		WithArgs(5).
		WillReturnRows(rows)

	entries, err := s.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "R7", entries[0].RunID)
	assert.True(t, entries[0].CreatedAt.Equal(at))
	assert.Equal(t, "transport", entries[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
