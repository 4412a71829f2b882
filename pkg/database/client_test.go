package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/config"
)

func TestRebind(t *testing.T) {
	pg := &Client{Dialect: DialectPostgres}
	if got := pg.Rebind("SELECT * FROM t WHERE a = ? AND b = ?"); got != "SELECT * FROM t WHERE a = $1 AND b = $2" {
		t.Errorf("postgres rebind = %q", got)
	}
	lite := &Client{Dialect: DialectSQLite}
	if got := lite.Rebind("a = ?"); got != "a = ?" {
		t.Errorf("sqlite rebind = %q", got)
	}
}

func TestOpenSQLiteInTx(t *testing.T) {
	c, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if _, err := c.DB.ExecContext(ctx, `CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)`); err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	err = c.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO kv VALUES ('a', '1')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx err = %v, want boom", err)
	}

	var n int
	if err := c.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM kv`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("rolled-back insert is visible: %d rows", n)
	}
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(config.JournalConfig{Driver: "mysql"}, config.PostgresConfig{})
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
