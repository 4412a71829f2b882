// Package database opens the SQL connection behind the run journal. Two
// drivers are supported: PostgreSQL via lib/pq and an embedded SQLite file via
// modernc.org/sqlite.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/config"
)

// Dialect identifies the SQL flavour behind a Client.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

type Client struct {
	DB      *sql.DB
	Dialect Dialect
}

// New opens the journal database selected by cfg.Driver and pings it.
func New(jcfg config.JournalConfig, pcfg config.PostgresConfig) (*Client, error) {
	switch Dialect(jcfg.Driver) {
	case DialectPostgres:
		return open(DialectPostgres, "postgres", pcfg.DSN(), func(db *sql.DB) {
			db.SetMaxOpenConns(pcfg.MaxOpenConns)
			db.SetMaxIdleConns(pcfg.MaxIdleConns)
			db.SetConnMaxLifetime(pcfg.ConnMaxLifetime)
		})
	case DialectSQLite:
		return OpenSQLite(jcfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unsupported journal driver %q", jcfg.Driver)
	}
}

// OpenSQLite opens (creating if needed) a SQLite database at path. ":memory:"
// yields a private in-memory database.
func OpenSQLite(path string) (*Client, error) {
	return open(DialectSQLite, "sqlite", path, func(db *sql.DB) {
		// One writer at a time keeps SQLite out of SQLITE_BUSY, and pins
		// ":memory:" to a single connection.
		db.SetMaxOpenConns(1)
	})
}

func open(dialect Dialect, driver, dsn string, tune func(*sql.DB)) (*Client, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s connection: %w", dialect, err)
	}
	tune(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging %s: %w", dialect, err)
	}
	return &Client{DB: db, Dialect: dialect}, nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}

// Ping checks the connection is still usable.
func (c *Client) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Rebind rewrites '?' placeholders into the dialect's positional form.
func (c *Client) Rebind(query string) string {
	if c.Dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (c *Client) InTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back transaction after error %v: %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}
