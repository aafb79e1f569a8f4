package temple

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // PostgreSQL driver
)

// SQLConfig configures a SQLSource.
type SQLConfig struct {
	// Driver is the database/sql driver name ("postgres", "sqlite", "sqlite3").
	Driver string

	// DSN is the driver-specific connection string.
	DSN string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10 (1 for sqlite)
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 2
	MaxIdleConns int

	// ConnMaxLifetime is the maximum connection lifetime.
	// Default: 5 minutes
	ConnMaxLifetime time.Duration

	// QueryTimeout bounds every query.
	// Default: 30 seconds
	QueryTimeout time.Duration

	// Table overrides the template table name.
	// Default: "temple_templates"
	Table string
}

// sqlDialect holds the per-database differences of the queries
type sqlDialect struct {
	placeholder func(n int) string
	singleConn  bool
}

var (
	dialectPostgres = sqlDialect{
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	}
	dialectSQLite = sqlDialect{
		placeholder: func(int) string { return "?" },
		singleConn:  true,
	}
)

func dialectFor(driver string) sqlDialect {
	if driver == SQLDriverPostgres {
		return dialectPostgres
	}
	return dialectSQLite
}

// SQLSource is a TemplateSource backed by a single SQL table. It serves
// both PostgreSQL and SQLite.
type SQLSource struct {
	db      *sql.DB
	config  SQLConfig
	dialect sqlDialect
	mu      sync.RWMutex
	closed  bool
}

// PostgresSourceDriver opens SQLSource instances on PostgreSQL.
type PostgresSourceDriver struct{}

func init() {
	RegisterSourceDriver(SourceDriverPostgres, &PostgresSourceDriver{})
}

// Open creates a SQLSource from a PostgreSQL DSN and migrates the schema.
func (d *PostgresSourceDriver) Open(dsn string) (TemplateSource, error) {
	return NewSQLSource(SQLConfig{Driver: SQLDriverPostgres, DSN: dsn})
}

// NewSQLSource connects, verifies the connection and creates the table
// if it is missing.
func NewSQLSource(config SQLConfig) (*SQLSource, error) {
	if config.DSN == "" {
		return nil, NewSourceError(ErrMsgSourceEmptyDSN, config.Driver, nil)
	}

	dialect := dialectFor(config.Driver)
	if config.MaxOpenConns == 0 {
		config.MaxOpenConns = SQLDefaultMaxOpenConns
		if dialect.singleConn {
			config.MaxOpenConns = 1
		}
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = SQLDefaultMaxIdleConns
	}
	if config.ConnMaxLifetime == 0 {
		config.ConnMaxLifetime = SQLDefaultConnMaxLifetime
	}
	if config.QueryTimeout == 0 {
		config.QueryTimeout = SQLDefaultQueryTimeout
	}
	if config.Table == "" {
		config.Table = SQLTableName
	}

	db, err := sql.Open(config.Driver, config.DSN)
	if err != nil {
		return nil, NewSourceError(ErrMsgSourceConnectFailed, config.Driver, err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)
	db.SetConnMaxLifetime(config.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), config.QueryTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, NewSourceError(ErrMsgSourceConnectFailed, config.Driver, err)
	}

	source := &SQLSource{db: db, config: config, dialect: dialect}
	if err := source.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return source, nil
}

// NewSQLSourceFromDB wraps an open database. The table is created if missing.
func NewSQLSourceFromDB(ctx context.Context, db *sql.DB, driver string) (*SQLSource, error) {
	source := &SQLSource{
		db:      db,
		config:  SQLConfig{Driver: driver, QueryTimeout: SQLDefaultQueryTimeout, Table: SQLTableName},
		dialect: dialectFor(driver),
	}
	if err := source.migrate(ctx); err != nil {
		return nil, err
	}
	return source, nil
}

func (s *SQLSource) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name       VARCHAR(255) PRIMARY KEY,
			id         VARCHAR(36)  NOT NULL,
			body       TEXT         NOT NULL,
			updated_at BIGINT       NOT NULL
		)`, s.config.Table))
	if err != nil {
		return NewSourceError(ErrMsgSourceMigrationFailed, s.config.Table, err)
	}
	return nil
}

func (s *SQLSource) ph(n int) string {
	return s.dialect.placeholder(n)
}

// Get retrieves a template by name.
func (s *SQLSource) Get(ctx context.Context, name string) (*SourceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewSourceClosedError()
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT id, name, body, updated_at FROM %s WHERE name = %s`,
		s.config.Table, s.ph(1))

	var rec SourceRecord
	var updated int64
	err := s.db.QueryRowContext(ctx, query, name).Scan(&rec.ID, &rec.Name, &rec.Body, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewSourceNotFoundError(name)
		}
		return nil, NewSourceError(ErrMsgSourceQueryFailed, name, err)
	}
	rec.UpdatedAt = time.UnixMilli(updated)
	return &rec, nil
}

// Save upserts a template. The ID of an existing row is kept.
func (s *SQLSource) Save(ctx context.Context, rec *SourceRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !validTemplateName(rec.Name) {
		return NewSourceError(ErrMsgInvalidTemplateName, rec.Name, nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewSourceClosedError()
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	now := time.Now()
	upsert := fmt.Sprintf(`
		INSERT INTO %s (name, id, body, updated_at) VALUES (%s, %s, %s, %s)
		ON CONFLICT (name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		s.config.Table, s.ph(1), s.ph(2), s.ph(3), s.ph(4))
	if _, err := s.db.ExecContext(ctx, upsert, rec.Name, uuid.NewString(), rec.Body, now.UnixMilli()); err != nil {
		return NewSourceError(ErrMsgSourceWriteFailed, rec.Name, err)
	}

	var id string
	query := fmt.Sprintf(`SELECT id FROM %s WHERE name = %s`, s.config.Table, s.ph(1))
	if err := s.db.QueryRowContext(ctx, query, rec.Name).Scan(&id); err != nil {
		return NewSourceError(ErrMsgSourceQueryFailed, rec.Name, err)
	}
	rec.ID = id
	rec.UpdatedAt = time.UnixMilli(now.UnixMilli())
	return nil
}

// Delete removes a template by name.
func (s *SQLSource) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewSourceClosedError()
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE name = %s`, s.config.Table, s.ph(1)), name)
	if err != nil {
		return NewSourceError(ErrMsgSourceWriteFailed, name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return NewSourceError(ErrMsgSourceWriteFailed, name, err)
	}
	if n == 0 {
		return NewSourceNotFoundError(name)
	}
	return nil
}

// List returns all template names in sorted order.
func (s *SQLSource) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewSourceClosedError()
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`SELECT name FROM %s ORDER BY name`, s.config.Table))
	if err != nil {
		return nil, NewSourceError(ErrMsgSourceListFailed, s.config.Table, err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, NewSourceError(ErrMsgSourceListFailed, s.config.Table, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, NewSourceError(ErrMsgSourceListFailed, s.config.Table, err)
	}
	return names, nil
}

// Close releases database connections.
func (s *SQLSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewSourceClosedError()
	}
	s.closed = true
	return s.db.Close()
}
