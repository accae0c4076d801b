package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/park285/rooky/internal/note"
	"github.com/park285/rooky/internal/obslog"
)

// Dialect selects placeholder style and upsert syntax.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// SQLStore keeps entries in a rooky_games table on SQLite or PostgreSQL.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLStore(db *sql.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// OpenSQLite opens (or creates) the library file and applies migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("open: empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("open: create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", "file:"+path+"?mode=rwc&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open: sql open: %w", err)
	}
	// sqlite allows a single writer at a time
	db.SetMaxOpenConns(1)
	return finishOpen(ctx, db, DialectSQLite)
}

// OpenPostgres connects with a DATABASE_URL style DSN and applies migrations.
func OpenPostgres(ctx context.Context, databaseURL string) (*SQLStore, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	return finishOpen(ctx, db, DialectPostgres)
}

func finishOpen(ctx context.Context, db *sql.DB, dialect Dialect) (*SQLStore, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open: ping: %w", err)
	}
	s := NewSQLStore(db, dialect)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open: migrate: %w", err)
	}
	return s, nil
}

// Migrate creates the schema and records note.SchemaVersion. It is idempotent.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("migrate: db is nil")
	}
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY)`); err != nil {
		return fmt.Errorf("migrate: create schema_migrations: %w", err)
	}
	var current int
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("migrate: read current version: %w", err)
	}
	if current >= note.SchemaVersion {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate: begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + note.StoreName + ` (
			id TEXT PRIMARY KEY,
			pubkey TEXT NOT NULL DEFAULT '',
			created_at BIGINT NOT NULL,
			kind INTEGER NOT NULL,
			tags TEXT NOT NULL,
			content TEXT NOT NULL,
			origin TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_` + note.StoreName + `_created_at ON ` + note.StoreName + `(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_` + note.StoreName + `_origin ON ` + note.StoreName + `(origin)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations(version) VALUES (`+s.ph(1)+`)`, note.SchemaVersion); err != nil {
		return fmt.Errorf("migrate: record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate: commit transaction: %w", err)
	}
	obslog.L().Info("store_migrated", zap.String("dialect", string(s.dialect)), zap.Int("version", note.SchemaVersion))
	return nil
}

// ph returns the n-th (1-based) placeholder for the dialect.
func (s *SQLStore) ph(n int) string {
	if s.dialect == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (s *SQLStore) Put(ctx context.Context, e note.Entry) error {
	if err := validate(e); err != nil {
		return err
	}
	tags, err := json.Marshal(e.Tags)
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}
	q := `INSERT INTO ` + note.StoreName + ` (id, pubkey, created_at, kind, tags, content, origin)
		VALUES (` + s.ph(1) + `, ` + s.ph(2) + `, ` + s.ph(3) + `, ` + s.ph(4) + `, ` + s.ph(5) + `, ` + s.ph(6) + `, ` + s.ph(7) + `)
		ON CONFLICT (id) DO UPDATE SET
			pubkey=EXCLUDED.pubkey,
			created_at=EXCLUDED.created_at,
			kind=EXCLUDED.kind,
			tags=EXCLUDED.tags,
			content=EXCLUDED.content,
			origin=EXCLUDED.origin`
	if _, err := s.db.ExecContext(ctx, q, e.ID, e.PubKey, e.CreatedAt, e.Kind, string(tags), e.Content, e.Origin.String()); err != nil {
		return fmt.Errorf("insert game entry: %w", err)
	}
	obslog.L().Debug("store_put", zap.String("backend", string(s.dialect)), zap.String("id", e.ID), zap.String("origin", e.Origin.String()))
	return nil
}

const selectColumns = `id, pubkey, created_at, kind, tags, content, origin`

func (s *SQLStore) Get(ctx context.Context, id string) (*note.Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM `+note.StoreName+` WHERE id = `+s.ph(1), strings.TrimSpace(id))
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select game entry: %w", err)
	}
	return e, nil
}

func (s *SQLStore) List(ctx context.Context, opts ListOptions) ([]note.Entry, error) {
	q := `SELECT ` + selectColumns + ` FROM ` + note.StoreName
	var args []any
	if len(opts.Origins) > 0 {
		marks := make([]string, len(opts.Origins))
		for i, o := range opts.Origins {
			marks[i] = s.ph(i + 1)
			args = append(args, o.String())
		}
		q += ` WHERE origin IN (` + strings.Join(marks, ", ") + `)`
	}
	q += ` ORDER BY created_at DESC, id ASC`
	if opts.Limit > 0 {
		q += ` LIMIT ` + strconv.Itoa(opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list game entries: %w", err)
	}
	defer rows.Close()

	var out []note.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game entry: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+note.StoreName+` WHERE id = `+s.ph(1), strings.TrimSpace(id))
	if err != nil {
		return fmt.Errorf("delete game entry: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(r rowScanner) (*note.Entry, error) {
	var (
		e      note.Entry
		tags   string
		origin string
	)
	if err := r.Scan(&e.ID, &e.PubKey, &e.CreatedAt, &e.Kind, &tags, &e.Content, &origin); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &e.Tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	o, err := note.ParseOrigin(origin)
	if err != nil {
		o = note.OriginUnknown
	}
	e.Origin = o
	return &e, nil
}
