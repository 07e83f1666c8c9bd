package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/joshdurbin/hashlink/internal/domain"
	"github.com/joshdurbin/hashlink/internal/repository"
	"github.com/joshdurbin/hashlink/internal/repository/migrate"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	selectColumns = `SELECT short_code, original_url, click_count, created_at FROM urls`

	findByCodeQuery = selectColumns + ` WHERE short_code = $1`
	findByURLQuery  = selectColumns + ` WHERE original_url = $1 ORDER BY id LIMIT 1`

	insertIfAbsentQuery = `
		INSERT INTO urls (short_code, original_url)
		VALUES ($1, $2)
		ON CONFLICT (short_code) DO NOTHING
		RETURNING short_code, original_url, click_count, created_at`

	incrementClickCountQuery = `UPDATE urls SET click_count = click_count + 1 WHERE short_code = $1`
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation
const uniqueViolation = "23505"

// Config holds connection pool settings
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultConfig returns pool settings for dsn sized for maxConnections
func DefaultConfig(dsn string, maxConnections int) Config {
	if maxConnections <= 0 {
		maxConnections = 10
	}
	idle := maxConnections / 2
	if idle < 1 {
		idle = 1
	}
	return Config{
		DSN:             dsn,
		MaxOpenConns:    maxConnections,
		MaxIdleConns:    idle,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,
	}
}

// Repository implements repository.Store using PostgreSQL
type Repository struct {
	db *sqlx.DB
}

type urlRow struct {
	ShortCode   string    `db:"short_code"`
	OriginalURL string    `db:"original_url"`
	ClickCount  int64     `db:"click_count"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r urlRow) toDomain() *domain.URLMapping {
	return &domain.URLMapping{
		ShortCode:   r.ShortCode,
		OriginalURL: r.OriginalURL,
		ClickCount:  r.ClickCount,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

// New connects to PostgreSQL, verifies the connection and applies pending migrations
func New(ctx context.Context, cfg Config) (*Repository, error) {
	db, err := sqlx.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrate.Run(ctx, db, migrationsFS, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

// FindByCode retrieves a mapping by its short code
func (r *Repository) FindByCode(ctx context.Context, code string) (*domain.URLMapping, error) {
	var row urlRow
	if err := r.db.GetContext(ctx, &row, findByCodeQuery, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.StoreError{Op: "find by code", Err: err}
	}
	return row.toDomain(), nil
}

// FindByURL retrieves the oldest mapping for an original URL
func (r *Repository) FindByURL(ctx context.Context, url string) (*domain.URLMapping, error) {
	var row urlRow
	if err := r.db.GetContext(ctx, &row, findByURLQuery, url); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.StoreError{Op: "find by url", Err: err}
	}
	return row.toDomain(), nil
}

// InsertIfAbsent inserts a new mapping unless the short code already exists.
// ON CONFLICT DO NOTHING returns no row when the code is taken.
func (r *Repository) InsertIfAbsent(ctx context.Context, code, url string) (*domain.URLMapping, error) {
	var row urlRow
	err := r.db.GetContext(ctx, &row, insertIfAbsentQuery, code, url)
	switch {
	case err == nil:
		return row.toDomain(), nil
	case errors.Is(err, sql.ErrNoRows), isUniqueViolation(err):
		return nil, nil
	default:
		return nil, &domain.StoreError{Op: "insert", Err: err}
	}
}

// IncrementClickCount atomically adds one to a mapping's click count
func (r *Repository) IncrementClickCount(ctx context.Context, code string) error {
	if _, err := r.db.ExecContext(ctx, incrementClickCountQuery, code); err != nil {
		return &domain.StoreError{Op: "increment click count", Err: err}
	}
	return nil
}

// Ping checks the database connection
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return &domain.StoreError{Op: "ping", Err: err}
	}
	return nil
}

// Close closes the connection pool
func (r *Repository) Close() error {
	return r.db.Close()
}

// isUniqueViolation reports a unique_violation on short_code. ON CONFLICT
// normally absorbs it, but a conflict inside a concurrent transaction can
// still surface as an error.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation
	}
	return false
}

var _ repository.Store = (*Repository)(nil)
