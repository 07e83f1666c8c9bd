package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/joshdurbin/hashlink/internal/domain"
	"github.com/joshdurbin/hashlink/internal/repository"
)

const (
	selectColumns = `SELECT short_code, original_url, click_count, created_at FROM urls`

	findByCodeQuery = selectColumns + ` WHERE short_code = ?`
	findByURLQuery  = selectColumns + ` WHERE original_url = ? ORDER BY id LIMIT 1`

	insertIfAbsentQuery = `
		INSERT INTO urls (short_code, original_url, click_count, created_at)
		VALUES (?, ?, 0, ?)
		ON CONFLICT (short_code) DO NOTHING`

	incrementClickCountQuery = `UPDATE urls SET click_count = click_count + 1 WHERE short_code = ?`
)

// Repository implements repository.Store using SQLite
type Repository struct {
	db  *sqlx.DB
	now func() time.Time
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
		CreatedAt:   r.CreatedAt,
	}
}

// New opens (creating if needed) the SQLite database at databasePath and
// applies pending migrations
func New(databasePath string) (*Repository, error) {
	db, err := sqlx.Open("sqlite3", databasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows a single writer; one connection also keeps ":memory:"
	// databases and per-connection pragmas consistent.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if databasePath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	repo := &Repository{
		db:  db,
		now: time.Now,
	}

	if err := repo.runMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
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

// InsertIfAbsent inserts a new mapping unless the short code already exists
func (r *Repository) InsertIfAbsent(ctx context.Context, code, url string) (*domain.URLMapping, error) {
	createdAt := r.now().UTC()

	result, err := r.db.ExecContext(ctx, insertIfAbsentQuery, code, url, createdAt)
	if err != nil {
		return nil, &domain.StoreError{Op: "insert", Err: err}
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, &domain.StoreError{Op: "insert", Err: fmt.Errorf("failed to get rows affected: %w", err)}
	}
	if affected == 0 {
		return nil, nil
	}

	return &domain.URLMapping{
		ShortCode:   code,
		OriginalURL: url,
		CreatedAt:   createdAt,
	}, nil
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

// Close closes the repository connection
func (r *Repository) Close() error {
	return r.db.Close()
}

// Ensure Repository implements the interface
var _ repository.Store = (*Repository)(nil)
