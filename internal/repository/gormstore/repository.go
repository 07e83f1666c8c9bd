// Package gormstore implements repository.Store on top of gorm, serving the
// MySQL backend. Any gorm dialector works; tests run it against SQLite.
package gormstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/joshdurbin/hashlink/internal/domain"
	"github.com/joshdurbin/hashlink/internal/repository"
)

// urlRecord is the gorm model for the urls table. URLHash indexes the
// original URL, which is too long for a portable index of its own.
type urlRecord struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	ShortCode   string    `gorm:"size:64;not null;uniqueIndex"`
	OriginalURL string    `gorm:"type:text;not null"`
	URLHash     string    `gorm:"size:64;not null;index"`
	ClickCount  int64     `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (urlRecord) TableName() string {
	return "urls"
}

func (r *urlRecord) toDomain() *domain.URLMapping {
	return &domain.URLMapping{
		ShortCode:   r.ShortCode,
		OriginalURL: r.OriginalURL,
		ClickCount:  r.ClickCount,
		CreatedAt:   r.CreatedAt.UTC(),
	}
}

// Repository implements repository.Store using gorm
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewMySQL connects to MySQL with dsn
func NewMySQL(dsn string, maxConnections int) (*Repository, error) {
	return Open(mysql.Open(dsn), maxConnections)
}

// Open builds a repository over an arbitrary gorm dialector and migrates the schema
func Open(dialector gorm.Dialector, maxConnections int) (*Repository, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	if maxConnections > 0 {
		sqlDB.SetMaxOpenConns(maxConnections)
		sqlDB.SetMaxIdleConns(maxConnections)
	}
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := db.AutoMigrate(&urlRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Repository{db: db, now: time.Now}, nil
}

// FindByCode retrieves a mapping by its short code
func (r *Repository) FindByCode(ctx context.Context, code string) (*domain.URLMapping, error) {
	var rec urlRecord
	err := r.db.WithContext(ctx).Where("short_code = ?", code).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.StoreError{Op: "find by code", Err: err}
	}
	return rec.toDomain(), nil
}

// FindByURL retrieves the oldest mapping for an original URL
func (r *Repository) FindByURL(ctx context.Context, url string) (*domain.URLMapping, error) {
	var rec urlRecord
	err := r.db.WithContext(ctx).
		Where("url_hash = ? AND original_url = ?", hashURL(url), url).
		Order("id").
		Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, &domain.StoreError{Op: "find by url", Err: err}
	}
	return rec.toDomain(), nil
}

// InsertIfAbsent inserts a new mapping unless the short code already exists
func (r *Repository) InsertIfAbsent(ctx context.Context, code, url string) (*domain.URLMapping, error) {
	rec := urlRecord{
		ShortCode:   code,
		OriginalURL: url,
		URLHash:     hashURL(url),
		CreatedAt:   r.now().UTC(),
	}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rec)
	if res.Error != nil {
		return nil, &domain.StoreError{Op: "insert", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return rec.toDomain(), nil
}

// IncrementClickCount atomically adds one to a mapping's click count
func (r *Repository) IncrementClickCount(ctx context.Context, code string) error {
	err := r.db.WithContext(ctx).
		Model(&urlRecord{}).
		Where("short_code = ?", code).
		UpdateColumn("click_count", gorm.Expr("click_count + ?", 1)).Error
	if err != nil {
		return &domain.StoreError{Op: "increment click count", Err: err}
	}
	return nil
}

// Ping checks the database connection
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		return &domain.StoreError{Op: "ping", Err: err}
	}
	return nil
}

// Close closes the underlying connection pool
func (r *Repository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func hashURL(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

var _ repository.Store = (*Repository)(nil)
