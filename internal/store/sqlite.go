package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DannySS123/weather-pulse-explorer/internal/astro"
)

// SQLiteStore is a sqlite-backed persistence gateway with the same
// append-only contract as MemoryStore.
type SQLiteStore struct {
	db    *gorm.DB
	clock clockwork.Clock
}

// NewSQLiteStore opens (creating if needed) the database at path and
// migrates the record table. Pass a nil clock to use real time.
func NewSQLiteStore(path string, clock clockwork.Clock) (*SQLiteStore, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %q: %w", path, err)
	}

	if err := db.AutoMigrate(&astro.Record{}); err != nil {
		return nil, fmt.Errorf("migrating record table: %w", err)
	}

	return &SQLiteStore{db: db, clock: clock}, nil
}

// Append stores one record, assigning its created_at timestamp.
func (s *SQLiteStore) Append(ctx context.Context, rec astro.Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.clock.Now().UTC()
	}
	return s.db.WithContext(ctx).Create(&rec).Error
}

// ReadAll returns the filtered record set ordered by created_at
// descending.
func (s *SQLiteStore) ReadAll(ctx context.Context, f astro.Filter) ([]astro.Record, error) {
	q := s.db.WithContext(ctx).Model(&astro.Record{}).Order("created_at DESC")

	if f.Location != "" {
		q = q.Where("lower(location) LIKE ?", "%"+strings.ToLower(f.Location)+"%")
	}
	if !f.From.IsZero() {
		q = q.Where("date >= ?", f.From)
	}
	if !f.To.IsZero() {
		q = q.Where("date <= ?", f.To)
	}

	var records []astro.Record
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
