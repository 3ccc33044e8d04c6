// Package sqlite implements the catalog store on an embedded SQLite database
// through gorm.
package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desprit/bicklebow/internal/store"
	"github.com/desprit/bicklebow/internal/store/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type SqliteStore struct {
	db *gorm.DB
}

var (
	_ store.Store    = (*SqliteStore)(nil)
	_ store.Migrator = (*SqliteStore)(nil)
)

// NewSqliteStore opens (creating if needed) the database at path and runs the
// schema migration.
func NewSqliteStore(path string) (*SqliteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	// WAL keeps resolution reads concurrent while the single writer lane
	// below serializes metric inserts.
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	s := &SqliteStore{db: db}
	if err := s.Migrate(context.Background()); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	}
	return s, nil
}

func (s *SqliteStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(
		&model.MarketModel{},
		&model.MetricModel{},
	)
}

func (s *SqliteStore) Drop(ctx context.Context) error {
	return s.db.WithContext(ctx).Migrator().DropTable(
		&model.MarketModel{},
		&model.MetricModel{},
	)
}

func (s *SqliteStore) Markets() store.MarketRepository {
	return &marketRepo{db: s.db}
}

func (s *SqliteStore) Metrics() store.MetricRepository {
	return &metricRepo{db: s.db}
}

func (s *SqliteStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SqliteStore) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
