package storagebuilder

import (
	"context"
	"fmt"
	"time"

	"github.com/lomoval/personal-calendar/internal/storage"
	memorystorage "github.com/lomoval/personal-calendar/internal/storage/memory"
	sqlstorage "github.com/lomoval/personal-calendar/internal/storage/sql"
)

const (
	TypeMemory   = "memory"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

const connectTimeout = 15 * time.Second

type Config struct {
	StorageType string
	SQLite      sqlstorage.SQLiteConfig
	Database    sqlstorage.Config
}

// New creates the configured storage and connects it. The caller owns the
// returned storage and must Close it.
func New(config Config) (storage.Storage, error) {
	var s storage.Storage
	switch config.StorageType {
	case TypeMemory:
		return memorystorage.New(), nil
	case TypeSQLite:
		s = sqlstorage.NewSQLite(config.SQLite)
	case TypePostgres, "sql":
		s = sqlstorage.NewPostgres(config.Database)
	default:
		return nil, fmt.Errorf("unknown storage type %q", config.StorageType)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := s.Connect(ctx); err != nil {
		if config.StorageType == TypeSQLite {
			return nil, fmt.Errorf("failed to open sqlite database %s: %w", config.SQLite.Path, err)
		}
		return nil, fmt.Errorf("failed to connect to database %s %d: %w", config.Database.Host, config.Database.Port, err)
	}
	return s, nil
}
