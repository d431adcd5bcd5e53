package storagebuilder

import (
	"context"
	"fmt"
	"time"

	"github.com/lomoval/ai-calendar/internal/storage"
	gormstorage "github.com/lomoval/ai-calendar/internal/storage/gorm"
	memorystorage "github.com/lomoval/ai-calendar/internal/storage/memory"
	sqlstorage "github.com/lomoval/ai-calendar/internal/storage/sql"
)

const connectTimeout = 15 * time.Second

type Config struct {
	StorageType string
	Database    sqlstorage.Config
}

// New builds the configured storage and connects it.
func New(config Config) (storage.Storage, error) {
	var s storage.Storage
	switch config.StorageType {
	case "memory":
		return memorystorage.New(), nil
	case "sql":
		s = sqlstorage.New(config.Database)
	case "gorm":
		s = gormstorage.New(gormstorage.Config{
			Host:     config.Database.Host,
			Port:     config.Database.Port,
			Database: config.Database.Database,
			Username: config.Database.Username,
			Password: config.Database.Password,
		})
	default:
		return nil, fmt.Errorf("unknown storage type %s", config.StorageType)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := s.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database %s %d: %w", config.Database.Host, config.Database.Port, err)
	}
	return s, nil
}
