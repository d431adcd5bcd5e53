package gormstorage

import (
	"context"
	"errors"
	"fmt"

	"github.com/lomoval/ai-calendar/internal/storage"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var ErrConnectionFailed = errors.New("failed to connect")

type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

type event struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Name     string `gorm:"not null"`
	Date     string `gorm:"column:date;not null;index:events_date_idx"`
	Time     string `gorm:"column:time;not null"`
	Duration int    `gorm:"not null"`
}

func (event) TableName() string {
	return "events"
}

func fromStorage(e storage.Event) event {
	return event{ID: e.ID, Name: e.Name, Date: e.Date, Time: e.Time, Duration: e.Duration}
}

func (e event) toStorage() storage.Event {
	return storage.Event{ID: e.ID, Name: e.Name, Date: e.Date, Time: e.Time, Duration: e.Duration}
}

type Storage struct {
	dsn string
	db  *gorm.DB
}

func New(config Config) *Storage {
	return &Storage{
		dsn: fmt.Sprintf(
			"sslmode=disable host=%s port=%d dbname=%s user=%s password=%s",
			config.Host, config.Port, config.Database, config.Username, config.Password),
	}
}

func (s *Storage) Connect(ctx context.Context) error {
	db, err := gorm.Open(postgres.Open(s.dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		log.Errorf("failed to connect: %v", err)
		return ErrConnectionFailed
	}
	if err := migrate(ctx, db); err != nil {
		return err
	}
	s.db = db
	return nil
}

// migrate creates the events table. The pool of db is closed on failure.
func migrate(ctx context.Context, db *gorm.DB) error {
	err := db.WithContext(ctx).AutoMigrate(&event{})
	if err == nil {
		return nil
	}
	if sqlDB, dbErr := db.DB(); dbErr == nil {
		if closeErr := sqlDB.Close(); closeErr != nil {
			log.Errorf("failed to close connection: %v", closeErr)
		}
	}
	return fmt.Errorf("failed to migrate events: %w", err)
}

func (s *Storage) Close(_ context.Context) error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

func (s *Storage) AddEvent(ctx context.Context, e *storage.Event) error {
	m := fromStorage(*e)
	m.ID = 0
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return fmt.Errorf("failed to add event: %w", err)
	}
	e.ID = m.ID
	return nil
}

func (s *Storage) GetEvent(ctx context.Context, id int64) (storage.Event, error) {
	var m event
	err := s.db.WithContext(ctx).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return storage.Event{}, fmt.Errorf("failed to get event with id %d: %w", id, storage.ErrNotFoundEvent)
	}
	if err != nil {
		return storage.Event{}, fmt.Errorf("failed to get event with id %d: %w", id, err)
	}
	return m.toStorage(), nil
}

func (s *Storage) ListEvents(ctx context.Context) ([]storage.Event, error) {
	var models []event
	if err := s.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	events := make([]storage.Event, 0, len(models))
	for _, m := range models {
		events = append(events, m.toStorage())
	}
	return events, nil
}

func (s *Storage) UpdateEvent(ctx context.Context, id int64, e storage.Event) (storage.Event, error) {
	res := s.db.WithContext(ctx).Model(&event{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":     e.Name,
		"date":     e.Date,
		"time":     e.Time,
		"duration": e.Duration,
	})
	if res.Error != nil {
		return storage.Event{}, fmt.Errorf("failed to update event with id %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return storage.Event{}, fmt.Errorf("failed to update event with id %d: %w", id, storage.ErrNotFoundEvent)
	}
	e.ID = id
	return e, nil
}

func (s *Storage) RemoveEvent(ctx context.Context, id int64) error {
	if err := s.db.WithContext(ctx).Delete(&event{}, id).Error; err != nil {
		return fmt.Errorf("failed to remove event with id %d: %w", id, err)
	}
	return nil
}

func (s *Storage) RemoveBefore(ctx context.Context, date string) (int64, error) {
	res := s.db.WithContext(ctx).Where(`"date" < ?`, date).Delete(&event{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to remove events before %s: %w", date, res.Error)
	}
	return res.RowsAffected, nil
}
