package sqlstorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // registers the "postgres" driver
	"github.com/lomoval/ai-calendar/internal/storage"
	"github.com/lomoval/ai-calendar/internal/storage/sql/migrations"
	"github.com/pressly/goose/v3"
	log "github.com/sirupsen/logrus"
)

var ErrConnectionFailed = errors.New("failed to connect")

const (
	DriverPQ  = "postgres"
	DriverPGX = "pgx"
)

const selectEvents = `SELECT id, name, "date", "time", duration FROM events`

type Config struct {
	Driver   string
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

type Storage struct {
	driver   string
	host     string
	port     int
	database string
	username string
	password string
	db       *sqlx.DB
}

func New(config Config) *Storage {
	driver := config.Driver
	if driver == "" {
		driver = DriverPQ
	}
	return &Storage{
		driver:   driver,
		host:     config.Host,
		port:     config.Port,
		database: config.Database,
		username: config.Username,
		password: config.Password,
	}
}

// Connect opens the connection pool and applies pending migrations.
func (s *Storage) Connect(ctx context.Context) error {
	db, err := sqlx.ConnectContext(
		ctx,
		s.driver,
		fmt.Sprintf(
			"sslmode=disable host=%s port=%d dbname=%s user=%s password=%s",
			s.host, s.port, s.database, s.username, s.password),
	)
	if err != nil {
		log.Errorf("failed to connect: %v", err)
		return ErrConnectionFailed
	}

	if err := migrate(ctx, db.DB); err != nil {
		db.Close()
		return err
	}
	s.db = db
	return nil
}

func (s *Storage) Close(_ context.Context) error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

func (s *Storage) AddEvent(ctx context.Context, e *storage.Event) error {
	err := s.db.GetContext(
		ctx,
		&e.ID,
		`INSERT INTO events(name, "date", "time", duration) VALUES($1, $2, $3, $4) RETURNING id`,
		e.Name, e.Date, e.Time, e.Duration)
	if err != nil {
		return fmt.Errorf("failed to add event: %w", err)
	}
	return nil
}

func (s *Storage) GetEvent(ctx context.Context, id int64) (storage.Event, error) {
	var e storage.Event
	err := s.db.GetContext(ctx, &e, selectEvents+" WHERE id=$1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Event{}, fmt.Errorf("failed to get event with id %d: %w", id, storage.ErrNotFoundEvent)
	}
	if err != nil {
		return storage.Event{}, fmt.Errorf("failed to get event with id %d: %w", id, err)
	}
	return e, nil
}

func (s *Storage) ListEvents(ctx context.Context) ([]storage.Event, error) {
	events := make([]storage.Event, 0)
	if err := s.db.SelectContext(ctx, &events, selectEvents+" ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	return events, nil
}

func (s *Storage) UpdateEvent(ctx context.Context, id int64, e storage.Event) (storage.Event, error) {
	var found bool
	err := s.db.GetContext(
		ctx,
		&found,
		`UPDATE events SET name=$2, "date"=$3, "time"=$4, duration=$5 WHERE id=$1 RETURNING TRUE`,
		id,
		e.Name,
		e.Date,
		e.Time,
		e.Duration,
	)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && !found) {
		return storage.Event{}, fmt.Errorf("failed to update event with id %d: %w", id, storage.ErrNotFoundEvent)
	}
	if err != nil {
		return storage.Event{}, fmt.Errorf("failed to update event with id %d: %w", id, err)
	}
	e.ID = id
	return e, nil
}

func (s *Storage) RemoveEvent(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM events WHERE id=$1", id); err != nil {
		return fmt.Errorf("failed to remove event with id %d: %w", id, err)
	}
	return nil
}

func (s *Storage) RemoveBefore(ctx context.Context, date string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE "date" < $1`, date)
	if err != nil {
		return 0, fmt.Errorf("failed to remove events before %s: %w", date, err)
	}
	return res.RowsAffected()
}

func migrate(ctx context.Context, db *sql.DB) error {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("failed to prepare migrations: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, r := range results {
		log.WithField("version", r.Source.Version).WithField("duration", r.Duration).Info("migration applied")
	}
	return nil
}
