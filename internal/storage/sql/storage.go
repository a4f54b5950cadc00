package sqlstorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/lomoval/personal-calendar/internal/storage"
	log "github.com/sirupsen/logrus"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var ErrConnectionFailed = errors.New("failed to connect")

const dbErrCheckViolation = "23514"

const eventColumns = "id, title, description, start_date, end_date, color, created_at"

type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

type SQLiteConfig struct {
	Path string
}

type Storage struct {
	driver string
	dsn    string
	db     *sqlx.DB
	now    func() time.Time
}

func NewPostgres(config Config) *Storage {
	return &Storage{
		driver: DriverPostgres,
		dsn: fmt.Sprintf(
			"sslmode=disable host=%s port=%d dbname=%s user=%s password=%s",
			config.Host, config.Port, config.Database, config.Username, config.Password),
		now: time.Now,
	}
}

func NewSQLite(config SQLiteConfig) *Storage {
	return &Storage{driver: DriverSQLite, dsn: config.Path, now: time.Now}
}

func (s *Storage) Connect(ctx context.Context) error {
	db, err := sqlx.ConnectContext(ctx, s.driver, s.dsn)
	if err != nil {
		log.Errorf("failed to connect: %v", err)
		return ErrConnectionFailed
	}
	if s.driver == DriverSQLite {
		// One connection serializes writers and keeps ":memory:" databases alive.
		db.SetMaxOpenConns(1)
	}
	s.db = db

	if err := s.migrate(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
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
	e.CreatedAt = storage.NewCreatedAt(s.now())
	err := s.db.GetContext(
		ctx,
		&e.ID,
		s.db.Rebind("INSERT INTO events (title, description, start_date, end_date, color, created_at) "+
			"VALUES (?, ?, ?, ?, ?, ?) RETURNING id"),
		e.Title, e.Description, e.StartDate, e.EndDate, e.Color, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add event: %w", translateError(err))
	}
	return nil
}

func (s *Storage) GetEvent(ctx context.Context, id int64) (storage.Event, error) {
	var e storage.Event
	err := s.db.GetContext(ctx, &e, s.db.Rebind("SELECT "+eventColumns+" FROM events WHERE id = ?"), id)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Event{}, fmt.Errorf("failed to get event with id %d: %w", id, storage.ErrNotFoundEvent)
	}
	return e, err
}

func (s *Storage) UpdateEvent(ctx context.Context, id int64, e storage.Event) (storage.Event, error) {
	var updated storage.Event
	err := s.db.GetContext(
		ctx,
		&updated,
		s.db.Rebind("UPDATE events SET title = ?, description = ?, start_date = ?, end_date = ?, color = ? "+
			"WHERE id = ? RETURNING "+eventColumns),
		e.Title, e.Description, e.StartDate, e.EndDate, e.Color, id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.Event{}, fmt.Errorf("failed to update event with id %d: %w", id, storage.ErrNotFoundEvent)
	}
	if err != nil {
		return storage.Event{}, fmt.Errorf("failed to update event with id %d: %w", id, translateError(err))
	}
	return updated, nil
}

func (s *Storage) RemoveEvent(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind("DELETE FROM events WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("failed to remove event with id %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to remove event with id %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("failed to remove event with id %d: %w", id, storage.ErrNotFoundEvent)
	}
	return nil
}

func (s *Storage) GetEventsForMonth(ctx context.Context, year int, month time.Month) ([]storage.Event, error) {
	from, to := storage.MonthRange(year, month)
	return s.selectByRange(ctx, from, to)
}

func (s *Storage) CountEvents(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM events")
	return count, err
}

// Select by start date in range [from:to).
func (s *Storage) selectByRange(ctx context.Context, from string, to string) ([]storage.Event, error) {
	events := make([]storage.Event, 0)
	err := s.db.SelectContext(
		ctx,
		&events,
		s.db.Rebind("SELECT "+eventColumns+" FROM events "+
			"WHERE start_date >= ? AND start_date < ? ORDER BY start_date, id"),
		from,
		to,
	)
	return events, err
}

func (s *Storage) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createSchemaVersion); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	var current int
	if err := s.db.GetContext(ctx, &current, "SELECT COALESCE(MAX(version), 0) FROM schema_version"); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	for _, m := range migrations[s.driver] {
		if m.version <= current {
			continue
		}
		if err := s.apply(ctx, m); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
		log.Debugf("applied %s migration v%d", s.driver, m.version)
	}
	return nil
}

func (s *Storage) apply(ctx context.Context, m migration) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, tx.Rebind("INSERT INTO schema_version (version) VALUES (?)"), m.version); err != nil {
		return err
	}
	return tx.Commit()
}

func translateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == dbErrCheckViolation {
		return fmt.Errorf("%s: %w", pqErr.Message, storage.ErrIncorrectEventTime)
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		if code := sqliteErr.Code(); code == sqlite3.SQLITE_CONSTRAINT_CHECK || code == sqlite3.SQLITE_CONSTRAINT {
			return fmt.Errorf("%s: %w", sqliteErr.Error(), storage.ErrIncorrectEventTime)
		}
	}
	return err
}
