package assets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // registers "sqlite3" (cgo)
	_ "modernc.org/sqlite"          // registers "sqlite" (pure Go)
)

const (
	// DriverModernc is the pure-Go SQLite driver name.
	DriverModernc = "sqlite"

	// DriverMattn is the cgo SQLite driver name.
	DriverMattn = "sqlite3"
)

// SQLiteConfig contains configuration for the SQLite store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// Driver selects the database/sql driver: "sqlite" or "sqlite3".
	// Default: "sqlite"
	Driver string

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// Schema restricts property names per kind. Nil accepts every property.
	Schema Schema
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:        "data/assets.db",
		Driver:      DriverModernc,
		WALMode:     true,
		BusyTimeout: 5 * time.Second,
		Schema:      DefaultSchema,
	}
}

// SQLiteStore is a Store persisted in SQLite.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	mu     sync.Mutex
	logger *slog.Logger
}

// NewSQLiteStore opens the database and creates the schema.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Driver == "" {
		config.Driver = DriverModernc
	}
	if config.Driver != DriverModernc && config.Driver != DriverMattn {
		return nil, NewStoreError("sqlite", "open", fmt.Errorf("unknown driver %q", config.Driver))
	}
	if config.Path == "" {
		return nil, NewStoreError("sqlite", "open", errors.New("path cannot be empty"))
	}

	logger := slog.Default().With("component", "assets.sqlite")

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, NewStoreError("sqlite", "open", err)
	}

	// A single connection keeps ":memory:" databases and pragmas coherent.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite asset store initialized",
		"path", config.Path,
		"driver", config.Driver,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewStoreError("sqlite", "enable_wal", err)
		}
	}

	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
		return NewStoreError("sqlite", "set_busy_timeout", err)
	}

	if _, err := s.db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return NewStoreError("sqlite", "enable_foreign_keys", err)
	}

	if _, err := s.db.Exec(sqliteSchema); err != nil {
		return NewStoreError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion); err != nil {
		return NewStoreError("sqlite", "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return NewStoreError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return NewStoreError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	return nil
}

// LocateOrCreate implements Store.
func (s *SQLiteStore) LocateOrCreate(ctx context.Context, kind, location, name string) (*Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	obj, err := s.load(ctx, location, name)
	switch {
	case err == nil:
		if obj.Kind != kind {
			return nil, NewStoreError("sqlite", "locate",
				fmt.Errorf("%w: %s is %s, not %s", ErrKindConflict, obj.Path(), obj.Kind, kind))
		}
		return obj, nil
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	now := time.Now().UTC()
	obj = &Object{
		ID:         uuid.New().String(),
		Kind:       kind,
		Location:   location,
		Name:       name,
		Properties: make(map[string]string),
		Links:      make(map[string]string),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := s.db.ExecContext(ctx, insertObject, obj.ID, kind, location, name, now.UnixNano(), now.UnixNano()); err != nil {
		return nil, NewStoreError("sqlite", "insert_object", err)
	}

	s.logger.Debug("object created", "kind", kind, "path", obj.Path())
	return obj, nil
}

// Lookup implements Store.
func (s *SQLiteStore) Lookup(ctx context.Context, location, name string) (*Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, location, name)
}

// ApplyProperty implements Store. The handle is updated alongside the row.
func (s *SQLiteStore) ApplyProperty(ctx context.Context, obj *Object, name, value string) error {
	if !s.config.Schema.Allows(obj.Kind, name) {
		return fmt.Errorf("%w: %s.%s", ErrUnsupportedProperty, obj.Kind, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, upsertProperty, obj.ID, name, value); err != nil {
		return NewStoreError("sqlite", "apply_property", err)
	}
	if err := s.touch(ctx, obj); err != nil {
		return err
	}

	if obj.Properties == nil {
		obj.Properties = make(map[string]string)
	}
	obj.Properties[name] = value
	return nil
}

// Link implements Store.
func (s *SQLiteStore) Link(ctx context.Context, obj *Object, slot string, target *Object) error {
	if target == nil {
		return NewStoreError("sqlite", "link", fmt.Errorf("nil target for %s", slot))
	}
	if !s.config.Schema.Allows(obj.Kind, slot) {
		return fmt.Errorf("%w: %s.%s", ErrUnsupportedProperty, obj.Kind, slot)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, upsertLink, obj.ID, slot, target.Path()); err != nil {
		return NewStoreError("sqlite", "link", err)
	}
	if err := s.touch(ctx, obj); err != nil {
		return err
	}

	if obj.Links == nil {
		obj.Links = make(map[string]string)
	}
	obj.Links[slot] = target.Path()
	return nil
}

// Reset implements Store.
func (s *SQLiteStore) Reset(ctx context.Context, obj *Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return NewStoreError("sqlite", "reset", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, deleteProperties, obj.ID); err != nil {
		return NewStoreError("sqlite", "reset", err)
	}
	if _, err := tx.ExecContext(ctx, deleteLinks, obj.ID); err != nil {
		return NewStoreError("sqlite", "reset", err)
	}
	if err := tx.Commit(); err != nil {
		return NewStoreError("sqlite", "reset", err)
	}

	obj.Properties = make(map[string]string)
	obj.Links = make(map[string]string)
	return nil
}

// Finalize implements Store.
func (s *SQLiteStore) Finalize(ctx context.Context, obj *Object) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx, finalizeObject, now.UnixNano(), obj.ID); err != nil {
		return NewStoreError("sqlite", "finalize", err)
	}
	obj.Finalized++
	obj.UpdatedAt = now
	return nil
}

// Objects implements Store.
func (s *SQLiteStore) Objects(ctx context.Context, kind string) ([]*Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, selectObjectsByKind, kind, kind)
	if err != nil {
		return nil, NewStoreError("sqlite", "list_objects", err)
	}

	var result []*Object
	for rows.Next() {
		obj, err := scanObject(rows)
		if err != nil {
			rows.Close()
			return nil, NewStoreError("sqlite", "list_objects", err)
		}
		result = append(result, obj)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, NewStoreError("sqlite", "list_objects", err)
	}
	rows.Close()

	for _, obj := range result {
		if err := s.loadDetails(ctx, obj); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Ping checks that the database is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return NewStoreError("sqlite", "ping", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return NewStoreError("sqlite", "close", err)
	}
	return nil
}

// load reads one object with its properties and links. Callers hold s.mu.
func (s *SQLiteStore) load(ctx context.Context, location, name string) (*Object, error) {
	obj, err := scanObject(s.db.QueryRowContext(ctx, selectObject, location, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, NewStoreError("sqlite", "load_object", err)
	}

	if err := s.loadDetails(ctx, obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func (s *SQLiteStore) loadDetails(ctx context.Context, obj *Object) error {
	obj.Properties = make(map[string]string)
	obj.Links = make(map[string]string)

	if err := s.readPairs(ctx, selectProperties, obj.ID, obj.Properties); err != nil {
		return NewStoreError("sqlite", "load_properties", err)
	}
	if err := s.readPairs(ctx, selectLinks, obj.ID, obj.Links); err != nil {
		return NewStoreError("sqlite", "load_links", err)
	}
	return nil
}

func (s *SQLiteStore) readPairs(ctx context.Context, query, id string, into map[string]string) error {
	rows, err := s.db.QueryContext(ctx, query, id)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return err
		}
		into[k] = v
	}
	return rows.Err()
}

func (s *SQLiteStore) touch(ctx context.Context, obj *Object) error {
	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx, touchObject, now.UnixNano(), obj.ID); err != nil {
		return NewStoreError("sqlite", "touch", err)
	}
	obj.UpdatedAt = now
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObject(row rowScanner) (*Object, error) {
	var (
		obj              Object
		created, updated int64
	)
	if err := row.Scan(&obj.ID, &obj.Kind, &obj.Location, &obj.Name, &obj.Finalized, &created, &updated); err != nil {
		return nil, err
	}
	obj.CreatedAt = time.Unix(0, created).UTC()
	obj.UpdatedAt = time.Unix(0, updated).UTC()
	return &obj, nil
}
