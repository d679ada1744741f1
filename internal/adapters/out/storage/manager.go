package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"logistics/internal/adapters/out/storage/gormerr"
	"logistics/internal/core/ports"
	"logistics/internal/pkg/errs"
	"logistics/internal/pkg/metrics"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Config selects the engines the manager may use. An empty PrimaryDSN skips
// the primary engine and goes straight to the fallback file.
type Config struct {
	PrimaryDSN   string
	FallbackPath string
}

// Statement is a parameterized SQL text with positional "?" placeholders.
type Statement struct {
	sql    string
	params int
}

// SQL returns the statement text.
func (s Statement) SQL() string {
	return s.sql
}

// Params is the number of placeholders the statement expects.
func (s Statement) Params() int {
	return s.params
}

// Manager owns the single shared storage connection.
//
// It is created explicitly at startup, connected once with Connect and closed
// at shutdown. The connection pool is capped at one open connection, so all
// statements are serialized by the driver.
type Manager struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.RWMutex
	engine Engine
	db     *gorm.DB

	errMu   sync.Mutex
	lastErr error
}

// untracked marks statements whose failures are expected and handled by the
// caller, such as "already exists" answers while creating the schema.
const untracked = "logistics:untracked"

func NewManager(cfg Config, logger *slog.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		logger: logger.With("component", "storage"),
	}
}

// engines lists the candidates in connection order: primary, then fallback.
func (m *Manager) engines() []Engine {
	candidates := make([]Engine, 0, 2)
	if strings.TrimSpace(m.cfg.PrimaryDSN) != "" {
		candidates = append(candidates, NewPostgresEngine(m.cfg.PrimaryDSN))
	}
	return append(candidates, NewSQLiteEngine(m.cfg.FallbackPath))
}

// Connect opens the primary engine and verifies it with a probe query. When
// that fails it logs a warning and reconfigures onto the fallback engine.
// Only when every engine fails does it return an *errs.ConnectivityError
// carrying all causes.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db != nil {
		return nil
	}

	candidates := m.engines()
	names := make([]string, 0, len(candidates))
	causes := make([]error, 0, len(candidates))

	for _, engine := range candidates {
		names = append(names, engine.Name())

		db, err := open(ctx, engine, m.logger)
		if err != nil {
			causes = append(causes, fmt.Errorf("%s: %w", engine.Name(), err))
			m.logger.WarnContext(ctx, "storage engine unavailable, trying next",
				"engine", engine.Name(), "error", err)
			continue
		}

		if err := m.trackErrors(db); err != nil {
			_ = closeDB(db)
			causes = append(causes, fmt.Errorf("%s: %w", engine.Name(), err))
			continue
		}

		m.engine, m.db = engine, db
		m.setLastError(nil)
		metrics.SetStorageEngine(engine.Name(), "postgres", "sqlite")
		m.logger.InfoContext(ctx, "storage connected", "engine", engine.Name())
		return nil
	}

	err := errs.NewConnectivityError(names, errors.Join(causes...))
	m.setLastError(err)
	return err
}

// trackErrors records every failed statement on db as the last error, so
// repository failures are retrievable too. Plain misses are not failures.
func (m *Manager) trackErrors(db *gorm.DB) error {
	track := func(tx *gorm.DB) {
		if tx.Error == nil || errors.Is(tx.Error, gorm.ErrRecordNotFound) {
			return
		}
		if _, skip := tx.Get(untracked); skip {
			return
		}
		m.setLastError(tx.Error)
	}

	const name = "logistics:last_error"
	cb := db.Callback()
	return errors.Join(
		cb.Create().After("gorm:create").Register(name, track),
		cb.Query().After("gorm:query").Register(name, track),
		cb.Update().After("gorm:update").Register(name, track),
		cb.Delete().After("gorm:delete").Register(name, track),
		cb.Row().After("gorm:row").Register(name, track),
		cb.Raw().After("gorm:raw").Register(name, track),
	)
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func open(ctx context.Context, engine Engine, logger *slog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(engine.Dialector(), &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(logger),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("probe: %w", err)
	}
	return db, nil
}

// newGormLogger routes gorm's slow-query and error lines into the storage
// logger. Misses are answered as *errs.ObjectNotFoundError, so they are not logged.
func newGormLogger(logger *slog.Logger) gormlogger.Interface {
	return gormlogger.New(slog.NewLogLogger(logger.Handler(), slog.LevelWarn), gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}

// Engine returns the engine in use, or nil before Connect succeeded.
func (m *Manager) Engine() Engine {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.engine
}

// DB returns the shared gorm handle, or nil before Connect succeeded.
func (m *Manager) DB() *gorm.DB {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.db
}

func (m *Manager) IsConnected() bool {
	return m.DB() != nil
}

// LastError returns the most recent storage failure: a failed connection, a
// failed statement from any repository or a rejected call. Not-found answers
// do not count.
func (m *Manager) LastError() error {
	m.errMu.Lock()
	defer m.errMu.Unlock()
	return m.lastErr
}

func (m *Manager) setLastError(err error) {
	m.errMu.Lock()
	m.lastErr = err
	m.errMu.Unlock()
}

// Close releases the connection. The manager can be connected again afterwards.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.db == nil {
		return nil
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	m.db, m.engine = nil, nil
	return sqlDB.Close()
}

// Ping runs the probe query on the open connection.
func (m *Manager) Ping(ctx context.Context) error {
	db, err := m.conn()
	if err != nil {
		return err
	}
	return m.record(db.WithContext(ctx).Exec("SELECT 1").Error)
}

// UnitOfWorkFactory returns a factory bound to the open connection.
func (m *Manager) UnitOfWorkFactory() (*GormUnitOfWorkFactory, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.db == nil {
		return nil, errs.ErrStorageUnavailable
	}
	return NewGormUnitOfWorkFactory(m.db, m.engine), nil
}

// UnitOfWork creates a unit of work on the open connection.
func (m *Manager) UnitOfWork() (ports.UnitOfWork, error) {
	f, err := m.UnitOfWorkFactory()
	if err != nil {
		return nil, err
	}
	return f.Create(), nil
}

// Prepare checks a statement and counts its "?" placeholders. Values are
// always bound at execution, never interpolated into the text.
func (m *Manager) Prepare(query string) (Statement, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Statement{}, errs.NewValueIsRequiredError("statement")
	}
	return Statement{sql: query, params: strings.Count(query, "?")}, nil
}

// Execute runs stmt with args and returns the number of affected rows.
func (m *Manager) Execute(ctx context.Context, stmt Statement, args ...any) (int64, error) {
	db, err := m.conn()
	if err != nil {
		return 0, err
	}
	if err := checkArgs(stmt, args); err != nil {
		return 0, err
	}

	result := db.WithContext(ctx).Exec(stmt.sql, args...)
	if result.Error != nil {
		return 0, m.record(gormerr.Translate(result.Error, "statement"))
	}
	return result.RowsAffected, nil
}

// Query runs stmt with args and scans the rows into dest (a pointer to a
// struct, a slice of structs or a scalar).
func (m *Manager) Query(ctx context.Context, stmt Statement, dest any, args ...any) error {
	db, err := m.conn()
	if err != nil {
		return err
	}
	if err := checkArgs(stmt, args); err != nil {
		return err
	}
	return m.record(db.WithContext(ctx).Raw(stmt.sql, args...).Scan(dest).Error)
}

// EnsureSchema creates the tables, indexes and (on the primary engine) the
// order number sequence and trigger. Running it again is harmless: every
// statement is IF NOT EXISTS and "already exists" answers are ignored.
func (m *Manager) EnsureSchema(ctx context.Context) error {
	db, err := m.conn()
	if err != nil {
		return err
	}
	engine := m.Engine()

	for _, statement := range engine.SchemaStatements() {
		err := db.Set(untracked, true).WithContext(ctx).Exec(statement).Error
		if err == nil {
			continue
		}
		if engine.IsAlreadyExists(err) {
			m.logger.DebugContext(ctx, "schema object already exists", "error", err)
			continue
		}
		return m.record(fmt.Errorf("ensure schema on %s: %w", engine.Name(), err))
	}

	m.logger.InfoContext(ctx, "schema ready", "engine", engine.Name())
	return nil
}

func (m *Manager) conn() (*gorm.DB, error) {
	db := m.DB()
	if db == nil {
		return nil, errs.ErrStorageUnavailable
	}
	return db, nil
}

func (m *Manager) record(err error) error {
	if err == nil {
		return nil
	}
	m.setLastError(err)
	return err
}

func checkArgs(stmt Statement, args []any) error {
	if len(args) != stmt.params {
		return errs.NewValueIsInvalidErrorWithCause("statement arguments",
			fmt.Errorf("expected %d, got %d", stmt.params, len(args)))
	}
	return nil
}
