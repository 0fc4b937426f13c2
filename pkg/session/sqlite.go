package session

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// Defaults for the SQLite snapshot store.
const (
	DefaultCheckpointInterval = 5 * time.Minute
	DefaultBusyTimeout        = 5 * time.Second
)

// SQLiteSnapshots persists session snapshots in a SQLite database so
// conversations survive a restart.
type SQLiteSnapshots struct {
	db                 *sql.DB
	checkpointInterval time.Duration
	done               chan struct{}
	mu                 sync.RWMutex
	closeOnce          sync.Once

	saveStmt    *sql.Stmt
	loadStmt    *sql.Stmt
	deleteStmt  *sql.Stmt
	listStmt    *sql.Stmt
	cleanupStmt *sql.Stmt
}

// SQLiteConfig configures the snapshot store.
type SQLiteConfig struct {
	// Path is the database file.
	Path string

	// CheckpointInterval is how often the WAL is checkpointed.
	// Default: 5 minutes.
	CheckpointInterval time.Duration

	// BusyTimeout is how long to wait for locks.
	// Default: 5 seconds.
	BusyTimeout time.Duration
}

// NewSQLiteSnapshots opens the database at path with default settings.
func NewSQLiteSnapshots(path string) (*SQLiteSnapshots, error) {
	return NewSQLiteSnapshotsWithConfig(SQLiteConfig{Path: path})
}

// NewSQLiteSnapshotsWithConfig opens the database and creates its schema.
func NewSQLiteSnapshotsWithConfig(cfg SQLiteConfig) (*SQLiteSnapshots, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.CheckpointInterval == 0 {
		cfg.CheckpointInterval = DefaultCheckpointInterval
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = DefaultBusyTimeout
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		cfg.Path, cfg.BusyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &SQLiteSnapshots{
		db:                 db,
		checkpointInterval: cfg.CheckpointInterval,
		done:               make(chan struct{}),
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	go s.checkpointLoop()

	return s, nil
}

func (s *SQLiteSnapshots) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		stage TEXT NOT NULL,
		data TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 0,
		last_activity INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_last_activity ON sessions(last_activity);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Databases created before snapshots were versioned lack the column.
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('sessions') WHERE name = 'version'`).Scan(&n); err != nil {
		return fmt.Errorf("failed to inspect sessions table: %w", err)
	}
	if n == 0 {
		if _, err := s.db.Exec(`ALTER TABLE sessions ADD COLUMN version INTEGER NOT NULL DEFAULT 0`); err != nil {
			return fmt.Errorf("failed to add version column: %w", err)
		}
	}
	return nil
}

func (s *SQLiteSnapshots) prepareStatements() error {
	var err error

	s.saveStmt, err = s.db.Prepare(`
		INSERT INTO sessions (id, stage, data, version, last_activity, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			stage = excluded.stage,
			data = excluded.data,
			version = excluded.version,
			last_activity = excluded.last_activity
		WHERE excluded.version > sessions.version
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare save statement: %w", err)
	}

	s.loadStmt, err = s.db.Prepare(`SELECT data FROM sessions WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare load statement: %w", err)
	}

	s.deleteStmt, err = s.db.Prepare(`DELETE FROM sessions WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}

	s.listStmt, err = s.db.Prepare(`SELECT data FROM sessions ORDER BY created_at, id`)
	if err != nil {
		return fmt.Errorf("failed to prepare list statement: %w", err)
	}

	s.cleanupStmt, err = s.db.Prepare(`DELETE FROM sessions WHERE last_activity < ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare cleanup statement: %w", err)
	}

	return nil
}

// Save writes the session snapshot. A snapshot never replaces one with a
// higher version, so concurrent commits of one session persist the newest.
func (s *SQLiteSnapshots) Save(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return fmt.Errorf("session id cannot be empty")
	}

	data, err := sess.MarshalSnapshot()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.saveStmt.ExecContext(ctx,
		sess.ID,
		string(sess.Stage),
		string(data),
		sess.Version,
		sess.LastActivity.Unix(),
		sess.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load reads one snapshot. It returns nil, nil when the session is absent.
func (s *SQLiteSnapshots) Load(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, fmt.Errorf("session id cannot be empty")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	err := s.loadStmt.QueryRowContext(ctx, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return UnmarshalSnapshot([]byte(data))
}

// Delete removes a snapshot.
func (s *SQLiteSnapshots) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("session id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.deleteStmt.ExecContext(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// LoadAll returns every stored snapshot, oldest first.
func (s *SQLiteSnapshots) LoadAll(ctx context.Context) ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.listStmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		sess, err := UnmarshalSnapshot([]byte(data))
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return sessions, nil
}

// Cleanup removes snapshots inactive since before olderThan.
func (s *SQLiteSnapshots) Cleanup(ctx context.Context, olderThan time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.cleanupStmt.ExecContext(ctx, olderThan.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(deleted), nil
}

// Ping verifies the database is reachable.
func (s *SQLiteSnapshots) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the database. It is safe to call more than once.
func (s *SQLiteSnapshots) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		close(s.done)

		for _, stmt := range []*sql.Stmt{s.saveStmt, s.loadStmt, s.deleteStmt, s.listStmt, s.cleanupStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}

		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		closeErr = s.db.Close()
	})

	return closeErr
}

func (s *SQLiteSnapshots) checkpointLoop() {
	ticker := time.NewTicker(s.checkpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
		case <-s.done:
			return
		}
	}
}
