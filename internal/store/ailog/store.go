package ailog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const defaultRecentLimit = 50

// Record 是一次 AI 调用的审计记录。
type Record struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"ts"`
	TraceID   string    `json:"trace_id,omitempty"`
	Kind      string    `json:"kind"`
	Requested string    `json:"requested_origin"`
	Origin    string    `json:"origin"`
	Provider  string    `json:"provider_id,omitempty"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`
	Fallback  bool      `json:"fallback"`
	Error     string    `json:"error,omitempty"`
	Duration  int64     `json:"duration_ms"`
}

// Store 用 database/sql + modernc sqlite 记录 AI 调用。
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// NewStore 初始化 SQLite 存储。
func NewStore(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("ai log path 不能为空")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

// Close 关闭底层 DB。
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ai_calls (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts INTEGER NOT NULL,
			trace_id TEXT,
			kind TEXT NOT NULL,
			requested_origin TEXT,
			origin TEXT NOT NULL,
			provider_id TEXT,
			input TEXT,
			output TEXT,
			fallback INTEGER NOT NULL DEFAULT 0,
			error TEXT,
			duration_ms INTEGER
		);`,
		`CREATE INDEX IF NOT EXISTS idx_ai_calls_ts ON ai_calls(ts);`,
		`CREATE INDEX IF NOT EXISTS idx_ai_calls_kind ON ai_calls(kind);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ai log schema: %w", err)
		}
	}
	return nil
}

// Insert 写入一条记录并返回自增 ID。
func (s *Store) Insert(ctx context.Context, rec Record) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return 0, fmt.Errorf("ai log store closed")
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	res, err := s.db.ExecContext(ctx, `INSERT INTO ai_calls
		(ts, trace_id, kind, requested_origin, origin, provider_id, input, output, fallback, error, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp.UnixMilli(), rec.TraceID, rec.Kind, rec.Requested, rec.Origin, rec.Provider,
		rec.Input, rec.Output, boolToInt(rec.Fallback), rec.Error, rec.Duration)
	if err != nil {
		return 0, fmt.Errorf("insert ai log: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns the newest records first. limit <= 0 uses 50.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, fmt.Errorf("ai log store closed")
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, ts, trace_id, kind, requested_origin, origin, provider_id,
		input, output, fallback, error, duration_ms
		FROM ai_calls ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query ai log: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var ts int64
		var fallback int
		var trace, requested, provider, input, output, errText sql.NullString
		var duration sql.NullInt64
		if err := rows.Scan(&rec.ID, &ts, &trace, &rec.Kind, &requested, &rec.Origin, &provider,
			&input, &output, &fallback, &errText, &duration); err != nil {
			return nil, fmt.Errorf("scan ai log: %w", err)
		}
		rec.Timestamp = time.UnixMilli(ts)
		rec.TraceID = trace.String
		rec.Requested = requested.String
		rec.Provider = provider.String
		rec.Input = input.String
		rec.Output = output.String
		rec.Fallback = fallback != 0
		rec.Error = errText.String
		rec.Duration = duration.Int64
		out = append(out, rec)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
