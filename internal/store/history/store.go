package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"netscope/internal/network"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DefaultMaxEntries = 100

// Entry 是一次批量分析保存下来的统计结果。
type Entry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Total     int       `json:"total"`
	Stats     Summary   `json:"stats"`
}

// Summary 是持久化后的 AggregateStats。逐条分析结果按原始 JSON 保留，
// 读取时不再还原成具体的详情类型。
type Summary struct {
	TotalNetworks    int                             `json:"total_networks"`
	NetworkTypes     map[network.NetworkType]int     `json:"network_types"`
	AverageSignal    map[network.NetworkType]float64 `json:"average_signal"`
	SecurityStats    network.SecurityStats           `json:"security_stats"`
	SignalFallbacks  int                             `json:"signal_fallbacks"`
	Timestamp        time.Time                       `json:"timestamp"`
	DetailedAnalysis json.RawMessage                 `json:"detailed_analysis,omitempty"`
}

type entryModel struct {
	Seq       int64          `gorm:"primaryKey;autoIncrement"`
	ID        string         `gorm:"size:36;uniqueIndex"`
	CreatedAt time.Time      `gorm:"index"`
	Total     int
	Payload   datatypes.JSON `gorm:"type:json"`
}

func (entryModel) TableName() string { return "stats_history" }

// Store 用 gorm + SQLite 保存统计历史，只保留最近 maxEntries 条。
type Store struct {
	db         *gorm.DB
	maxEntries int
	now        func() time.Time
}

// NewStore opens (or creates) the history database at path.
func NewStore(path string, maxEntries int) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("history store: 数据库路径不能为空")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	return newStore(db, maxEntries)
}

func newStore(db *gorm.DB, maxEntries int) (*Store, error) {
	if err := db.AutoMigrate(&entryModel{}); err != nil {
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Store{db: db, maxEntries: maxEntries, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Append 保存一条统计并裁剪超出上限的旧记录。
func (s *Store) Append(ctx context.Context, stats network.AggregateStats) (Entry, error) {
	payload, err := json.Marshal(stats)
	if err != nil {
		return Entry{}, fmt.Errorf("encode stats: %w", err)
	}
	rec := entryModel{
		ID:        uuid.NewString(),
		CreatedAt: s.now().UTC(),
		Total:     stats.TotalNetworks,
		Payload:   datatypes.JSON(payload),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return err
		}
		keep := tx.Model(&entryModel{}).Select("seq").Order("seq DESC").Limit(s.maxEntries)
		return tx.Where("seq NOT IN (?)", keep).Delete(&entryModel{}).Error
	})
	if err != nil {
		return Entry{}, fmt.Errorf("append history: %w", err)
	}
	return rec.toEntry()
}

// List returns up to limit entries, oldest first. limit <= 0 returns all
// retained entries.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	q := s.db.WithContext(ctx).Model(&entryModel{}).Order("seq DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []entryModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	out := make([]Entry, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		entry, err := rows[i].toEntry()
		if err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, nil
}

// Count 返回当前保留的条数。
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&entryModel{}).Count(&n).Error
	return n, err
}

func (m entryModel) toEntry() (Entry, error) {
	entry := Entry{ID: m.ID, CreatedAt: m.CreatedAt, Total: m.Total}
	if len(m.Payload) > 0 {
		if err := json.Unmarshal(m.Payload, &entry.Stats); err != nil {
			return Entry{}, fmt.Errorf("decode history %s: %w", m.ID, err)
		}
	}
	return entry, nil
}
