package storage

import (
	"context"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"urlsnap/internal/logger"
	"urlsnap/pkg/model"
)

// SnapshotRecord 会话结果持久化模型：一行对应一次会话中单个 URL 的结果
type SnapshotRecord struct {
	ID        uint `gorm:"primarykey"`
	CreatedAt time.Time
	SessionID string `gorm:"index"`
	URL       string
	Filename  string
	Content   string // gzip+base64 编码内容；编码失败时为空
	Error     string
}

// Store 会话历史存储
type Store struct {
	db  *gorm.DB
	log logger.Logger
}

// Open 打开 sqlite 数据库并完成迁移
func Open(dsn, prefix string, l logger.Logger) (*Store, error) {
	if l == nil {
		l = logger.NewNop()
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         NewGormLogger(l),
		NamingStrategy: schema.NamingStrategy{TablePrefix: prefix},
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&SnapshotRecord{}); err != nil {
		return nil, err
	}
	return &Store{db: db, log: l}, nil
}

// SaveReport 持久化一次会话的最终结果
func (s *Store) SaveReport(ctx context.Context, id model.SessionID, report model.Report) error {
	records := make([]SnapshotRecord, 0, len(report))
	for u, entry := range report {
		rec := SnapshotRecord{
			SessionID: string(id),
			URL:       u,
			Filename:  entry.Filename,
			Error:     entry.Error,
		}
		if entry.Content != nil {
			rec.Content = *entry.Content
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&records).Error
}

// History 查询某个会话保存的全部结果
func (s *Store) History(ctx context.Context, id model.SessionID) ([]SnapshotRecord, error) {
	var records []SnapshotRecord
	err := s.db.WithContext(ctx).Where("session_id = ?", string(id)).Order("id").Find(&records).Error
	return records, err
}
