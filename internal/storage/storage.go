package storage

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	RunStatusSent    = "sent"
	RunStatusSkipped = "skipped"
	RunStatusFailed  = "failed"

	// 列表缓存固定取最近 maxRuns 条，按 limit 截取
	maxRuns        = 100
	recentCacheKey = "runs:recent"
	recentCacheTTL = 5 * time.Minute
)

// Run 每次触发的发送记录，只用于查询历史，不参与去重
type Run struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	FiredAt    time.Time         `gorm:"index" json:"firedAt"`
	Status     string            `gorm:"size:16;index" json:"status"`
	LinkCount  int               `json:"linkCount"`
	ErrorCount int               `json:"errorCount"`
	Recipient  string            `gorm:"size:256" json:"recipient"`
	Error      string            `gorm:"size:1024" json:"error,omitempty"`
	ExtraData  datatypes.JSONMap `gorm:"type:jsonb" json:"extraData"`

	CreatedAt time.Time `json:"createdAt"`
}

type Store struct {
	DB     *gorm.DB
	Redis  *redis.Client
	logger *zap.Logger
}

// NewStore redisAddr 为空时不启用缓存
func NewStore(dsn, redisAddr string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	if err := db.AutoMigrate(&Run{}); err != nil {
		return nil, errors.Wrap(err, "migrate runs")
	}

	s := &Store{DB: db, logger: logger}
	if redisAddr == "" {
		return s, nil
	}

	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping failed", zap.Error(err))
	}
	s.Redis = rdb
	return s, nil
}

// NewRun 由一次采集的结果构造记录
func NewRun(firedAt time.Time, status string, lines []string, links, errs int, recipient string, err error) *Run {
	r := &Run{
		FiredAt:    firedAt,
		Status:     status,
		LinkCount:  links,
		ErrorCount: errs,
		Recipient:  recipient,
		ExtraData:  datatypes.JSONMap{"lines": lines},
	}
	if err != nil {
		r.Error = truncateRunes(strings.ToValidUTF8(err.Error(), "\uFFFD"), 1024)
	}
	return r
}

// SaveRun 写入一条记录并让列表缓存失效
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	if err := s.DB.WithContext(ctx).Create(run).Error; err != nil {
		return errors.Wrap(err, "save run")
	}
	if s.Redis != nil {
		if err := s.Redis.Del(ctx, recentCacheKey).Err(); err != nil {
			s.logger.Warn("invalidate runs cache failed", zap.Error(err))
		}
	}
	return nil
}

// ListRuns 按触发时间倒序返回最近的记录，优先读 Redis
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > maxRuns {
		limit = maxRuns
	}

	var list []Run
	if ok := getJSON(ctx, s.Redis, recentCacheKey, &list); ok {
		return head(list, limit), nil
	}

	if err := s.DB.WithContext(ctx).Order("fired_at DESC").Limit(maxRuns).Find(&list).Error; err != nil {
		return nil, errors.Wrap(err, "list runs")
	}
	if len(list) > 0 {
		setJSON(ctx, s.Redis, recentCacheKey, list, recentCacheTTL)
	}
	return head(list, limit), nil
}

func head(list []Run, limit int) []Run {
	if len(list) > limit {
		return list[:limit]
	}
	return list
}

// truncateRunes 按 rune 截断，保证不超过字段长度
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(strings.TrimSpace(s))
	if len(rs) <= limit {
		return string(rs)
	}
	return string(rs[:limit])
}
