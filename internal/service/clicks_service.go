package service

import (
	"context"
	"strings"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"linkboard-go/constant"
	"linkboard-go/internal/model"
)

// ClicksService 把 redis 中的待落库点击计数批量回写到 links.clicks，由定时任务驱动
type ClicksService struct {
	db     *gorm.DB
	pool   *redis.Pool
	logger *zap.Logger
}

func NewClicksService(db *gorm.DB, pool *redis.Pool, logger *zap.Logger) *ClicksService {
	return &ClicksService{db: db, pool: pool, logger: logger}
}

// Flush 扫描待落库计数键并以原子自增的方式写入数据库。
// 无 redis 时为空操作（点击在解析时已直接落库）。
func (s *ClicksService) Flush(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}

	conn := s.pool.Get()
	defer func() {
		if err := conn.Close(); err != nil {
			s.logger.Error("Failed to close Redis connection", zap.Error(err))
		}
	}()

	pattern := constant.GetPendingClicksKey("*")
	prefix := constant.GetPendingClicksKey("")
	cursor := 0

	for {
		values, err := redis.Values(conn.Do("SCAN", cursor, "MATCH", pattern, "COUNT", 100))
		if err != nil {
			s.logger.Error("pending clicks scan failed", zap.Error(err))
			return err
		}

		var keys []string
		if _, err := redis.Scan(values, &cursor, &keys); err != nil {
			s.logger.Error("pending clicks scan reply parse failed", zap.Error(err))
			return err
		}

		for _, key := range keys {
			s.flushKey(ctx, conn, key, strings.TrimPrefix(key, prefix))
		}

		if cursor == 0 {
			return nil
		}
	}
}

// flushKey 取走一个计数键并回写。GETDEL 保证取值与清零原子，需要 Redis 6.2+。
func (s *ClicksService) flushKey(ctx context.Context, conn redis.Conn, key, linkID string) {
	count, err := redis.Int64(conn.Do("GETDEL", key))
	if err != nil {
		if err != redis.ErrNil {
			s.logger.Warn("pending clicks read failed", zap.String("key", key), zap.Error(err))
		}
		return
	}
	if count <= 0 {
		return
	}

	if err := s.db.WithContext(ctx).Model(&model.Link{}).
		Where("id = ?", linkID).
		UpdateColumn("clicks", gorm.Expr("clicks + ?", count)).Error; err != nil {
		s.logger.Error("clicks flush to db failed",
			zap.String("link_id", linkID),
			zap.Int64("count", count),
			zap.Error(err))
	}
}
