package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"linkboard-go/constant"
	"linkboard-go/internal/apperrors"
	"linkboard-go/internal/dto"
	"linkboard-go/internal/model"
	"linkboard-go/internal/shortener"
	"linkboard-go/pkg/utils"
)

// LinkService 短链注册中心：创建、列表、启停、删除、重定向解析
type LinkService struct {
	db      *gorm.DB
	pool    *redis.Pool
	backend shortener.Backend
	logger  *zap.Logger
}

func NewLinkService(db *gorm.DB, pool *redis.Pool, backend shortener.Backend, logger *zap.Logger) *LinkService {
	return &LinkService{
		db:      db,
		pool:    pool,
		backend: backend,
		logger:  logger,
	}
}

// CreateLink 创建短链。ownerID 为 nil 时走匿名临时模式：返回结果但不落库。
func (s *LinkService) CreateLink(ctx context.Context, ownerID *string, req dto.CreateLinkRequest) (*dto.LinkResponse, error) {
	// 参数校验（校验通过后再补全协议）
	if err := req.Validate(); err != nil {
		id := err.Error()
		return nil, apperrors.InvalidRequestError(id, validationMessage(id)).WithDetails(id)
	}
	normalized := utils.NormalizeURL(req.OriginalURL)

	// 幂等：同一用户重复提交同一 URL 时直接返回已有的活跃记录
	if ownerID != nil {
		var existing model.Link
		err := s.db.WithContext(ctx).
			Where("owner_id = ? AND original_url = ? AND is_active = ?", *ownerID, normalized, true).
			First(&existing).Error
		if err == nil {
			resp := dto.FromLink(&existing)
			return &resp, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			// 查询失败不阻断创建，仅记录
			s.logger.Warn("existing link lookup failed",
				zap.String("owner_id", *ownerID),
				zap.Error(err))
		}
	}

	result, err := s.backend.Shorten(ctx, normalized)
	if err != nil {
		s.logger.Warn("shortening backend failed",
			zap.String("url", normalized),
			zap.Error(err))
		return nil, classifyUpstreamError(err)
	}

	// 匿名临时模式：拿到短链即返回，不持久化
	if ownerID == nil {
		resp := dto.LinkResponse{
			OriginalURL: normalized,
			ShortCode:   result.Alias,
			ShortURL:    result.ShortURL,
			Title:       req.NormalizedTitle(),
		}
		return &resp, nil
	}

	// 落库前核对短码归属，同码异 URL 属于上游异常，只记录不覆盖
	var byAlias model.Link
	err = s.db.WithContext(ctx).Where("alias = ?", result.Alias).First(&byAlias).Error
	if err == nil {
		if byAlias.OriginalURL == normalized {
			if byAlias.OwnerID != nil && *byAlias.OwnerID == *ownerID {
				// 同用户同 URL，视为幂等
				resp := dto.FromLink(&byAlias)
				return &resp, nil
			}
			// 不同用户提交同一 URL，共享同一短码，各自记账
		} else {
			s.logger.Error("alias collision across different urls",
				zap.String("alias", result.Alias),
				zap.String("existing_url", byAlias.OriginalURL),
				zap.String("new_url", normalized))
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Warn("alias lookup failed", zap.String("alias", result.Alias), zap.Error(err))
	}

	link := model.Link{
		OwnerID:     ownerID,
		OriginalURL: normalized,
		Alias:       result.Alias,
		ShortURL:    result.ShortURL,
		Title:       req.NormalizedTitle(),
		IsActive:    true,
	}

	if err := s.db.WithContext(ctx).Create(&link).Error; err != nil {
		existing, insertErr := s.classifyInsertError(ctx, *ownerID, normalized, err)
		if insertErr != nil {
			return nil, insertErr
		}
		resp := dto.FromLink(existing)
		return &resp, nil
	}

	resp := dto.FromLink(&link)
	return &resp, nil
}

// validationMessage URL 校验错误的英文兜底文案，本地化仍由 MessageID 驱动
func validationMessage(id string) string {
	switch id {
	case "error.url_required":
		return "original URL is required"
	case "error.url_max_length":
		return "URL exceeds the maximum length of 2048 characters"
	default:
		return "invalid URL format"
	}
}

// isDuplicateKeyErr 唯一键冲突（MySQL 1062 及 gorm 的翻译）
func isDuplicateKeyErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate") || strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

// classifyInsertError 插入失败分类。唯一键冲突时回读已有记录返回，弥合检查与插入之间的并发窗口。
func (s *LinkService) classifyInsertError(ctx context.Context, ownerID, normalized string, err error) (*model.Link, error) {
	switch {
	case isDuplicateKeyErr(err):
		var existing model.Link
		refetchErr := s.db.WithContext(ctx).
			Where("owner_id = ? AND original_url = ? AND is_active = ?", ownerID, normalized, true).
			First(&existing).Error
		if refetchErr == nil {
			return &existing, nil
		}
		return nil, apperrors.ConflictError("error.link_exists", "link already exists").WithCause(err)
	case strings.Contains(err.Error(), "timeout") || errors.Is(err, context.DeadlineExceeded):
		return nil, apperrors.StorageTimeoutError().WithCause(err)
	default:
		s.logger.Error("link insert failed", zap.Error(err))
		return nil, apperrors.StorageError("failed to save link").WithCause(err)
	}
}

// ListLinks 分页查询用户的全部短链（含停用），按创建时间倒序
func (s *LinkService) ListLinks(ctx context.Context, ownerID string, page, limit int) (*dto.ListLinksResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10 // 默认每页10条，最大100条
	}

	db := s.db.WithContext(ctx).Model(&model.Link{}).Where("owner_id = ?", ownerID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, apperrors.StorageError("failed to count links").WithCause(err)
	}

	links := make([]dto.LinkResponse, 0)
	if total > 0 {
		var rows []model.Link
		if err := db.
			Limit(limit).
			Offset((page - 1) * limit).
			Order("created_at DESC").
			Find(&rows).Error; err != nil {
			return nil, apperrors.StorageError("failed to list links").WithCause(err)
		}
		for i := range rows {
			links = append(links, dto.FromLinkFull(&rows[i]))
		}
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return &dto.ListLinksResponse{
		Links: links,
		Pagination: dto.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}

// UpdateLinkStatus 启用/禁用短链，仅限归属用户
func (s *LinkService) UpdateLinkStatus(ctx context.Context, ownerID, id string, isActive bool) (*dto.LinkResponse, error) {
	var link model.Link
	err := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundError("error.link_not_found", "link not found")
		}
		return nil, apperrors.StorageError("failed to load link").WithCause(err)
	}

	link.IsActive = isActive
	if err := s.db.WithContext(ctx).Save(&link).Error; err != nil {
		// 重新启用时可能与另一条同 URL 的活跃记录撞唯一键
		if isDuplicateKeyErr(err) {
			return nil, apperrors.ConflictError("error.link_exists", "an active link for this URL already exists").WithCause(err)
		}
		return nil, apperrors.StorageError("failed to update link").WithCause(err)
	}

	// 状态变化后废弃重定向缓存（停用立即生效，启用清掉空值缓存）
	s.evictRedirectCache(link.Alias)

	resp := dto.FromLinkFull(&link)
	return &resp, nil
}

// DeleteLink 硬删除，仅限归属用户。删除他人或不存在的记录一律返回 NotFound。
func (s *LinkService) DeleteLink(ctx context.Context, ownerID, id string) error {
	var link model.Link
	err := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFoundError("error.link_not_found", "link not found")
		}
		return apperrors.StorageError("failed to load link").WithCause(err)
	}

	if err := s.db.WithContext(ctx).Where("id = ? AND owner_id = ?", id, ownerID).Delete(&model.Link{}).Error; err != nil {
		return apperrors.StorageError("failed to delete link").WithCause(err)
	}

	s.evictRedirectCache(link.Alias)
	return nil
}

// Resolve 按短码解析活跃记录并记一次点击。点击计数失败只记日志，不影响跳转。
func (s *LinkService) Resolve(ctx context.Context, code string) (*model.Link, error) {
	if err := utils.ValidateAlias(code); err != nil {
		return nil, apperrors.NotFoundError("error.link_not_found", "link not found")
	}

	if link, found, hit := s.readRedirectCache(code); hit {
		if !found {
			return nil, apperrors.NotFoundError("error.link_not_found", "link not found")
		}
		s.recordClick(ctx, link)
		return link, nil
	}

	// 缓存未命中，查库
	var link model.Link
	err := s.db.WithContext(ctx).Where("alias = ? AND is_active = ?", code, true).First(&link).Error
	if err != nil {
		// 缓存空值，防止缓存穿透
		s.writeRedirectCache(code, nil)
		return nil, apperrors.NotFoundError("error.link_not_found", "link not found")
	}

	s.writeRedirectCache(code, &link)
	s.recordClick(ctx, &link)

	return &link, nil
}

// readRedirectCache 返回 (记录, 是否存在, 是否命中缓存)
func (s *LinkService) readRedirectCache(alias string) (*model.Link, bool, bool) {
	if s.pool == nil {
		return nil, false, false
	}

	conn := s.pool.Get()
	defer s.closeConn(conn)

	cached, err := redis.Bytes(conn.Do("GET", constant.GetRedirectCacheKey(alias)))
	if err != nil {
		if err != redis.ErrNil {
			s.logger.Warn("redirect cache read failed",
				zap.String("alias", alias),
				zap.Error(err))
		}
		return nil, false, false
	}

	if len(cached) == 0 {
		// 空值缓存命中
		return nil, false, true
	}

	var link model.Link
	if err := json.Unmarshal(cached, &link); err != nil {
		s.logger.Warn("redirect cache unmarshal failed",
			zap.String("alias", alias),
			zap.Error(err))
		return nil, false, false
	}
	return &link, true, true
}

// writeRedirectCache link 为 nil 时写入空值缓存
func (s *LinkService) writeRedirectCache(alias string, link *model.Link) {
	if s.pool == nil {
		return
	}

	conn := s.pool.Get()
	defer s.closeConn(conn)

	key := constant.GetRedirectCacheKey(alias)
	if link == nil {
		if _, err := conn.Do("SET", key, "", "EX", constant.NegativeCacheTTL); err != nil {
			s.logger.Warn("negative cache write failed", zap.String("key", key), zap.Error(err))
		}
		return
	}

	payload, err := json.Marshal(link)
	if err != nil {
		return
	}
	if _, err := conn.Do("SET", key, payload, "EX", constant.RedirectCacheTTL); err != nil {
		s.logger.Warn("redirect cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// evictRedirectCache 删除重定向缓存键
func (s *LinkService) evictRedirectCache(alias string) {
	if s.pool == nil {
		return
	}

	conn := s.pool.Get()
	defer s.closeConn(conn)

	key := constant.GetRedirectCacheKey(alias)
	if _, err := conn.Do("DEL", key); err != nil {
		s.logger.Warn("redirect cache eviction failed", zap.String("key", key), zap.Error(err))
	}
}

// recordClick 记一次点击。有 redis 时先进待落库计数，由定时任务批量回写；
// 无 redis 时直接原子自增。两条路径都尽力而为。
func (s *LinkService) recordClick(ctx context.Context, link *model.Link) {
	if s.pool != nil {
		conn := s.pool.Get()
		defer s.closeConn(conn)

		if _, err := conn.Do("INCR", constant.GetPendingClicksKey(link.ID)); err != nil {
			s.logger.Warn("pending click increment failed",
				zap.String("link_id", link.ID),
				zap.Error(err))
		}
		return
	}

	if err := s.db.WithContext(ctx).Model(&model.Link{}).
		Where("id = ?", link.ID).
		UpdateColumn("clicks", gorm.Expr("clicks + ?", 1)).Error; err != nil {
		s.logger.Warn("click increment failed",
			zap.String("link_id", link.ID),
			zap.Error(err))
	}
}

func (s *LinkService) closeConn(conn redis.Conn) {
	if err := conn.Close(); err != nil {
		s.logger.Error("Failed to close Redis connection",
			zap.Error(err),
			zap.String("connection_type", "redis"),
		)
	}
}

// classifyUpstreamError 上游错误映射到错误分类
func classifyUpstreamError(err error) *apperrors.AppError {
	switch {
	case errors.Is(err, shortener.ErrRejected):
		return apperrors.UpstreamRejectedError().WithCause(err)
	case errors.Is(err, shortener.ErrTimeout):
		return apperrors.UpstreamTimeoutError().WithCause(err)
	case errors.Is(err, shortener.ErrRateLimited):
		return apperrors.UpstreamRateLimitedError().WithCause(err)
	case errors.Is(err, shortener.ErrMalformedResponse):
		return apperrors.UpstreamBadResponseError().WithCause(err)
	case errors.Is(err, shortener.ErrNetwork), errors.Is(err, shortener.ErrUnavailable):
		return apperrors.UpstreamUnavailableError().WithCause(err)
	default:
		return apperrors.SystemError("shortening failed").WithCause(err)
	}
}
