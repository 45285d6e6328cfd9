package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"linkboard-go/internal/apperrors"
	"linkboard-go/internal/model"
	"linkboard-go/response"
)

// BlocklistService 域名黑名单：本地短链后端拒绝名单中的目标域名
type BlocklistService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewBlocklistService(db *gorm.DB, logger *zap.Logger) *BlocklistService {
	return &BlocklistService{db: db, logger: logger}
}

// Create 添加黑名单域名
func (s *BlocklistService) Create(ctx context.Context, domain string) error {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return apperrors.InvalidRequestError("error.domain_required", "domain is required")
	}

	var existing model.BlockedDomain
	if err := s.db.WithContext(ctx).Where("domain = ?", domain).First(&existing).Error; err == nil {
		return apperrors.ConflictError("error.domain_exists", "domain already blocked")
	}

	blocked := &model.BlockedDomain{Domain: domain}
	if err := s.db.WithContext(ctx).Create(blocked).Error; err != nil {
		s.logger.Warn("blocked domain insert failed", zap.String("domain", domain), zap.Error(err))
		return apperrors.StorageError("failed to block domain").WithCause(err)
	}
	return nil
}

// List 分页查询黑名单
func (s *BlocklistService) List(ctx context.Context, page, size int, domain string) (*response.PageResponse[model.BlockedDomain], error) {
	// 参数校验
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 10
	}

	db := s.db.WithContext(ctx).Model(&model.BlockedDomain{})
	if domain != "" {
		db = db.Where("domain LIKE ?", "%"+domain+"%")
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, apperrors.StorageError("failed to count blocked domains").WithCause(err)
	}

	list := make([]model.BlockedDomain, 0)
	if total > 0 {
		if err := db.
			Limit(size).
			Offset((page - 1) * size).
			Order("id DESC").
			Find(&list).Error; err != nil {
			return nil, apperrors.StorageError("failed to list blocked domains").WithCause(err)
		}
	}

	totalPages := int((total + int64(size) - 1) / int64(size))

	return &response.PageResponse[model.BlockedDomain]{
		Pagination: response.Pagination{
			Page:       page,
			Limit:      size,
			Total:      total,
			TotalPages: totalPages,
		},
		List: list,
	}, nil
}

// Delete 删除黑名单域名
func (s *BlocklistService) Delete(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&model.BlockedDomain{}, id)
	if result.Error != nil {
		return apperrors.StorageError("failed to delete blocked domain").WithCause(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFoundError("error.domain_not_found", "blocked domain not found")
	}
	return nil
}

// IsBlocked 目标域名是否在黑名单中（大小写不敏感，包含父域名匹配）
func (s *BlocklistService) IsBlocked(ctx context.Context, host string) (bool, error) {
	host = strings.ToLower(host)
	if host == "" {
		return false, nil
	}

	// 逐级剥离子域名，blocked.example 同时拦截 a.blocked.example
	candidates := []string{host}
	for {
		idx := strings.Index(host, ".")
		if idx < 0 {
			break
		}
		host = host[idx+1:]
		if strings.Contains(host, ".") {
			candidates = append(candidates, host)
		}
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&model.BlockedDomain{}).
		Where("domain IN ?", candidates).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
