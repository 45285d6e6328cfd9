package dto

import (
	"strings"
	"time"

	"linkboard-go/internal/model"
	"linkboard-go/pkg/utils"
)

// CreateLinkRequest 用于创建短链的请求参数
type CreateLinkRequest struct {
	OriginalURL string `json:"originalUrl" binding:"required" msg:"error.url_required"`
	Title       string `json:"title" binding:"max=255"`
}

// Validate 自定义验证逻辑（校验后再补全协议）
func (r *CreateLinkRequest) Validate() error {
	return utils.ValidateOriginalURL(r.OriginalURL)
}

// NormalizedTitle 去除首尾空白，空串视为未填写
func (r *CreateLinkRequest) NormalizedTitle() *string {
	t := strings.TrimSpace(r.Title)
	if t == "" {
		return nil
	}
	return &t
}

// UpdateLinkStatusRequest 用于启用/禁用短链的请求参数
type UpdateLinkStatusRequest struct {
	IsActive *bool `json:"isActive" binding:"required" msg:"error.invalid_request"`
}

// LinkResponse 短链对外视图
type LinkResponse struct {
	ID          string     `json:"id,omitempty"`
	OriginalURL string     `json:"originalUrl"`
	ShortCode   string     `json:"shortCode"`
	ShortURL    string     `json:"shortUrl"`
	Title       *string    `json:"title,omitempty"`
	IsActive    *bool      `json:"isActive,omitempty"`
	Clicks      *int64     `json:"clicks,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// FromLink 创建/查询场景的精简投影
func FromLink(l *model.Link) LinkResponse {
	return LinkResponse{
		ID:          l.ID,
		OriginalURL: l.OriginalURL,
		ShortCode:   l.Alias,
		ShortURL:    l.ShortURL,
		Title:       l.Title,
		CreatedAt:   l.CreatedAt,
	}
}

// FromLinkFull 列表/更新场景的完整投影
func FromLinkFull(l *model.Link) LinkResponse {
	isActive := l.IsActive
	clicks := l.Clicks
	updatedAt := l.UpdatedAt
	resp := FromLink(l)
	resp.IsActive = &isActive
	resp.Clicks = &clicks
	resp.UpdatedAt = &updatedAt
	return resp
}

// ListLinksResponse 分页的短链列表
type ListLinksResponse struct {
	Links      []LinkResponse `json:"links"`
	Pagination Pagination     `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}
