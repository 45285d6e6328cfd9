package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"linkboard-go/internal/apperrors"
	"linkboard-go/internal/dto"
	"linkboard-go/internal/i18n"
	"linkboard-go/internal/middleware"
	"linkboard-go/internal/service"
	"linkboard-go/response"
)

type LinkHandler struct {
	links  *service.LinkService
	logger *zap.Logger
}

func NewLinkHandler(links *service.LinkService, logger *zap.Logger) *LinkHandler {
	return &LinkHandler{links: links, logger: logger}
}

// CreateLinkHandler 创建短链（POST /api/links，需登录）
func (h *LinkHandler) CreateLinkHandler(c *gin.Context) {
	var req dto.CreateLinkRequest
	if !bindJSON(c, &req) {
		return
	}

	principal, ok := middleware.Principal(c)
	if !ok {
		_ = c.Error(apperrors.UnauthorizedError())
		return
	}

	resp, err := h.links.CreateLink(c.Request.Context(), &principal, req)
	if err != nil {
		h.logger.Warn("link creation failed",
			zap.Error(err),
			zap.String("owner_id", principal),
		)
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(resp, i18n.T(c.Request.Context(), "msg.success")))
}

// ShortenHandler 公共缩短入口（POST /api/shorten）。
// 已登录走落库路径；匿名返回临时短链，不持久化。
func (h *LinkHandler) ShortenHandler(c *gin.Context) {
	var req dto.CreateLinkRequest
	if !bindJSON(c, &req) {
		return
	}

	var ownerID *string
	if principal, ok := middleware.Principal(c); ok {
		ownerID = &principal
	}

	resp, err := h.links.CreateLink(c.Request.Context(), ownerID, req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(resp, i18n.T(c.Request.Context(), "msg.success")))
}

// ListLinksHandler 分页查询当前用户的短链（GET /api/links?page=&limit=）
func (h *LinkHandler) ListLinksHandler(c *gin.Context) {
	principal, ok := middleware.Principal(c)
	if !ok {
		_ = c.Error(apperrors.UnauthorizedError())
		return
	}

	pageStr := c.DefaultQuery("page", "1")
	limitStr := c.DefaultQuery("limit", "10")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		_ = c.Error(apperrors.InvalidRequestError("error.page_invalid", "page must be a positive integer"))
		return
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 || limit > 100 {
		_ = c.Error(apperrors.InvalidRequestError("error.limit_invalid", "limit must be between 1 and 100"))
		return
	}

	resp, err := h.links.ListLinks(c.Request.Context(), principal, page, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(resp, i18n.T(c.Request.Context(), "msg.success")))
}

// UpdateLinkStatusHandler 启用/禁用短链（PUT /api/links/:id）
func (h *LinkHandler) UpdateLinkStatusHandler(c *gin.Context) {
	principal, ok := middleware.Principal(c)
	if !ok {
		_ = c.Error(apperrors.UnauthorizedError())
		return
	}

	id := c.Param("id")
	if id == "" {
		_ = c.Error(apperrors.InvalidRequestError("error.id_invalid", "invalid link id"))
		return
	}

	var req dto.UpdateLinkStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.links.UpdateLinkStatus(c.Request.Context(), principal, id, *req.IsActive)
	if err != nil {
		h.logger.Warn("link status update failed",
			zap.Error(err),
			zap.String("id", id),
			zap.String("owner_id", principal),
		)
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(resp, i18n.T(c.Request.Context(), "msg.link_updated")))
}

// DeleteLinkHandler 硬删除短链（DELETE /api/links/:id）
func (h *LinkHandler) DeleteLinkHandler(c *gin.Context) {
	principal, ok := middleware.Principal(c)
	if !ok {
		_ = c.Error(apperrors.UnauthorizedError())
		return
	}

	id := c.Param("id")
	if id == "" {
		_ = c.Error(apperrors.InvalidRequestError("error.id_invalid", "invalid link id"))
		return
	}

	if err := h.links.DeleteLink(c.Request.Context(), principal, id); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK("", i18n.T(c.Request.Context(), "msg.link_deleted")))
}

// RedirectHandler 短码跳转（GET /s/:code）
func (h *LinkHandler) RedirectHandler(c *gin.Context) {
	code := c.Param("code")

	link, err := h.links.Resolve(c.Request.Context(), code)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Redirect(http.StatusFound, link.OriginalURL)
}
