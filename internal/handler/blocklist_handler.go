package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"linkboard-go/internal/apperrors"
	"linkboard-go/internal/dto"
	"linkboard-go/internal/i18n"
	"linkboard-go/internal/service"
	"linkboard-go/response"
)

type BlocklistHandler struct {
	blocklist *service.BlocklistService
	logger    *zap.Logger
}

func NewBlocklistHandler(blocklist *service.BlocklistService, logger *zap.Logger) *BlocklistHandler {
	return &BlocklistHandler{blocklist: blocklist, logger: logger}
}

// CreateBlockedDomainHandler 添加黑名单域名（POST /api/blocklist）
func (h *BlocklistHandler) CreateBlockedDomainHandler(c *gin.Context) {
	var req dto.CreateBlockedDomainRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.blocklist.Create(c.Request.Context(), req.Domain); err != nil {
		h.logger.Warn("blocked domain creation failed",
			zap.Error(err),
			zap.String("domain", req.Domain),
		)
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK("", i18n.T(c.Request.Context(), "msg.domain_added")))
}

// ListBlockedDomainsHandler 分页查询黑名单（GET /api/blocklist?domain=&page=&limit=）
func (h *BlocklistHandler) ListBlockedDomainsHandler(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	limitStr := c.DefaultQuery("limit", "10")
	domain := c.DefaultQuery("domain", "")

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

	resp, err := h.blocklist.List(c.Request.Context(), page, limit, domain)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(resp, i18n.T(c.Request.Context(), "msg.success")))
}

// DeleteBlockedDomainHandler 删除黑名单域名（DELETE /api/blocklist/:id）
func (h *BlocklistHandler) DeleteBlockedDomainHandler(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id < 1 {
		_ = c.Error(apperrors.InvalidRequestError("error.id_invalid", "invalid id"))
		return
	}

	if err := h.blocklist.Delete(c.Request.Context(), uint(id)); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK("", i18n.T(c.Request.Context(), "msg.domain_deleted")))
}
