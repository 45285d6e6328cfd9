package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gomodule/redigo/redis"
	"gorm.io/gorm"

	"linkboard-go/response"
)

type HealthHandler struct {
	db   *gorm.DB
	pool *redis.Pool
}

func NewHealthHandler(db *gorm.DB, pool *redis.Pool) *HealthHandler {
	return &HealthHandler{db: db, pool: pool}
}

// HealthzHandler 探活（GET /api/healthz）：检查数据库与 redis 连通性
func (h *HealthHandler) HealthzHandler(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, response.Error("database unreachable"))
		return
	}

	if h.pool != nil {
		conn := h.pool.Get()
		_, pingErr := conn.Do("PING")
		_ = conn.Close()
		if pingErr != nil {
			c.JSON(http.StatusServiceUnavailable, response.Error("redis unreachable"))
			return
		}
	}

	c.JSON(http.StatusOK, response.OK("ok", "healthy"))
}
