package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"linkboard-go/internal/apperrors"
	"linkboard-go/internal/i18n"
	"linkboard-go/response"
)

// GlobalErrorMiddleware 全局错误中间件：AppError 按错误码返回本地化消息 + 技术细节
func GlobalErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			for _, err := range c.Errors {
				var appErr *apperrors.AppError
				if errors.As(err.Err, &appErr) {
					localized := ""
					if appErr.MessageID != "" {
						localized = i18n.T(c.Request.Context(), appErr.MessageID)
					}
					c.AbortWithStatusJSON(appErr.Code, response.ErrorFromAppError(appErr, localized))
					return
				}
			}

			// 默认处理未定义的错误
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				response.Error(i18n.T(c.Request.Context(), "error.internal")))
			return
		}
	}
}
