package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"linkboard-go/internal/apperrors"
)

// PrincipalKey 已认证用户 ID 在 gin 上下文中的键
const PrincipalKey = "principal"

// Auth 身份提供方边界：校验会话 JWT，不负责签发
type Auth struct {
	jwtSecret  []byte
	cookieName string
	logger     *zap.Logger
}

func NewAuth(jwtSecret, cookieName string, logger *zap.Logger) *Auth {
	if cookieName == "" {
		cookieName = "auth_token"
	}
	return &Auth{
		jwtSecret:  []byte(jwtSecret),
		cookieName: cookieName,
		logger:     logger,
	}
}

// RequireAuth 必须携带合法会话，否则 401
func (a *Auth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := a.resolvePrincipal(c)
		if !ok {
			_ = c.Error(apperrors.UnauthorizedError())
			c.Abort()
			return
		}
		c.Set(PrincipalKey, principal)
		c.Next()
	}
}

// OptionalAuth 尝试解析会话，匿名请求放行
func (a *Auth) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if principal, ok := a.resolvePrincipal(c); ok {
			c.Set(PrincipalKey, principal)
		}
		c.Next()
	}
}

// resolvePrincipal 从 cookie 或 Authorization 头解析 token，subject 即用户 ID
func (a *Auth) resolvePrincipal(c *gin.Context) (string, bool) {
	tokenString := ""
	if cookie, err := c.Cookie(a.cookieName); err == nil {
		tokenString = cookie
	} else if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		tokenString = strings.TrimPrefix(h, "Bearer ")
	}
	if tokenString == "" {
		return "", false
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return a.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid || claims.Subject == "" {
		a.logger.Debug("session token rejected", zap.Error(err))
		return "", false
	}

	return claims.Subject, true
}

// Principal 读取当前请求的用户 ID，匿名时 ok 为 false
func Principal(c *gin.Context) (string, bool) {
	v, exists := c.Get(PrincipalKey)
	if !exists {
		return "", false
	}
	principal, ok := v.(string)
	return principal, ok && principal != ""
}
