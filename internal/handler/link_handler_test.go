package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"linkboard-go/internal/middleware"
	"linkboard-go/internal/service"
	"linkboard-go/internal/shortener"
)

const testJWTSecret = "handler-test-secret"

type fakeBackend struct {
	result *shortener.Result
	err    error
	calls  int
}

func (f *fakeBackend) Shorten(ctx context.Context, normalizedURL string) (*shortener.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestRouter(t *testing.T, backend shortener.Backend) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	logger := zap.NewNop()
	links := service.NewLinkService(db, nil, backend, logger)
	linkHandler := NewLinkHandler(links, logger)
	auth := middleware.NewAuth(testJWTSecret, "auth_token", logger)

	// 与 main.go 保持一致的路由布局
	r := gin.New()
	r.Use(middleware.GlobalErrorMiddleware())

	api := r.Group("/api")
	api.POST("/shorten", auth.OptionalAuth(), linkHandler.ShortenHandler)

	authed := api.Group("")
	authed.Use(auth.RequireAuth())
	{
		authed.POST("/links", linkHandler.CreateLinkHandler)
		authed.GET("/links", linkHandler.ListLinksHandler)
		authed.PUT("/links/:id", linkHandler.UpdateLinkStatusHandler)
		authed.DELETE("/links/:id", linkHandler.DeleteLinkHandler)
	}

	r.GET("/s/:code", linkHandler.RedirectHandler)

	return r, mock
}

func bearerFor(t *testing.T, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

// envelope 测试用的宽松响应视图，data 保持原始 JSON 结构
type envelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Details string         `json:"details"`
	Data    map[string]any `json:"data"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func doJSON(r *gin.Engine, method, path, body, authorization string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestCreateLinkEndpoint_RequiresAuth(t *testing.T) {
	backend := &fakeBackend{}
	r, _ := newTestRouter(t, backend)

	w := doJSON(r, http.MethodPost, "/api/links", `{"originalUrl":"https://example.com"}`, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, decodeEnvelope(t, w).Success)
	assert.Zero(t, backend.calls)
}

func TestCreateLinkEndpoint_MissingURL(t *testing.T) {
	backend := &fakeBackend{}
	r, _ := newTestRouter(t, backend)

	w := doJSON(r, http.MethodPost, "/api/links", `{}`, bearerFor(t, "user-1"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error.url_required", decodeEnvelope(t, w).Message)
}

func TestCreateLinkEndpoint_Persists(t *testing.T) {
	backend := &fakeBackend{result: &shortener.Result{Alias: "abc123", ShortURL: "http://x/s/abc123"}}
	r, mock := newTestRouter(t, backend)

	mock.ExpectQuery("SELECT (.+) FROM `links`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery("SELECT (.+) FROM `links`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec("INSERT INTO `links`").
		WillReturnResult(sqlmock.NewResult(1, 1))

	w := doJSON(r, http.MethodPost, "/api/links", `{"originalUrl":"example.com"}`, bearerFor(t, "user-1"))

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	assert.True(t, body.Success)
	assert.NotEmpty(t, body.Data["id"])
	assert.Equal(t, "https://example.com", body.Data["originalUrl"])
	assert.Equal(t, "abc123", body.Data["shortCode"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShortenEndpoint_AnonymousEphemeral(t *testing.T) {
	backend := &fakeBackend{result: &shortener.Result{Alias: "abc123", ShortURL: "http://x/s/abc123"}}
	r, mock := newTestRouter(t, backend)
	// 不设任何 SQL 期望：匿名路径必须不触库

	w := doJSON(r, http.MethodPost, "/api/shorten", `{"originalUrl":"google.com"}`, "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, "http://x/s/abc123", body.Data["shortUrl"])
	assert.NotContains(t, body.Data, "id")
	assert.Equal(t, 1, backend.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestShortenEndpoint_UpstreamRejected(t *testing.T) {
	backend := &fakeBackend{err: shortener.ErrRejected}
	r, _ := newTestRouter(t, backend)

	w := doJSON(r, http.MethodPost, "/api/shorten", `{"originalUrl":"https://blocked.example"}`, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error.upstream_rejected", decodeEnvelope(t, w).Message)
}

func TestUpdateLinkStatusEndpoint_MissingIsActive(t *testing.T) {
	r, _ := newTestRouter(t, &fakeBackend{})

	w := doJSON(r, http.MethodPut, "/api/links/link-1", `{}`, bearerFor(t, "user-1"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListLinksEndpoint_InvalidPage(t *testing.T) {
	r, _ := newTestRouter(t, &fakeBackend{})

	w := doJSON(r, http.MethodGet, "/api/links?page=zero", "", bearerFor(t, "user-1"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "error.page_invalid", decodeEnvelope(t, w).Message)
}

func TestRedirectEndpoint_Found(t *testing.T) {
	r, mock := newTestRouter(t, &fakeBackend{})

	rows := sqlmock.NewRows([]string{"id", "created_at", "updated_at", "owner_id", "original_url", "alias", "short_url", "title", "is_active", "clicks"}).
		AddRow("link-1", time.Now(), time.Now(), "owner-a", "https://example.com", "abc123", "http://x/s/abc123", nil, true, int64(0))
	mock.ExpectQuery("SELECT (.+) FROM `links`").
		WillReturnRows(rows)
	mock.ExpectExec("UPDATE `links`").
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/s/abc123", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://example.com", w.Header().Get("Location"))
	assert.Contains(t, w.Header().Get("Cache-Control"), "no-store")
}

func TestRedirectEndpoint_Missing(t *testing.T) {
	r, mock := newTestRouter(t, &fakeBackend{})

	mock.ExpectQuery("SELECT (.+) FROM `links`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/s/gone42", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
