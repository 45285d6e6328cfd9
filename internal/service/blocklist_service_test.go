package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var blockedDomainColumns = []string{"id", "created_at", "updated_at", "deleted_at", "domain"}

func blockedDomainRow(id uint, domain string) *sqlmock.Rows {
	return sqlmock.NewRows(blockedDomainColumns).
		AddRow(id, time.Now(), time.Now(), nil, domain)
}

func TestBlocklistCreate_NormalizesAndInserts(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewBlocklistService(db, zap.NewNop())

	mock.ExpectQuery("SELECT (.+) FROM `blocked_domains`").
		WithArgs("blocked.example", 1).
		WillReturnRows(sqlmock.NewRows(blockedDomainColumns))
	mock.ExpectExec("INSERT INTO `blocked_domains`").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, svc.Create(context.Background(), "  Blocked.Example  "))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBlocklistCreate_EmptyDomain(t *testing.T) {
	svc := NewBlocklistService(nil, zap.NewNop())

	err := svc.Create(context.Background(), "   ")

	appErr := appErrOf(t, err)
	assert.Equal(t, http.StatusBadRequest, appErr.Code)
	assert.Equal(t, "error.domain_required", appErr.MessageID)
}

func TestBlocklistCreate_DuplicateDomain(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewBlocklistService(db, zap.NewNop())

	mock.ExpectQuery("SELECT (.+) FROM `blocked_domains`").
		WillReturnRows(blockedDomainRow(1, "blocked.example"))

	err := svc.Create(context.Background(), "blocked.example")

	appErr := appErrOf(t, err)
	assert.Equal(t, http.StatusConflict, appErr.Code)
	assert.Equal(t, "error.domain_exists", appErr.MessageID)
}

func TestBlocklistDelete_NotFound(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewBlocklistService(db, zap.NewNop())

	mock.ExpectExec("UPDATE `blocked_domains`").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.Delete(context.Background(), 42)

	appErr := appErrOf(t, err)
	assert.Equal(t, http.StatusNotFound, appErr.Code)
	assert.Equal(t, "error.domain_not_found", appErr.MessageID)
}

func TestBlocklistList_Pagination(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewBlocklistService(db, zap.NewNop())

	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))
	rows := sqlmock.NewRows(blockedDomainColumns).
		AddRow(2, time.Now(), time.Now(), nil, "b.example").
		AddRow(1, time.Now(), time.Now(), nil, "a.example")
	mock.ExpectQuery("SELECT (.+) FROM `blocked_domains`").
		WillReturnRows(rows)

	resp, err := svc.List(context.Background(), 1, 10, "")
	require.NoError(t, err)

	assert.Len(t, resp.List, 2)
	assert.Equal(t, int64(2), resp.Total)
	assert.Equal(t, 1, resp.TotalPages)
}

func TestIsBlocked_ParentDomainCandidates(t *testing.T) {
	db, mock := newTestDB(t)
	svc := NewBlocklistService(db, zap.NewNop())

	// a.b.blocked.example 剥离子域名后同时查 b.blocked.example、blocked.example
	mock.ExpectQuery("SELECT count").
		WithArgs("a.b.blocked.example", "b.blocked.example", "blocked.example").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))

	blocked, err := svc.IsBlocked(context.Background(), "A.B.Blocked.Example")
	require.NoError(t, err)

	assert.True(t, blocked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsBlocked_EmptyHost(t *testing.T) {
	svc := NewBlocklistService(nil, zap.NewNop())

	blocked, err := svc.IsBlocked(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, blocked)
}
