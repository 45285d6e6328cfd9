package shortener

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const aliasCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const (
	defaultAliasLength  = 6
	fallbackAliasLength = 7
	maxAttempts         = 10
)

// ExistsFunc 查询短码是否已被占用
type ExistsFunc func(ctx context.Context, alias string) (bool, error)

// BlockedFunc 查询目标域名是否在黑名单中
type BlockedFunc func(ctx context.Context, host string) (bool, error)

// LocalBackend 本地短码生成器，用服务自身域名拼接短链
type LocalBackend struct {
	baseURL string
	exists  ExistsFunc
	blocked BlockedFunc
	logger  *zap.Logger
}

func NewLocalBackend(baseURL string, exists ExistsFunc, blocked BlockedFunc, logger *zap.Logger) *LocalBackend {
	return &LocalBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		exists:  exists,
		blocked: blocked,
		logger:  logger,
	}
}

func (b *LocalBackend) Shorten(ctx context.Context, normalizedURL string) (*Result, error) {
	u, err := url.Parse(normalizedURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRejected, err)
	}

	if b.blocked != nil {
		isBlocked, err := b.blocked(ctx, u.Hostname())
		if err != nil {
			b.logger.Warn("blocklist lookup failed, allowing url",
				zap.String("host", u.Hostname()),
				zap.Error(err))
		} else if isBlocked {
			return nil, fmt.Errorf("%w: domain %s is blocked", ErrRejected, u.Hostname())
		}
	}

	alias, err := b.uniqueAlias(ctx)
	if err != nil {
		return nil, err
	}

	return &Result{
		Alias:    alias,
		ShortURL: b.baseURL + "/s/" + alias,
	}, nil
}

// uniqueAlias 6 位短码重试 10 次，仍冲突则退而生成 7 位
func (b *LocalBackend) uniqueAlias(ctx context.Context) (string, error) {
	for attempts := 0; attempts < maxAttempts; attempts++ {
		alias := randomAlias(defaultAliasLength)
		taken, err := b.exists(ctx, alias)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if !taken {
			return alias, nil
		}
	}

	b.logger.Warn("exhausted short alias attempts, falling back to longer alias",
		zap.Int("attempts", maxAttempts))
	return randomAlias(fallbackAliasLength), nil
}

func randomAlias(length int) string {
	bts := make([]byte, length)
	for i := range bts {
		bts[i] = aliasCharset[rand.Intn(len(aliasCharset))]
	}
	return string(bts)
}
