package shortener

import (
	"context"
	"errors"
)

// Result 短链服务的返回：短码 + 完整短链
type Result struct {
	Alias    string
	ShortURL string
}

// Backend 短链后端。external provider 和本地生成器都实现此接口。
type Backend interface {
	Shorten(ctx context.Context, normalizedURL string) (*Result, error)
}

// 上游失败分类，用 errors.Is 判定
var (
	ErrRejected          = errors.New("provider rejected the url")
	ErrNetwork           = errors.New("network error calling provider")
	ErrTimeout           = errors.New("provider request timed out")
	ErrMalformedResponse = errors.New("malformed provider response")
	ErrRateLimited       = errors.New("provider rate limited the request")
	ErrUnavailable       = errors.New("provider unavailable")
)
