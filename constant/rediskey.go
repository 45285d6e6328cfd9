package constant

import (
	"fmt"
)

// 常量定义
const (
	BasePrefix = "link:"
	Separator  = ":"
)

// Redis 键模板
const (
	RedirectCache = BasePrefix + "redirect" + Separator + "%s" // link:redirect:alias
	PendingClicks = BasePrefix + "clicks" + Separator + "%s"   // link:clicks:alias
)

// 缓存 TTL（秒）
const (
	RedirectCacheTTL = 3600 // 正缓存 1 小时
	NegativeCacheTTL = 300  // 空值缓存 5 分钟，防止缓存穿透
)

// GetRedirectCacheKey 生成重定向缓存 key
func GetRedirectCacheKey(alias string) string {
	return fmt.Sprintf(RedirectCache, alias)
}

// GetPendingClicksKey 生成待落库点击计数 key
func GetPendingClicksKey(alias string) string {
	return fmt.Sprintf(PendingClicks, alias)
}
