package utils

import (
	"fmt"
	"net/url"
	"regexp"
)

var schemePattern = regexp.MustCompile(`^https?://`)

var aliasPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// IsValidURL 校验是否为绝对 URL 且协议为 http/https
func IsValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// NormalizeURL 缺省协议时补全 https://，其余原样返回
func NormalizeURL(raw string) string {
	if !schemePattern.MatchString(raw) {
		return "https://" + raw
	}
	return raw
}

// ValidateOriginalURL 校验用户提交的原始 URL（补全协议后校验）
func ValidateOriginalURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("error.url_required")
	}

	if len(raw) > 2048 {
		return fmt.Errorf("error.url_max_length")
	}

	if !IsValidURL(NormalizeURL(raw)) {
		return fmt.Errorf("error.url_invalid")
	}

	return nil
}

// ValidateAlias 校验短码是否合法
func ValidateAlias(alias string) error {
	if alias == "" || !aliasPattern.MatchString(alias) {
		return fmt.Errorf("error.url_invalid")
	}
	return nil
}
