package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"https url", "https://x.com", true},
		{"http url", "http://x.com", true},
		{"bare domain without scheme", "example.com", false},
		{"ftp scheme", "ftp://x.com", false},
		{"not a url", "not a url", false},
		{"empty", "", false},
		{"scheme only", "https://", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidURL(tt.input))
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://example.com", NormalizeURL("example.com"))
	assert.Equal(t, "http://x.com", NormalizeURL("http://x.com"))
	assert.Equal(t, "https://x.com", NormalizeURL("https://x.com"))
}

func TestNormalizeThenValidate(t *testing.T) {
	// 裸域名补全协议后应当合法
	assert.False(t, IsValidURL("example.com"))
	assert.True(t, IsValidURL(NormalizeURL("example.com")))
}

func TestValidateOriginalURL(t *testing.T) {
	assert.EqualError(t, ValidateOriginalURL(""), "error.url_required")
	assert.EqualError(t, ValidateOriginalURL("not a url"), "error.url_invalid")
	assert.NoError(t, ValidateOriginalURL("google.com"))
	assert.NoError(t, ValidateOriginalURL("https://x.com"))

	long := make([]byte, 2049)
	for i := range long {
		long[i] = 'a'
	}
	assert.EqualError(t, ValidateOriginalURL(string(long)), "error.url_max_length")
}

func TestValidateAlias(t *testing.T) {
	assert.NoError(t, ValidateAlias("abc123"))
	assert.NoError(t, ValidateAlias("a_b-C"))
	assert.Error(t, ValidateAlias(""))
	assert.Error(t, ValidateAlias("has space"))
	assert.Error(t, ValidateAlias("a/b"))
}
