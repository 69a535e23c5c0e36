package cache

import (
	"strings"
	"time"
)

// capTTL は ttl と until までの残り時間の短い方を返します。
// until を過ぎている場合は0を返し、呼び出し側はキャッシュしません。
func capTTL(ttl time.Duration, now, until time.Time) time.Duration {
	left := until.Sub(now)
	if left <= 0 {
		return 0
	}
	if left < ttl {
		return left
	}
	return ttl
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	s = strings.ReplaceAll(s, "*", "_")
	return s
}
