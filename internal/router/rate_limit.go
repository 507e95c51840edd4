package router

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/i18n"
	"github.com/storefront-next/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 固定窗口限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	MessageKey    string
}

// enabled 窗口或次数未配置时不限流
func (r RateLimitRule) enabled() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

// 首次命中时设置过期；返回当前计数与剩余秒数
var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// RateLimitMiddleware Redis 下单限流；Redis 不可用时放行，不阻断下单
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || !rule.enabled() {
			c.Next()
			return
		}

		key := ""
		if keyFunc != nil {
			key = strings.TrimSpace(keyFunc(c))
		}
		if key == "" {
			key = c.ClientIP()
		}
		if rule.Prefix != "" {
			key = rule.Prefix + ":" + key
		}

		count, ttl, err := hitWindow(c, client, key, rule.WindowSeconds)
		if err != nil {
			logger.Warnw("rate_limit_unavailable", "key", key, "error", err)
			c.Next()
			return
		}
		if count <= int64(rule.MaxRequests) {
			c.Next()
			return
		}

		wait := int(ttl)
		if wait < 1 {
			wait = rule.WindowSeconds
		}
		msgKey := rule.MessageKey
		if strings.TrimSpace(msgKey) == "" {
			msgKey = "error.rate_limited"
		}
		c.Header("Retry-After", strconv.Itoa(wait))
		response.Error(c, response.CodeTooManyRequests, i18n.Sprintf(i18n.ResolveLocale(c), msgKey, wait))
		c.Abort()
	}
}

func hitWindow(c *gin.Context, client *redis.Client, key string, windowSeconds int) (int64, int64, error) {
	values, err := rateLimitScript.Run(c.Request.Context(), client, []string{key}, windowSeconds).Int64Slice()
	if err != nil {
		return 0, 0, err
	}
	if len(values) < 2 {
		return 0, 0, fmt.Errorf("unexpected rate limit reply: %v", values)
	}
	return values[0], values[1], nil
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByContextUint 使用上下文中的身份 ID 作为限流 key，缺失时回退到 IP
func KeyByContextUint(contextKey string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value, ok := c.Get(contextKey)
		if !ok {
			return KeyByIP(c)
		}
		id, ok := value.(uint)
		if !ok || id == 0 {
			return KeyByIP(c)
		}
		return fmt.Sprintf("%s:%d", contextKey, id)
	}
}
