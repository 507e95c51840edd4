package shared

import (
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/i18n"
	"github.com/storefront-next/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// identityKeys 鉴权中间件写入的身份字段
var identityKeys = []string{"request_id", "customer_id", "staff_id"}

// RequestLog 携带 request_id、调用方身份与链路字段的日志实例
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil || c.Request == nil {
		return logger.S()
	}
	log := logger.Ctx(c.Request.Context())
	for _, key := range identityKeys {
		if value, ok := c.Get(key); ok {
			log = log.With(key, value)
		}
	}
	return log
}

// RespondError 返回国际化错误响应，有原始错误时记录日志
func RespondError(c *gin.Context, code int, key string, err error) {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", code,
			"message_key", key,
			"path", c.FullPath(),
			"error", err,
		)
	}
	response.Error(c, code, msg)
}
