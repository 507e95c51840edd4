package shared

import (
	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetContextUintWithKeys 读取鉴权中间件写入的身份 ID；缺失视为未登录
func GetContextUintWithKeys(c *gin.Context, key, invalidKey, typeInvalidKey string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}
	id, ok := value.(uint)
	if !ok {
		RespondError(c, response.CodeInternal, typeInvalidKey, nil)
		return 0, false
	}
	if id == 0 {
		RespondError(c, response.CodeBadRequest, invalidKey, nil)
		return 0, false
	}
	return id, true
}
