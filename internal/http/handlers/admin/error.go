package admin

import (
	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondOrderBuildError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, handlershared.OrderBuildErrorRules, response.CodeInternal, "error.order_create_failed")
}

func respondTransitionError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, handlershared.OrderTransitionErrorRules, response.CodeInternal, "error.order_update_failed")
}
