package public

import (
	handlershared "github.com/storefront-next/internal/http/handlers/shared"
	"github.com/storefront-next/internal/http/response"
	"github.com/storefront-next/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

var cartErrorRules = []handlershared.MappedError{
	{Target: service.ErrInvalidOrderItem, Code: response.CodeBadRequest, Key: "error.order_item_invalid"},
	{Target: service.ErrSKUNotFound, Code: response.CodeBadRequest, Key: "error.sku_not_found"},
	{Target: service.ErrCartItemNotFound, Code: response.CodeNotFound, Key: "error.cart_item_not_found"},
	{Target: service.ErrCustomerNotFound, Code: response.CodeUnauthorized, Key: "error.unauthorized"},
	{Target: service.ErrCartFetchFailed, Code: response.CodeInternal, Key: "error.cart_fetch_failed"},
}

var customerCancelErrorRules = handlershared.ConcatMappedErrors(
	handlershared.OrderTransitionErrorRules,
	[]handlershared.MappedError{
		{Target: service.ErrOrderFetchFailed, Code: response.CodeInternal, Key: "error.order_fetch_failed"},
	},
)

func respondOrderBuildError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, handlershared.OrderBuildErrorRules, response.CodeInternal, "error.order_create_failed")
}

func respondCartError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, cartErrorRules, response.CodeInternal, "error.cart_update_failed")
}

func respondCustomerCancelError(c *gin.Context, err error) {
	handlershared.RespondMappedError(c, err, customerCancelErrorRules, response.CodeInternal, "error.order_update_failed")
}
