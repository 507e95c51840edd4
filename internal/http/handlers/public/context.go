package public

import (
	"strconv"

	handlershared "github.com/storefront-next/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getCustomerID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUintWithKeys(c, "customer_id", "error.user_id_invalid", "error.context_type_invalid")
}

func parseUintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || value == 0 {
		return 0, false
	}
	return uint(value), true
}
