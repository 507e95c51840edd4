package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构；业务错误也以 HTTP 200 返回，status_code 区分结果
type Response struct {
	StatusCode int         `json:"status_code"`
	Msg        string      `json:"msg"`
	Data       interface{} `json:"data"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	Response
	Pagination Pagination `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"page_size"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"total_page"`
}

// BuildPagination 构建分页信息
func BuildPagination(page, pageSize int, total int64) Pagination {
	p := Pagination{Page: page, PageSize: pageSize, Total: total}
	if pageSize > 0 {
		p.TotalPage = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return p
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{StatusCode: CodeOK, Msg: "success", Data: data})
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, data interface{}, pagination Pagination) {
	c.JSON(http.StatusOK, PageResponse{
		Response:   Response{StatusCode: CodeOK, Msg: "success", Data: data},
		Pagination: pagination,
	})
}

// Error 错误响应，data 中附带 request_id 便于排查
func Error(c *gin.Context, statusCode int, msg string) {
	ErrorWithData(c, statusCode, msg, nil)
}

// ErrorWithData 携带结构化详情的错误响应（如缺货明细）
func ErrorWithData(c *gin.Context, statusCode int, msg string, data map[string]interface{}) {
	if requestID := c.GetString("request_id"); requestID != "" {
		if data == nil {
			data = map[string]interface{}{}
		}
		if _, exists := data["request_id"]; !exists {
			data["request_id"] = requestID
		}
	}
	var payload interface{}
	if data != nil {
		payload = data
	}
	c.JSON(http.StatusOK, Response{StatusCode: statusCode, Msg: msg, Data: payload})
}

// Unauthorized 401 响应
func Unauthorized(c *gin.Context, msg string) {
	Error(c, CodeUnauthorized, msg)
}
