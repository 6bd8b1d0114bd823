// Package response 统一 HTTP 响应包络 {code, message, data}
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 响应包络
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Success 200 成功响应
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

// ErrorWithStatus 错误响应，code 与 HTTP 状态码一致
func ErrorWithStatus(c *gin.Context, status int, message, detail string) {
	c.JSON(status, Response{Code: status, Message: message, Detail: detail})
}
