package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
// 与前端约定的 {success, message, data} 形状保持一致
type Response struct {
	Success bool        `json:"success"`
	Code    int         `json:"code,omitempty"`    // 业务码，0 为成功
	Message string      `json:"message,omitempty"` // 提示信息
	Data    interface{} `json:"data"`              // 数据，读取不到时为 null
	Errors  interface{} `json:"errors,omitempty"`  // 字段级校验错误 {field: message}
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Code:    CodeSuccess,
		Data:    data,
	})
}

// SuccessMsg 成功响应，仅返回提示信息
func SuccessMsg(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Code:    CodeSuccess,
		Message: msg,
	})
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, errCode int, msg string) {
	c.JSON(httpCode, Response{
		Success: false,
		Code:    errCode,
		Message: msg,
	})
}

// Fail 业务失败响应 (HTTP 200, 业务码非 0)
func Fail(c *gin.Context, errCode int, msg string) {
	c.JSON(http.StatusOK, Response{
		Success: false,
		Code:    errCode,
		Message: msg,
	})
}

// ValidationFailed 校验失败响应，携带字段级错误
func ValidationFailed(c *gin.Context, errs map[string]string) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Code:    ErrInvalidParam,
		Message: "参数校验失败",
		Errors:  errs,
	})
}
