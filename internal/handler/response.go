package handler

import "github.com/gin-gonic/gin"

// ErrorResponse 是统一的API错误响应结构
// 给客户端的永远是简短的通用信息，具体错误细节只进服务端日志
type ErrorResponse struct {
	Error string `json:"error"`
}

func sendErrorResponse(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, ErrorResponse{Error: message})
}
