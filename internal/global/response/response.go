package response

import (
	"net/http"

	sentrylib "github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

// ResponseBody 统一响应体
type ResponseBody struct {
	Code int32  `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data,omitempty"`
}

// Success 返回成功响应，data 可选
func Success(c *gin.Context, data ...any) {
	body := ResponseBody{
		Code: 200,
		Msg:  "success",
	}
	if len(data) > 0 {
		body.Data = data[0]
	}
	c.Set(ResponseContextKey, body)
	c.JSON(http.StatusOK, body)
}

// Fail 返回失败响应，HTTP 状态码取自错误定义
func Fail(c *gin.Context, err *Error) {
	body := ResponseBody{
		Code: err.Code,
		Msg:  err.Message,
	}
	if err.Origin != "" {
		body.Data = map[string]any{"origin": err.Origin}
	}
	c.Set(ErrorContextKey, err)
	c.Set(ResponseContextKey, body)
	c.JSON(err.Status, body)
}

// Recovery 捕获 handler panic，上报 Sentry 后返回统一的 500 响应
func Recovery(c *gin.Context) {
	if r := recover(); r != nil {
		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.Recover(r)
		} else {
			sentrylib.CurrentHub().Recover(r)
		}
		if !c.Writer.Written() {
			Fail(c, ErrServerInternal)
		}
		c.Abort()
	}
}
