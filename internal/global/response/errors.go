package response

import "net/http"

// 业务错误码约定：HTTP 状态码 * 100 + 序号
var (
	ErrInvalidRequest   = newError(40001, http.StatusBadRequest, "请求参数错误")
	ErrTokenInvalid     = newError(40101, http.StatusUnauthorized, "登录凭证无效")
	ErrInvalidPassword  = newError(40102, http.StatusUnauthorized, "密码错误")
	ErrUnauthorized     = newError(40103, http.StatusUnauthorized, "未授权访问")
	ErrForbidden        = newError(40301, http.StatusForbidden, "没有操作权限")
	ErrNotFound         = newError(40401, http.StatusNotFound, "资源不存在")
	ErrAlreadyExists    = newError(40901, http.StatusConflict, "资源已存在")
	ErrLocked           = newError(40902, http.StatusConflict, "资源已被检出")
	ErrInvalidOperation = newError(42201, http.StatusUnprocessableEntity, "非法操作")
	ErrDatabase         = newError(50001, http.StatusInternalServerError, "数据库错误")
	ErrStorage          = newError(50002, http.StatusInternalServerError, "文件存储错误")
	ErrServerInternal   = newError(50003, http.StatusInternalServerError, "服务器内部错误")
)
