package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"project-checkin-system/internal/global/jwt"
	"project-checkin-system/internal/global/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// DoRequest 以 JSON 请求体直接调用 handler，不经过完整路由
func DoRequest(t *testing.T, handlerFunc gin.HandlerFunc, request any) (resp response.ResponseBody) {
	return DoRequestAs(t, handlerFunc, request, nil)
}

// DoRequestAs 带登录身份调用 handler，claims 为 nil 时视为未登录
func DoRequestAs(t *testing.T, handlerFunc gin.HandlerFunc, request any, claims *jwt.Claims) (resp response.ResponseBody) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	requestBytes, err := json.Marshal(request)
	require.NoError(t, err)
	c.Request = httptest.NewRequest(http.MethodPost, "/test", bytes.NewReader(requestBytes))
	c.Request.Header.Set("Content-Type", "application/json")
	if claims != nil {
		c.Set("payload", claims)
	}
	handlerFunc(c)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return
}

// DoParamRequestAs 带路径参数调用 handler
func DoParamRequestAs(t *testing.T, handlerFunc gin.HandlerFunc, request any, params map[string]string, claims *jwt.Claims) (resp response.ResponseBody) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	requestBytes, err := json.Marshal(request)
	require.NoError(t, err)
	c.Request = httptest.NewRequest(http.MethodPost, "/test", bytes.NewReader(requestBytes))
	c.Request.Header.Set("Content-Type", "application/json")
	for k, v := range params {
		c.Params = append(c.Params, gin.Param{Key: k, Value: v})
	}
	if claims != nil {
		c.Set("payload", claims)
	}
	handlerFunc(c)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return
}

// DoQueryRequestAs 以查询参数调用 handler
func DoQueryRequestAs(t *testing.T, handlerFunc gin.HandlerFunc, rawQuery string, claims *jwt.Claims) (resp response.ResponseBody) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test?"+rawQuery, nil)
	if claims != nil {
		c.Set("payload", claims)
	}
	handlerFunc(c)
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return
}

// ClaimsFor 构造测试用的登录态
func ClaimsFor(userID uint, username string, roleID int) *jwt.Claims {
	return &jwt.Claims{Payload: jwt.Payload{UserID: userID, Username: username, RoleID: roleID}}
}
