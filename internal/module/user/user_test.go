package user

import (
	"io"
	"log/slog"
	"testing"

	"project-checkin-system/internal/global/response"
	"project-checkin-system/internal/model"
	"project-checkin-system/test"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) *gorm.DB {
	gin.SetMode(gin.TestMode)
	log = slog.New(slog.NewTextHandler(io.Discard, nil))
	return test.UseDB(t)
}

func TestRegister(t *testing.T) {
	db := setup(t)

	resp := test.DoRequest(t, Register, RegisterReq{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "supersecret",
	})
	test.NoError(t, resp)

	var user model.User
	require.NoError(t, db.First(&user, "username = ?", "alice").Error)
	// 密码不落明文
	require.NotEqual(t, "supersecret", user.Password)
}

func TestRegisterDuplicate(t *testing.T) {
	setup(t)

	req := RegisterReq{Username: "alice", Email: "alice@example.com", Password: "supersecret"}
	test.NoError(t, test.DoRequest(t, Register, req))

	resp := test.DoRequest(t, Register, req)
	test.ErrorCode(t, response.ErrAlreadyExists, resp)

	// 换用户名、撞邮箱同样拒绝
	req.Username = "alice2"
	resp = test.DoRequest(t, Register, req)
	test.ErrorCode(t, response.ErrAlreadyExists, resp)
}

func TestLogin(t *testing.T) {
	setup(t)

	test.NoError(t, test.DoRequest(t, Register, RegisterReq{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "supersecret",
	}))

	resp := test.DoRequest(t, Login, LoginReq{Email: "alice@example.com", Password: "supersecret"})
	test.NoError(t, resp)
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	require.NotEmpty(t, data["token"])

	resp = test.DoRequest(t, Login, LoginReq{Email: "alice@example.com", Password: "wrongpass1"})
	test.ErrorEqual(t, response.ErrInvalidPassword, resp)

	resp = test.DoRequest(t, Login, LoginReq{Email: "nobody@example.com", Password: "whatever1"})
	test.ErrorCode(t, response.ErrNotFound, resp)
}
