package friend

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"project-checkin-system/internal/core/authz"
	"project-checkin-system/internal/global/jwt"
	"project-checkin-system/internal/global/response"
	"project-checkin-system/internal/model"
	"project-checkin-system/test"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) *gorm.DB {
	gin.SetMode(gin.TestMode)
	db := test.UseDB(t)
	log = slog.New(slog.NewTextHandler(io.Discard, nil))
	gate = authz.New(db)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) (model.User, *jwt.Claims) {
	user := model.User{Username: name, Email: name + "@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user, test.ClaimsFor(user.ID, user.Username, user.RoleID)
}

func friendEdgeCount(t *testing.T, db *gorm.DB) int64 {
	var count int64
	require.NoError(t, db.Model(&model.Friend{}).Count(&count).Error)
	return count
}

func TestAddFriendSymmetric(t *testing.T) {
	db := setup(t)
	alice, aliceClaims := seedUser(t, db, "alice")
	bob, _ := seedUser(t, db, "bob")

	resp := test.DoRequestAs(t, AddFriend, AddFriendReq{Email: bob.Email}, aliceClaims)
	test.NoError(t, resp)

	// 双向两条边
	require.EqualValues(t, 2, friendEdgeCount(t, db))
	var edge model.Friend
	require.NoError(t, db.First(&edge, "user_id = ? AND friend_id = ?", bob.ID, alice.ID).Error)
}

func TestAddFriendRejections(t *testing.T) {
	db := setup(t)
	alice, aliceClaims := seedUser(t, db, "alice")
	bob, _ := seedUser(t, db, "bob")

	// 不能加自己
	resp := test.DoRequestAs(t, AddFriend, AddFriendReq{Email: alice.Email}, aliceClaims)
	test.ErrorCode(t, response.ErrInvalidOperation, resp)

	// 不存在的用户
	resp = test.DoRequestAs(t, AddFriend, AddFriendReq{Email: "ghost@example.com"}, aliceClaims)
	test.ErrorCode(t, response.ErrNotFound, resp)

	// 重复添加
	test.NoError(t, test.DoRequestAs(t, AddFriend, AddFriendReq{Email: bob.Email}, aliceClaims))
	resp = test.DoRequestAs(t, AddFriend, AddFriendReq{Email: bob.Email}, aliceClaims)
	test.ErrorCode(t, response.ErrAlreadyExists, resp)
	require.EqualValues(t, 2, friendEdgeCount(t, db))
}

func TestRemoveFriendBothEdges(t *testing.T) {
	db := setup(t)
	_, aliceClaims := seedUser(t, db, "alice")
	bob, _ := seedUser(t, db, "bob")

	test.NoError(t, test.DoRequestAs(t, AddFriend, AddFriendReq{Email: bob.Email}, aliceClaims))

	params := map[string]string{"id": fmt.Sprint(bob.ID)}
	test.NoError(t, test.DoParamRequestAs(t, RemoveFriend, nil, params, aliceClaims))
	require.EqualValues(t, 0, friendEdgeCount(t, db))
}

func TestReAddFriendAfterRemoval(t *testing.T) {
	db := setup(t)
	_, aliceClaims := seedUser(t, db, "alice")
	bob, _ := seedUser(t, db, "bob")

	test.NoError(t, test.DoRequestAs(t, AddFriend, AddFriendReq{Email: bob.Email}, aliceClaims))
	params := map[string]string{"id": fmt.Sprint(bob.ID)}
	test.NoError(t, test.DoParamRequestAs(t, RemoveFriend, nil, params, aliceClaims))

	// 删除后重新添加：复活镜像双边
	resp := test.DoRequestAs(t, AddFriend, AddFriendReq{Email: bob.Email}, aliceClaims)
	test.NoError(t, resp)
	require.EqualValues(t, 2, friendEdgeCount(t, db))

	// 含已删除行在内也只有两条边
	var total int64
	require.NoError(t, db.Unscoped().Model(&model.Friend{}).Count(&total).Error)
	require.EqualValues(t, 2, total)
}

func TestListFriends(t *testing.T) {
	db := setup(t)
	_, aliceClaims := seedUser(t, db, "alice")
	bob, _ := seedUser(t, db, "bob")
	seedUser(t, db, "carol")

	test.NoError(t, test.DoRequestAs(t, AddFriend, AddFriendReq{Email: bob.Email}, aliceClaims))

	resp := test.DoRequestAs(t, ListFriends, nil, aliceClaims)
	test.NoError(t, resp)
	friends, ok := resp.Data.([]any)
	require.True(t, ok)
	require.Len(t, friends, 1)
}
