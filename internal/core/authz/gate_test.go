package authz_test

import (
	"testing"

	"project-checkin-system/internal/core/authz"
	"project-checkin-system/internal/global/response"
	"project-checkin-system/internal/model"
	"project-checkin-system/test"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedGate(t *testing.T) (*authz.Gate, *gorm.DB, model.User, model.User, model.User, model.Project) {
	db := test.NewDB(t)
	gate := authz.New(db)

	owner := model.User{Username: "alice", Email: "alice@example.com", Password: "x"}
	member := model.User{Username: "bob", Email: "bob@example.com", Password: "x"}
	stranger := model.User{Username: "carol", Email: "carol@example.com", Password: "x"}
	require.NoError(t, db.Create(&owner).Error)
	require.NoError(t, db.Create(&member).Error)
	require.NoError(t, db.Create(&stranger).Error)

	project := model.Project{Name: "demo", Type: model.ProjectTypeGame, Version: "v1.0.0", OwnerID: owner.ID}
	require.NoError(t, db.Create(&project).Error)
	require.NoError(t, db.Create(&model.Member{ProjectID: project.ID, UserID: owner.ID, Role: model.RoleOwner}).Error)
	require.NoError(t, db.Create(&model.Member{ProjectID: project.ID, UserID: member.ID, Role: model.RoleCollaborator}).Error)

	return gate, db, owner, member, stranger, project
}

func TestRequireMember(t *testing.T) {
	gate, _, _, member, stranger, project := seedGate(t)

	m, aerr := gate.RequireMember(project.ID, member.ID)
	require.Nil(t, aerr)
	require.Equal(t, model.RoleCollaborator, m.Role)

	_, aerr = gate.RequireMember(project.ID, stranger.ID)
	require.NotNil(t, aerr)
	require.Equal(t, response.ErrForbidden.Code, aerr.Code)
}

func TestRequireOwner(t *testing.T) {
	gate, _, owner, member, _, project := seedGate(t)

	require.Nil(t, gate.RequireOwner(&project, owner.ID))

	aerr := gate.RequireOwner(&project, member.ID)
	require.NotNil(t, aerr)
	require.Equal(t, response.ErrForbidden.Code, aerr.Code)
}

func TestCanViewMemberOrOwnerFriend(t *testing.T) {
	gate, db, owner, member, stranger, project := seedGate(t)

	require.Nil(t, gate.CanView(&project, member.ID))

	aerr := gate.CanView(&project, stranger.ID)
	require.NotNil(t, aerr)
	require.Equal(t, response.ErrForbidden.Code, aerr.Code)

	// 与所有者建立好友关系后可见
	require.NoError(t, db.Create(&model.Friend{UserID: stranger.ID, FriendID: owner.ID}).Error)
	require.NoError(t, db.Create(&model.Friend{UserID: owner.ID, FriendID: stranger.ID}).Error)
	require.Nil(t, gate.CanView(&project, stranger.ID))
}

func TestCheckAddMember(t *testing.T) {
	gate, _, owner, member, stranger, project := seedGate(t)

	require.Nil(t, gate.CheckAddMember(&project, owner.ID, &stranger))

	// 非所有者不能拉人
	aerr := gate.CheckAddMember(&project, member.ID, &stranger)
	require.NotNil(t, aerr)
	require.Equal(t, response.ErrForbidden.Code, aerr.Code)

	// 已是成员时冲突
	aerr = gate.CheckAddMember(&project, owner.ID, &member)
	require.NotNil(t, aerr)
	require.Equal(t, response.ErrAlreadyExists.Code, aerr.Code)

	// 不能把自己再加一遍
	aerr = gate.CheckAddMember(&project, owner.ID, &owner)
	require.NotNil(t, aerr)
	require.Equal(t, response.ErrAlreadyExists.Code, aerr.Code)
}

func TestCheckRemoveMember(t *testing.T) {
	gate, _, owner, member, _, project := seedGate(t)

	require.Nil(t, gate.CheckRemoveMember(&project, owner.ID, member.ID))

	aerr := gate.CheckRemoveMember(&project, member.ID, owner.ID)
	require.NotNil(t, aerr)
	require.Equal(t, response.ErrForbidden.Code, aerr.Code)

	// 所有者不可被移除
	aerr = gate.CheckRemoveMember(&project, owner.ID, owner.ID)
	require.NotNil(t, aerr)
	require.Equal(t, response.ErrInvalidOperation.Code, aerr.Code)
}

func TestRequireProjectNotFound(t *testing.T) {
	gate, _, _, _, _, project := seedGate(t)

	_, aerr := gate.RequireProject(project.ID + 99)
	require.NotNil(t, aerr)
	require.Equal(t, response.ErrNotFound.Code, aerr.Code)
}
