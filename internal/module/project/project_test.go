package project

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"project-checkin-system/internal/core/audit"
	"project-checkin-system/internal/core/authz"
	"project-checkin-system/internal/global/jwt"
	"project-checkin-system/internal/global/response"
	"project-checkin-system/internal/global/storage"
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
	recorder = audit.New(db, nil, log)
	fileBed = &storage.FileBed{SaveDir: t.TempDir()}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, name string) (model.User, *jwt.Claims) {
	user := model.User{Username: name, Email: name + "@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user, test.ClaimsFor(user.ID, user.Username, user.RoleID)
}

func TestCreateProject(t *testing.T) {
	db := setup(t)
	owner, claims := seedUser(t, db, "alice")

	resp := test.DoRequestAs(t, CreateProject, ProjectCreateReq{
		Name:        "My Game",
		Description: "a small game",
		Hashtags:    []string{" Retro ", "PIXEL"},
		Type:        model.ProjectTypeGame,
	}, claims)
	test.NoError(t, resp)

	var project model.Project
	require.NoError(t, db.First(&project, "name = ?", "My Game").Error)
	require.Equal(t, owner.ID, project.OwnerID)
	require.Equal(t, "v1.0.0", project.Version)
	// 标签统一小写
	require.Equal(t, []string{"retro", "pixel"}, project.Hashtags)

	// 所有者自动入组并产生一条创建动态
	var member model.Member
	require.NoError(t, db.First(&member, "project_id = ? AND user_id = ?", project.ID, owner.ID).Error)
	require.Equal(t, model.RoleOwner, member.Role)

	var count int64
	require.NoError(t, db.Model(&model.Activity{}).
		Where("project_id = ? AND type = ?", project.ID, model.ActivityProjectCreated).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCreateProjectInvalidType(t *testing.T) {
	db := setup(t)
	_, claims := seedUser(t, db, "alice")

	resp := test.DoRequestAs(t, CreateProject, ProjectCreateReq{
		Name:        "Bad",
		Description: "desc",
		Type:        "spaceship",
	}, claims)
	test.ErrorCode(t, response.ErrInvalidRequest, resp)
}

func TestUpdateProjectOwnerOnly(t *testing.T) {
	db := setup(t)
	_, ownerClaims := seedUser(t, db, "alice")
	_, otherClaims := seedUser(t, db, "bob")

	test.NoError(t, test.DoRequestAs(t, CreateProject, ProjectCreateReq{
		Name: "demo", Description: "d",
	}, ownerClaims))

	var project model.Project
	require.NoError(t, db.First(&project, "name = ?", "demo").Error)
	params := map[string]string{"id": fmt.Sprint(project.ID)}

	newName := "renamed"
	resp := test.DoParamRequestAs(t, UpdateProject, ProjectUpdateReq{Name: &newName}, params, otherClaims)
	test.ErrorCode(t, response.ErrForbidden, resp)

	resp = test.DoParamRequestAs(t, UpdateProject, ProjectUpdateReq{Name: &newName}, params, ownerClaims)
	test.NoError(t, resp)
	require.NoError(t, db.First(&project, "id = ?", project.ID).Error)
	require.Equal(t, "renamed", project.Name)
}

func TestDeleteProjectCascadesAndRestores(t *testing.T) {
	db := setup(t)
	owner, claims := seedUser(t, db, "alice")

	test.NoError(t, test.DoRequestAs(t, CreateProject, ProjectCreateReq{
		Name: "demo", Description: "d",
	}, claims))
	var project model.Project
	require.NoError(t, db.First(&project, "name = ?", "demo").Error)

	file := model.File{
		ProjectID: project.ID, Name: "a.txt", Path: "blob-a",
		UploadedBy: owner.ID, Status: model.FileCheckedIn,
	}
	require.NoError(t, db.Create(&file).Error)

	// 删除项目前已单独删掉的文件，不应被还原复活
	gone := model.File{
		ProjectID: project.ID, Name: "b.txt", Path: "blob-b",
		UploadedBy: owner.ID, Status: model.FileCheckedIn,
	}
	require.NoError(t, db.Create(&gone).Error)
	require.NoError(t, db.Delete(&gone).Error)

	params := map[string]string{"id": fmt.Sprint(project.ID)}
	test.NoError(t, test.DoParamRequestAs(t, DeleteProject, nil, params, claims))

	// 项目与关联记录一并软删除
	var count int64
	require.NoError(t, db.Model(&model.Project{}).Where("id = ?", project.ID).Count(&count).Error)
	require.EqualValues(t, 0, count)
	require.NoError(t, db.Model(&model.Member{}).Where("project_id = ?", project.ID).Count(&count).Error)
	require.EqualValues(t, 0, count)
	require.NoError(t, db.Model(&model.File{}).Where("project_id = ?", project.ID).Count(&count).Error)
	require.EqualValues(t, 0, count)
	require.NoError(t, db.Model(&model.Activity{}).Where("project_id = ?", project.ID).Count(&count).Error)
	require.EqualValues(t, 0, count)

	// 还原后级联删除的记录全部可见
	test.NoError(t, test.DoParamRequestAs(t, RestoreProject, nil, params, claims))
	require.NoError(t, db.Model(&model.Project{}).Where("id = ?", project.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
	require.NoError(t, db.Model(&model.File{}).Where("id = ?", file.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)

	// 级联之前单独删掉的文件保持已删除状态
	require.NoError(t, db.Model(&model.File{}).Where("id = ?", gone.ID).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestAddMember(t *testing.T) {
	db := setup(t)
	_, ownerClaims := seedUser(t, db, "alice")
	target, _ := seedUser(t, db, "bob")

	test.NoError(t, test.DoRequestAs(t, CreateProject, ProjectCreateReq{
		Name: "demo", Description: "d",
	}, ownerClaims))
	var project model.Project
	require.NoError(t, db.First(&project, "name = ?", "demo").Error)

	resp := test.DoRequestAs(t, AddMember, MemberAddReq{
		ProjectID: project.ID,
		Email:     target.Email,
		Role:      model.RoleViewer,
	}, ownerClaims)
	test.NoError(t, resp)

	var member model.Member
	require.NoError(t, db.First(&member, "project_id = ? AND user_id = ?", project.ID, target.ID).Error)
	require.Equal(t, model.RoleViewer, member.Role)

	// 重复添加冲突
	resp = test.DoRequestAs(t, AddMember, MemberAddReq{
		ProjectID: project.ID,
		Email:     target.Email,
	}, ownerClaims)
	test.ErrorCode(t, response.ErrAlreadyExists, resp)
}

func TestReAddMemberAfterRemoval(t *testing.T) {
	db := setup(t)
	_, ownerClaims := seedUser(t, db, "alice")
	target, _ := seedUser(t, db, "bob")

	test.NoError(t, test.DoRequestAs(t, CreateProject, ProjectCreateReq{
		Name: "demo", Description: "d",
	}, ownerClaims))
	var project model.Project
	require.NoError(t, db.First(&project, "name = ?", "demo").Error)

	test.NoError(t, test.DoRequestAs(t, AddMember, MemberAddReq{
		ProjectID: project.ID, Email: target.Email,
	}, ownerClaims))
	test.NoError(t, test.DoRequestAs(t, RemoveMember, MemberRemoveReq{
		ProjectID: project.ID, UserID: target.ID,
	}, ownerClaims))

	// 移除后重新加入：复活旧行，角色按新请求生效
	resp := test.DoRequestAs(t, AddMember, MemberAddReq{
		ProjectID: project.ID, Email: target.Email, Role: model.RoleViewer,
	}, ownerClaims)
	test.NoError(t, resp)

	var member model.Member
	require.NoError(t, db.First(&member, "project_id = ? AND user_id = ?", project.ID, target.ID).Error)
	require.Equal(t, model.RoleViewer, member.Role)

	// 含已删除行在内也只有一条记录
	var total int64
	require.NoError(t, db.Unscoped().Model(&model.Member{}).
		Where("project_id = ? AND user_id = ?", project.ID, target.ID).
		Count(&total).Error)
	require.EqualValues(t, 1, total)
}

func TestRemoveMemberOwnerForbidden(t *testing.T) {
	db := setup(t)
	owner, ownerClaims := seedUser(t, db, "alice")

	test.NoError(t, test.DoRequestAs(t, CreateProject, ProjectCreateReq{
		Name: "demo", Description: "d",
	}, ownerClaims))
	var project model.Project
	require.NoError(t, db.First(&project, "name = ?", "demo").Error)

	resp := test.DoRequestAs(t, RemoveMember, MemberRemoveReq{
		ProjectID: project.ID,
		UserID:    owner.ID,
	}, ownerClaims)
	test.ErrorCode(t, response.ErrInvalidOperation, resp)
}
