package authz

import (
	"project-checkin-system/internal/global/response"
	"project-checkin-system/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Gate 授权判定。只读外部数据做出允许/拒绝决策，不产生副作用
type Gate struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Gate {
	return &Gate{db: db}
}

// RequireUser 解析操作者身份，用户不存在视为未认证
func (g *Gate) RequireUser(userID uint) (*model.User, *response.Error) {
	var user model.User
	if err := g.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.ErrUnauthorized.WithTips("用户不存在")
		}
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	return &user, nil
}

// RequireProject 加载项目，不存在返回 ErrNotFound
func (g *Gate) RequireProject(projectID uint) (*model.Project, *response.Error) {
	var project model.Project
	if err := g.db.First(&project, "id = ?", projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.ErrNotFound.WithTips("项目不存在")
		}
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	return &project, nil
}

// Membership 查询成员记录，非成员时返回 (nil, nil)
func (g *Gate) Membership(projectID, userID uint) (*model.Member, *response.Error) {
	var member model.Member
	err := g.db.First(&member, "project_id = ? AND user_id = ?", projectID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	return &member, nil
}

// IsFriend 判断两个用户之间是否存在好友边
func (g *Gate) IsFriend(userID, otherID uint) (bool, *response.Error) {
	var count int64
	err := g.db.Model(&model.Friend{}).
		Where("user_id = ? AND friend_id = ?", userID, otherID).
		Count(&count).Error
	if err != nil {
		return false, response.ErrDatabase.WithOrigin(err)
	}
	return count > 0, nil
}

// RequireMember 要求操作者是项目成员（文件上传/删除、检出等操作的前置条件）
func (g *Gate) RequireMember(projectID, actorID uint) (*model.Member, *response.Error) {
	member, err := g.Membership(projectID, actorID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, response.ErrForbidden.WithTips("不是项目成员")
	}
	return member, nil
}

// RequireOwner 项目元信息编辑、成员管理和删除仅限所有者
func (g *Gate) RequireOwner(project *model.Project, actorID uint) *response.Error {
	if project.OwnerID != actorID {
		return response.ErrForbidden.WithTips("仅项目所有者可执行该操作")
	}
	return nil
}

// CanView 项目详情：成员或所有者的好友可见
func (g *Gate) CanView(project *model.Project, actorID uint) *response.Error {
	member, err := g.Membership(project.ID, actorID)
	if err != nil {
		return err
	}
	if member != nil {
		return nil
	}
	friend, err := g.IsFriend(actorID, project.OwnerID)
	if err != nil {
		return err
	}
	if friend {
		return nil
	}
	return response.ErrForbidden.WithTips("不是项目成员")
}

// CheckAddMember 添加成员：仅所有者；目标已是成员或是操作者本人时冲突
func (g *Gate) CheckAddMember(project *model.Project, actorID uint, target *model.User) *response.Error {
	if err := g.RequireOwner(project, actorID); err != nil {
		return err
	}
	if target.ID == actorID {
		return response.ErrAlreadyExists.WithTips("不能添加自己")
	}
	member, err := g.Membership(project.ID, target.ID)
	if err != nil {
		return err
	}
	if member != nil {
		return response.ErrAlreadyExists.WithTips("该用户已是项目成员")
	}
	return nil
}

// CheckRemoveMember 移除成员：仅所有者；所有者本身不可被移除
func (g *Gate) CheckRemoveMember(project *model.Project, actorID, targetID uint) *response.Error {
	if err := g.RequireOwner(project, actorID); err != nil {
		return err
	}
	if targetID == project.OwnerID {
		return response.ErrInvalidOperation.WithTips("不能移除项目所有者")
	}
	return nil
}
