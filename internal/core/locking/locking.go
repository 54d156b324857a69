package locking

import (
	"project-checkin-system/internal/core/audit"
	"project-checkin-system/internal/core/authz"
	"project-checkin-system/internal/global/response"
	"project-checkin-system/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Service 文件检出/检入状态机。
// 锁以文件为粒度；并发下的互斥由条件更新保证：
// 只有 WHERE 命中当前状态的 UPDATE 才会生效，两个并发检出最多一个成功。
type Service struct {
	db       *gorm.DB
	gate     *authz.Gate
	recorder *audit.Recorder
}

func New(db *gorm.DB, gate *authz.Gate, recorder *audit.Recorder) *Service {
	return &Service{db: db, gate: gate, recorder: recorder}
}

// Replacement 检入时随附的替换内容元数据
type Replacement struct {
	Name     string
	Path     string
	Size     int64
	MimeType string
}

// CheckinInput 检入参数。Version 为空时保留项目原版本
type CheckinInput struct {
	Message     string
	Version     string
	Replacement *Replacement
}

// LoadFile 加载文件及其所属项目
func (s *Service) LoadFile(fileID uint) (*model.File, *model.Project, *response.Error) {
	var file model.File
	if err := s.db.First(&file, "id = ?", fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, response.ErrNotFound.WithTips("文件不存在")
		}
		return nil, nil, response.ErrDatabase.WithOrigin(err)
	}
	project, aerr := s.gate.RequireProject(file.ProjectID)
	if aerr != nil {
		return nil, nil, aerr
	}
	return &file, project, nil
}

// Checkout 为操作者取得文件的独占编辑锁。
// 返回值第二项是冲突时的当前持锁人，供调用方提示 "locked by X"。
func (s *Service) Checkout(actorID, fileID uint) (*model.File, *model.User, *response.Error) {
	file, project, aerr := s.LoadFile(fileID)
	if aerr != nil {
		return nil, nil, aerr
	}
	if _, aerr := s.gate.RequireMember(project.ID, actorID); aerr != nil {
		return nil, nil, aerr
	}

	var failErr *response.Error
	var holder *model.User

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// 条件更新：仅当仍处于 checkedIn 时上锁
		res := tx.Model(&model.File{}).
			Where("id = ? AND status = ?", file.ID, model.FileCheckedIn).
			Updates(map[string]any{
				"status":         model.FileCheckedOut,
				"checked_out_by": actorID,
			})
		if res.Error != nil {
			failErr = response.ErrDatabase.WithOrigin(res.Error)
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 已被他人检出，回读持锁人用于提示
			holder = currentHolder(tx, file.ID)
			if holder != nil {
				failErr = response.ErrLocked.WithTips("文件已被 " + holder.Username + " 检出")
			} else {
				failErr = response.ErrLocked
			}
			return errors.New("checkout conflict")
		}

		// 失败路径不会走到这里，审计记录与状态变更同事务提交
		return s.recorder.Append(tx, &model.Activity{
			Type:      model.ActivityCheckout,
			ProjectID: project.ID,
			UserID:    actorID,
			Version:   project.Version,
			Files: []model.ActivityFile{
				{FileName: file.Name, FilePath: file.Path},
			},
		})
	})
	if err != nil {
		if failErr != nil {
			return nil, holder, failErr
		}
		return nil, nil, response.ErrDatabase.WithOrigin(err)
	}

	file.Status = model.FileCheckedOut
	file.CheckedOutBy = &actorID
	return file, nil, nil
}

// Checkin 释放锁。仅当前持锁人可检入；可选替换文件内容并更新项目版本
func (s *Service) Checkin(actorID, fileID uint, input CheckinInput) (*model.Activity, *response.Error) {
	file, project, aerr := s.LoadFile(fileID)
	if aerr != nil {
		return nil, aerr
	}

	version := project.Version
	if input.Version != "" {
		version = input.Version
	}

	var failErr *response.Error
	var activity *model.Activity

	err := s.db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"status":         model.FileCheckedIn,
			"checked_out_by": nil,
		}
		if r := input.Replacement; r != nil {
			updates["name"] = r.Name
			updates["path"] = r.Path
			updates["size"] = r.Size
			updates["mime_type"] = r.MimeType
		}

		// 条件更新：仅当操作者就是持锁人时放锁
		res := tx.Model(&model.File{}).
			Where("id = ? AND status = ? AND checked_out_by = ?",
				file.ID, model.FileCheckedOut, actorID).
			Updates(updates)
		if res.Error != nil {
			failErr = response.ErrDatabase.WithOrigin(res.Error)
			return res.Error
		}
		if res.RowsAffected == 0 {
			failErr = classifyCheckinFailure(tx, file.ID)
			return errors.New("checkin rejected")
		}

		if input.Version != "" {
			if err := tx.Model(&model.Project{}).
				Where("id = ?", project.ID).
				Update("version", input.Version).Error; err != nil {
				failErr = response.ErrDatabase.WithOrigin(err)
				return err
			}
		}

		name, path := file.Name, file.Path
		if input.Replacement != nil {
			name, path = input.Replacement.Name, input.Replacement.Path
		}
		activity = &model.Activity{
			Type:      model.ActivityCheckinFile,
			ProjectID: project.ID,
			UserID:    actorID,
			Message:   input.Message,
			Version:   version,
			Files: []model.ActivityFile{
				{FileName: name, FilePath: path},
			},
		}
		return s.recorder.Append(tx, activity)
	})
	if err != nil {
		if failErr != nil {
			return nil, failErr
		}
		return nil, response.ErrDatabase.WithOrigin(err)
	}

	return activity, nil
}

// classifyCheckinFailure 区分 "未检出" 与 "他人持锁" 两种拒绝原因。
// 在条件更新落空的事务内回读，保证看到的是同一视图
func classifyCheckinFailure(tx *gorm.DB, fileID uint) *response.Error {
	var current model.File
	if err := tx.First(&current, "id = ?", fileID).Error; err != nil {
		return response.ErrDatabase.WithOrigin(err)
	}
	if current.Status == model.FileCheckedIn {
		return response.ErrForbidden.WithTips("文件未被检出")
	}
	if holder := currentHolder(tx, fileID); holder != nil {
		return response.ErrForbidden.WithTips("仅检出者 " + holder.Username + " 可以检入")
	}
	return response.ErrForbidden.WithTips("仅检出者可以检入")
}

// currentHolder 回读当前持锁人，查不到时返回 nil
func currentHolder(tx *gorm.DB, fileID uint) *model.User {
	var current model.File
	if err := tx.First(&current, "id = ?", fileID).Error; err != nil {
		return nil
	}
	if current.CheckedOutBy == nil {
		return nil
	}
	var user model.User
	if err := tx.First(&user, "id = ?", *current.CheckedOutBy).Error; err != nil {
		return nil
	}
	return &user
}
