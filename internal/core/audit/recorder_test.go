package audit_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"project-checkin-system/internal/core/audit"
	"project-checkin-system/internal/model"
	"project-checkin-system/test"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedFeed(t *testing.T) (*audit.Recorder, *gorm.DB, model.User, model.Project) {
	db := test.NewDB(t)
	recorder := audit.New(db, nil, nil)

	user := model.User{Username: "alice", Email: "alice@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	project := model.Project{Name: "demo", Type: model.ProjectTypeLibrary, Version: "v1.0.0", OwnerID: user.ID}
	require.NoError(t, db.Create(&project).Error)

	return recorder, db, user, project
}

// appendAt 以受控时间写入一条动态，方便断言排序
func appendAt(t *testing.T, db *gorm.DB, userID, projectID uint, msg string, at time.Time) {
	activity := model.Activity{
		Type:      model.ActivityOther,
		ProjectID: projectID,
		UserID:    userID,
		Message:   msg,
		Version:   "v1.0.0",
	}
	activity.CreatedAt = at
	require.NoError(t, db.Create(&activity).Error)
}

func TestGlobalFeedNewestFirstWithLimit(t *testing.T) {
	recorder, db, user, project := seedFeed(t)

	base := time.Now().Add(-time.Hour)
	total := audit.GlobalFeedLimit + 5
	for i := 0; i < total; i++ {
		appendAt(t, db, user.ID, project.ID, fmt.Sprintf("event-%d", i), base.Add(time.Duration(i)*time.Minute))
	}

	entries, err := recorder.GlobalFeed(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, audit.GlobalFeedLimit)

	// 最新的在最前
	require.Equal(t, fmt.Sprintf("event-%d", total-1), entries[0].Message)
	for i := 1; i < len(entries); i++ {
		require.GreaterOrEqual(t, entries[i-1].CreateTime, entries[i].CreateTime)
	}
	require.Equal(t, user.Username, entries[0].Username)
	require.Equal(t, project.Name, entries[0].ProjectName)
}

func TestGlobalFeedCursor(t *testing.T) {
	recorder, db, user, project := seedFeed(t)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		appendAt(t, db, user.ID, project.ID, fmt.Sprintf("event-%d", i), base.Add(time.Duration(i)*time.Minute))
	}

	first, err := recorder.GlobalFeed(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, first, 5)

	// 以第三条为游标，应只剩更早的两条
	older, err := recorder.GlobalFeed(context.Background(), first[2].CreateTime)
	require.NoError(t, err)
	require.Len(t, older, 2)
	require.Equal(t, "event-1", older[0].Message)
	require.Equal(t, "event-0", older[1].Message)
}

func TestLocalFeedCoversSelfAndFriends(t *testing.T) {
	recorder, db, alice, project := seedFeed(t)

	bob := model.User{Username: "bob", Email: "bob@example.com", Password: "x"}
	carol := model.User{Username: "carol", Email: "carol@example.com", Password: "x"}
	require.NoError(t, db.Create(&bob).Error)
	require.NoError(t, db.Create(&carol).Error)

	require.NoError(t, db.Create(&model.Friend{UserID: alice.ID, FriendID: bob.ID}).Error)
	require.NoError(t, db.Create(&model.Friend{UserID: bob.ID, FriendID: alice.ID}).Error)

	base := time.Now().Add(-time.Hour)
	appendAt(t, db, alice.ID, project.ID, "by-alice", base)
	appendAt(t, db, bob.ID, project.ID, "by-bob", base.Add(time.Minute))
	appendAt(t, db, carol.ID, project.ID, "by-carol", base.Add(2*time.Minute))

	entries, err := recorder.LocalFeed(context.Background(), alice.ID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "by-bob", entries[0].Message)
	require.Equal(t, "by-alice", entries[1].Message)
}

func TestProjectFeedScopedToProject(t *testing.T) {
	recorder, db, user, project := seedFeed(t)

	other := model.Project{Name: "other", Type: model.ProjectTypeOther, Version: "v1.0.0", OwnerID: user.ID}
	require.NoError(t, db.Create(&other).Error)

	base := time.Now().Add(-time.Hour)
	appendAt(t, db, user.ID, project.ID, "here", base)
	appendAt(t, db, user.ID, other.ID, "elsewhere", base.Add(time.Minute))

	entries, err := recorder.ProjectFeed(context.Background(), project.ID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "here", entries[0].Message)
}

func TestAppendRollsBackWithTransaction(t *testing.T) {
	recorder, db, user, project := seedFeed(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := recorder.Append(tx, &model.Activity{
			Type:      model.ActivityCheckout,
			ProjectID: project.ID,
			UserID:    user.ID,
		}); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&model.Activity{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestFeedHidesDeletedProjects(t *testing.T) {
	recorder, db, user, project := seedFeed(t)

	appendAt(t, db, user.ID, project.ID, "visible", time.Now().Add(-time.Minute))
	require.NoError(t, db.Delete(&model.Project{}, project.ID).Error)

	entries, err := recorder.GlobalFeed(context.Background(), 0)
	require.NoError(t, err)
	require.Empty(t, entries)
}
