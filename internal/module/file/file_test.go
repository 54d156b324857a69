package file

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"project-checkin-system/internal/core/audit"
	"project-checkin-system/internal/core/authz"
	"project-checkin-system/internal/core/locking"
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
	locker = locking.New(db, gate, recorder)
	fileBed = &storage.FileBed{SaveDir: t.TempDir()}
	return db
}

// seedFile 建一个成员项目和一份已落盘的文件
func seedFile(t *testing.T, db *gorm.DB, blob []byte) (model.User, *jwt.Claims, model.Project, model.File) {
	user := model.User{Username: "alice", Email: "alice@example.com", Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	claims := test.ClaimsFor(user.ID, user.Username, user.RoleID)

	project := model.Project{Name: "demo", Type: model.ProjectTypeOther, Version: "v1.0.0", OwnerID: user.ID}
	require.NoError(t, db.Create(&project).Error)
	require.NoError(t, db.Create(&model.Member{
		ProjectID: project.ID, UserID: user.ID, Role: model.RoleOwner,
	}).Error)

	file := model.File{
		ProjectID: project.ID, Name: "notes.txt", Path: "blob-old",
		UploadedBy: user.ID, Status: model.FileCheckedIn,
	}
	require.NoError(t, db.Create(&file).Error)
	if blob != nil {
		require.NoError(t, os.WriteFile(filepath.Join(fileBed.SaveDir, file.Path), blob, 0o644))
	}
	return user, claims, project, file
}

func doCheckout(t *testing.T, fileID uint, claims *jwt.Claims) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/test", nil)
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(fileID)}}
	c.Set("payload", claims)
	CheckoutFile(c)
	return rec
}

func doCheckin(t *testing.T, fileID uint, fields map[string]string, fileName string, content []byte, claims *jwt.Claims) response.ResponseBody {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/test", &buf)
	c.Request.Header.Set("Content-Type", w.FormDataContentType())
	c.Params = gin.Params{{Key: "id", Value: fmt.Sprint(fileID)}}
	c.Set("payload", claims)
	CheckinFile(c)

	var resp response.ResponseBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestCheckoutStreamsBannerAndContent(t *testing.T) {
	db := setup(t)
	user, claims, project, file := seedFile(t, db, []byte("hello world"))

	rec := doCheckout(t, file.ID, claims)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, project.Name)
	require.Contains(t, body, user.Username)
	require.Contains(t, body, "hello world")

	var current model.File
	require.NoError(t, db.First(&current, "id = ?", file.ID).Error)
	require.Equal(t, model.FileCheckedOut, current.Status)
}

func TestCheckoutMissingBlobKeepsLockFree(t *testing.T) {
	db := setup(t)
	_, claims, _, file := seedFile(t, db, nil)

	rec := doCheckout(t, file.ID, claims)
	var resp response.ResponseBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	test.ErrorCode(t, response.ErrStorage, resp)

	// 内容读不到时不上锁也不留动态
	var current model.File
	require.NoError(t, db.First(&current, "id = ?", file.ID).Error)
	require.Equal(t, model.FileCheckedIn, current.Status)
	require.Nil(t, current.CheckedOutBy)

	var count int64
	require.NoError(t, db.Model(&model.Activity{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestCheckinReplacementCleansOldBlob(t *testing.T) {
	db := setup(t)
	_, claims, _, file := seedFile(t, db, []byte("old content"))

	rec := doCheckout(t, file.ID, claims)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := doCheckin(t, file.ID, map[string]string{
		"message": "换新稿",
		"version": "v1.1.0",
	}, "notes-v2.txt", []byte("new content"), claims)
	test.NoError(t, resp)

	var current model.File
	require.NoError(t, db.First(&current, "id = ?", file.ID).Error)
	require.Equal(t, model.FileCheckedIn, current.Status)
	require.Equal(t, "notes-v2.txt", current.Name)
	require.NotEqual(t, file.Path, current.Path)

	// 旧内容被回收，新内容在盘上
	_, err := os.Stat(filepath.Join(fileBed.SaveDir, file.Path))
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(fileBed.SaveDir, current.Path))
	require.NoError(t, err)
}

func TestCheckinWithoutReplacementReleasesLock(t *testing.T) {
	db := setup(t)
	_, claims, _, file := seedFile(t, db, []byte("content"))

	rec := doCheckout(t, file.ID, claims)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := doCheckin(t, file.ID, map[string]string{"message": "没有改动"}, "", nil, claims)
	test.NoError(t, resp)

	var current model.File
	require.NoError(t, db.First(&current, "id = ?", file.ID).Error)
	require.Equal(t, model.FileCheckedIn, current.Status)
	// 原内容保持在盘上
	_, err := os.Stat(filepath.Join(fileBed.SaveDir, file.Path))
	require.NoError(t, err)
}
