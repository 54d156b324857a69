package admin

import (
	"fmt"
	"time"

	"project-checkin-system/internal/global/database"
	"project-checkin-system/internal/global/response"
	"project-checkin-system/tools"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ActivityRow 导出的审计行
type ActivityRow struct {
	ID          uint      `excel:"ID"`
	Type        string    `excel:"类型"`
	Username    string    `excel:"用户"`
	ProjectName string    `excel:"项目"`
	Message     string    `excel:"说明"`
	Version     string    `excel:"版本"`
	CreatedAt   time.Time `excel:"-"`
	CreateTime  string    `excel:"时间"`
}

// ExportActivities 导出全量动态记录为 xlsx
func ExportActivities(c *gin.Context) {
	var rows []ActivityRow
	err := database.DB.Table("activity").
		Select("activity.id", "activity.type", "activity.message", "activity.version",
			"activity.created_at", "user.username", "project.name AS project_name").
		Joins("JOIN user ON user.id = activity.user_id").
		Joins("JOIN project ON project.id = activity.project_id").
		Where("activity.deleted_at IS NULL").
		Order("activity.created_at ASC, activity.id ASC").
		Scan(&rows).Error
	if err != nil {
		log.Error("查询导出数据失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	for i := range rows {
		rows[i].CreateTime = rows[i].CreatedAt.Format("2006-01-02 15:04:05")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := tools.ExportToExcel(f, "活动记录", rows); err != nil {
		log.Error("写入表格失败", "error", err)
		response.Fail(c, response.ErrServerInternal.WithOrigin(err))
		return
	}
	f.DeleteSheet("Sheet1")

	filename := fmt.Sprintf("activities_%s.xlsx", time.Now().Format("20060102_150405"))
	tools.SetDownloadHeader(c, filename, tools.ExcelContentType)

	if err := f.Write(c.Writer); err != nil {
		log.Error("下载表格失败", "error", err)
	}
}
