package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"project-checkin-system/internal/model"

	"github.com/go-resty/resty/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	// 各动态流的固定窗口
	GlobalFeedLimit  = 10
	LocalFeedLimit   = 50
	ProjectFeedLimit = 50

	globalFeedCacheKey = "feed:global"
	globalFeedCacheTTL = 30 * time.Second
)

// Recorder 追加式审计日志。每个状态变更操作写入一条记录，之后不再修改
type Recorder struct {
	db         *gorm.DB
	cache      *redis.Client // 可为 nil，降级为直查
	httpClient *resty.Client // 可为 nil，关闭 webhook 推送
	webhookURL string
	log        *slog.Logger
}

func New(db *gorm.DB, cache *redis.Client, log *slog.Logger) *Recorder {
	return &Recorder{db: db, cache: cache, log: log}
}

// WithWebhook 配置动态推送目标
func (r *Recorder) WithWebhook(client *resty.Client, url string) *Recorder {
	r.httpClient = client
	r.webhookURL = url
	return r
}

// Append 在调用方事务内追加一条动态。
// 事务回滚时记录随之丢弃，保证失败操作不产生审计记录
func (r *Recorder) Append(tx *gorm.DB, activity *model.Activity) error {
	if err := tx.Create(activity).Error; err != nil {
		return err
	}

	// 全局流缓存失效；推送尽力而为，失败只记日志
	if r.cache != nil {
		r.cache.Del(context.Background(), globalFeedCacheKey)
	}
	if r.httpClient != nil && r.webhookURL != "" {
		go r.notify(activity)
	}
	return nil
}

func (r *Recorder) notify(activity *model.Activity) {
	_, err := r.httpClient.R().
		SetHeader("Content-Type", "application/json").
		SetBody(activity).
		Post(r.webhookURL)
	if err != nil && r.log != nil {
		r.log.Warn("动态推送失败", "error", err, "activity_id", activity.ID)
	}
}

// FeedEntry 动态流条目，带上展示用的用户名和项目信息
type FeedEntry struct {
	ID          uint      `json:"id"`
	Type        string    `json:"type"`
	Message     string    `json:"message"`
	Version     string    `json:"version"`
	CreatedAt   time.Time `json:"-"`
	CreateTime  int64     `json:"create_time"`
	Username    string    `json:"username"`
	ProjectID   uint      `json:"project_id"`
	ProjectName string    `json:"project_name"`
	ProjectType string    `json:"project_type"`
}

// feedQuery 动态流基础查询：连表取用户名和项目名，时间倒序。
// 用 Table 绕过了软删除自动作用域，需显式排除已删除行
func (r *Recorder) feedQuery(before int64) *gorm.DB {
	q := r.db.Table("activity").
		Select("activity.id, activity.type, activity.message, activity.version, activity.created_at, " +
			"user.username, project.id AS project_id, project.name AS project_name, project.type AS project_type").
		Joins("JOIN user ON user.id = activity.user_id").
		Joins("JOIN project ON project.id = activity.project_id").
		Where("activity.deleted_at IS NULL AND project.deleted_at IS NULL").
		Order("activity.created_at DESC, activity.id DESC")
	if before > 0 {
		// 游标分页：只取给定时间戳（毫秒）之前的记录
		q = q.Where("activity.created_at < ?", time.UnixMilli(before))
	}
	return q
}

func fillCreateTime(entries []FeedEntry) []FeedEntry {
	for i := range entries {
		entries[i].CreateTime = entries[i].CreatedAt.UnixMilli()
	}
	return entries
}

// GlobalFeed 全站最新动态，首页无游标请求走 Redis 缓存
func (r *Recorder) GlobalFeed(ctx context.Context, before int64) ([]FeedEntry, error) {
	if before == 0 && r.cache != nil {
		if raw, err := r.cache.Get(ctx, globalFeedCacheKey).Bytes(); err == nil {
			var cached []FeedEntry
			if json.Unmarshal(raw, &cached) == nil {
				return cached, nil
			}
		}
	}

	var entries []FeedEntry
	if err := r.feedQuery(before).Limit(GlobalFeedLimit).Scan(&entries).Error; err != nil {
		return nil, err
	}
	entries = fillCreateTime(entries)

	if before == 0 && r.cache != nil {
		if raw, err := json.Marshal(entries); err == nil {
			r.cache.Set(ctx, globalFeedCacheKey, raw, globalFeedCacheTTL)
		}
	}
	return entries, nil
}

// LocalFeed 本人及好友的动态
func (r *Recorder) LocalFeed(ctx context.Context, userID uint, before int64) ([]FeedEntry, error) {
	var friendIDs []uint
	if err := r.db.Model(&model.Friend{}).
		Where("user_id = ?", userID).
		Pluck("friend_id", &friendIDs).Error; err != nil {
		return nil, err
	}
	userIDs := append(friendIDs, userID)

	var entries []FeedEntry
	err := r.feedQuery(before).
		Where("activity.user_id IN ?", userIDs).
		Limit(LocalFeedLimit).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return fillCreateTime(entries), nil
}

// ProjectFeed 单个项目的动态
func (r *Recorder) ProjectFeed(ctx context.Context, projectID uint, before int64) ([]FeedEntry, error) {
	var entries []FeedEntry
	err := r.feedQuery(before).
		Where("activity.project_id = ?", projectID).
		Limit(ProjectFeedLimit).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return fillCreateTime(entries), nil
}
