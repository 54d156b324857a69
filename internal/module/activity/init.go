package activity

import (
	"log/slog"

	"project-checkin-system/config"
	"project-checkin-system/internal/core/audit"
	"project-checkin-system/internal/core/authz"
	"project-checkin-system/internal/global/cache"
	"project-checkin-system/internal/global/database"
	"project-checkin-system/internal/global/httpclient"
	"project-checkin-system/internal/global/logger"
)

var (
	log      *slog.Logger
	gate     *authz.Gate
	recorder *audit.Recorder
)

type ModuleActivity struct{}

func (a *ModuleActivity) GetName() string {
	return "Activity"
}

func (a *ModuleActivity) Init() {
	log = logger.New("Activity")
	gate = authz.New(database.DB)
	recorder = audit.New(database.DB, cache.Client, log).
		WithWebhook(httpclient.Client, config.Get().Webhook.URL)
}
