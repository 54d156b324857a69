package project

import (
	"log/slog"

	"project-checkin-system/config"
	"project-checkin-system/internal/core/audit"
	"project-checkin-system/internal/core/authz"
	"project-checkin-system/internal/global/cache"
	"project-checkin-system/internal/global/database"
	"project-checkin-system/internal/global/httpclient"
	"project-checkin-system/internal/global/logger"
	"project-checkin-system/internal/global/storage"
)

var (
	log      *slog.Logger
	gate     *authz.Gate
	recorder *audit.Recorder
	fileBed  *storage.FileBed
)

type ModuleProject struct{}

func (p *ModuleProject) GetName() string {
	return "Project"
}

func (p *ModuleProject) Init() {
	log = logger.New("Project")
	gate = authz.New(database.DB)
	recorder = audit.New(database.DB, cache.Client, log).
		WithWebhook(httpclient.Client, config.Get().Webhook.URL)
	fileBed = storage.New()
}
