package file

import (
	"log/slog"

	"project-checkin-system/config"
	"project-checkin-system/internal/core/audit"
	"project-checkin-system/internal/core/authz"
	"project-checkin-system/internal/core/locking"
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
	locker   *locking.Service
	fileBed  *storage.FileBed
)

type ModuleFile struct{}

func (f *ModuleFile) GetName() string {
	return "File"
}

func (f *ModuleFile) Init() {
	log = logger.New("File")
	gate = authz.New(database.DB)
	recorder = audit.New(database.DB, cache.Client, log).
		WithWebhook(httpclient.Client, config.Get().Webhook.URL)
	locker = locking.New(database.DB, gate, recorder)
	fileBed = storage.New()
}
