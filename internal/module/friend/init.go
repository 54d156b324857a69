package friend

import (
	"log/slog"

	"project-checkin-system/internal/core/authz"
	"project-checkin-system/internal/global/database"
	"project-checkin-system/internal/global/logger"
)

var (
	log  *slog.Logger
	gate *authz.Gate
)

type ModuleFriend struct{}

func (f *ModuleFriend) GetName() string {
	return "Friend"
}

func (f *ModuleFriend) Init() {
	log = logger.New("Friend")
	gate = authz.New(database.DB)
}
