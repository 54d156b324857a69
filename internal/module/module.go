package module

import (
	"project-checkin-system/internal/module/activity"
	"project-checkin-system/internal/module/admin"
	"project-checkin-system/internal/module/file"
	"project-checkin-system/internal/module/friend"
	"project-checkin-system/internal/module/ping"
	"project-checkin-system/internal/module/project"
	"project-checkin-system/internal/module/search"
	"project-checkin-system/internal/module/user"

	"github.com/gin-gonic/gin"
)

type Module interface {
	GetName() string
	Init()
	InitRouter(r *gin.RouterGroup)
}

var Modules []Module

func registerModule(m []Module) {
	Modules = append(Modules, m...)
}

func init() {
	// Register your module here
	registerModule([]Module{
		&user.ModuleUser{},
		&ping.ModulePing{},
		&friend.ModuleFriend{},
		&project.ModuleProject{},
		&file.ModuleFile{},
		&activity.ModuleActivity{},
		&search.ModuleSearch{},
		&admin.ModuleAdmin{},
	})
}
