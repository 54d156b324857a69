package server

import (
	"fmt"
	"log/slog"

	"project-checkin-system/config"
	"project-checkin-system/internal/global/cache"
	"project-checkin-system/internal/global/database"
	"project-checkin-system/internal/global/httpclient"
	"project-checkin-system/internal/global/logger"
	"project-checkin-system/internal/global/middleware"
	"project-checkin-system/internal/global/sentry"
	"project-checkin-system/internal/module"
	"project-checkin-system/tools"

	"github.com/gin-gonic/gin"
)

var log *slog.Logger

func Init() {
	config.Init()
	log = logger.New("Server")

	if err := sentry.Init(); err != nil {
		log.Warn("Sentry init failed", "error", err)
	}

	database.Init()

	cache.Init()

	httpclient.Init()

	for _, m := range module.Modules {
		log.Info(fmt.Sprintf("Init Module: %s", m.GetName()))
		m.Init()
	}
}

func Run() {
	gin.SetMode(string(config.Get().Mode))
	r := gin.New()

	switch config.Get().Mode {
	case config.ModeRelease:
		r.Use(middleware.Logger(logger.Get()))
	case config.ModeDebug:
		r.Use(gin.Logger())
	}
	r.Use(middleware.Cors())
	r.Use(middleware.Recovery())

	if config.Get().Sentry.Dsn != "" {
		r.Use(sentry.Middleware())
	}

	for _, m := range module.Modules {
		log.Info(fmt.Sprintf("Init Router: %s", m.GetName()))
		m.InitRouter(r.Group("/" + config.Get().Prefix))
	}
	err := r.Run(config.Get().Host + ":" + config.Get().Port)
	tools.PanicOnErr(err)
}
