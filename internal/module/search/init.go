package search

import (
	"log/slog"

	"project-checkin-system/internal/global/logger"
)

var log *slog.Logger

type ModuleSearch struct{}

func (s *ModuleSearch) GetName() string {
	return "Search"
}

func (s *ModuleSearch) Init() {
	log = logger.New("Search")
}
