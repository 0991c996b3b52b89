package stats

import (
	"log/slog"

	"equipment-lending-system/internal/global/logger"
)

var log *slog.Logger

type ModuleStats struct{}

func (*ModuleStats) GetName() string {
	return "Stats"
}

func (*ModuleStats) Init() {
	log = logger.New("Stats")
	log.Info("统计模块已加载")
}
