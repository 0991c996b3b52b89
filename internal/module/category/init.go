package category

import (
	"log/slog"

	"equipment-lending-system/internal/global/database"
	"equipment-lending-system/internal/global/logger"
)

var (
	log *slog.Logger
	svc *Service
)

type ModuleCategory struct{}

func (m *ModuleCategory) GetName() string {
	return "Category"
}

func (m *ModuleCategory) Init() {
	log = logger.New("Category")
	svc = NewService(database.DB)
}
