package equipment

import (
	"log/slog"

	"equipment-lending-system/internal/global/database"
	"equipment-lending-system/internal/global/logger"
	"equipment-lending-system/internal/global/validation"
)

var (
	log *slog.Logger
	svc *Service
)

type ModuleEquipment struct{}

func (m *ModuleEquipment) GetName() string {
	return "Equipment"
}

func (m *ModuleEquipment) Init() {
	log = logger.New("Equipment")
	if err := validation.Register(); err != nil {
		log.Error("注册校验规则失败", "error", err)
	}
	svc = NewService(database.DB)
}
