package user

import (
	"log/slog"

	"equipment-lending-system/internal/global/database"
	"equipment-lending-system/internal/global/logger"
	"equipment-lending-system/internal/global/pictureBed"
	"equipment-lending-system/internal/global/validation"
)

var (
	log *slog.Logger
	svc *Service
)

type ModuleUser struct{}

func (u *ModuleUser) GetName() string {
	return "User"
}

func (u *ModuleUser) Init() {
	log = logger.New("User")
	if err := validation.Register(); err != nil {
		log.Error("注册校验规则失败", "error", err)
	}
	svc = NewService(database.DB, pictureBed.Default)
}
