package borrow

import (
	"log/slog"

	"equipment-lending-system/internal/global/database"
	"equipment-lending-system/internal/global/logger"
)

var (
	log *slog.Logger
	svc *Service
)

type ModuleBorrow struct{}

func (m *ModuleBorrow) GetName() string {
	return "Borrow"
}

func (m *ModuleBorrow) Init() {
	log = logger.New("Borrow")
	svc = NewService(database.DB)
	startOverdueSweep(svc)
}
