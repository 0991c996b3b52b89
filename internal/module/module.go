package module

import (
	"equipment-lending-system/internal/module/borrow"
	"equipment-lending-system/internal/module/category"
	"equipment-lending-system/internal/module/chat"
	"equipment-lending-system/internal/module/equipment"
	"equipment-lending-system/internal/module/ping"
	"equipment-lending-system/internal/module/stats"
	"equipment-lending-system/internal/module/user"

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
		&category.ModuleCategory{},
		&equipment.ModuleEquipment{},
		&borrow.ModuleBorrow{},
		&chat.ModuleChat{},
		&stats.ModuleStats{},
	})
}
