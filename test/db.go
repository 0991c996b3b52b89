package test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"equipment-lending-system/internal/global/database"
	"equipment-lending-system/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB 每个测试一个独立的内存 SQLite 库
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := database.Open(sqlite.Open(dsn))
	require.NoError(t, err)
	db.Logger = logger.Discard

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存库只能有一个连接，事务内必须使用 tx
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	require.NoError(t, db.Create(&[]model.Role{{Name: model.RoleUser}, {Name: model.RoleAdmin}}).Error)
	return db
}

func CreateUser(t *testing.T, db *gorm.DB, username string, roles ...model.RoleName) *model.User {
	t.Helper()
	if len(roles) == 0 {
		roles = []model.RoleName{model.RoleUser}
	}
	var rs []model.Role
	require.NoError(t, db.Where("name IN ?", roles).Find(&rs).Error)
	u := &model.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
		Name:     username,
		Roles:    rs,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func CreateCategory(t *testing.T, db *gorm.DB, name string) *model.Category {
	t.Helper()
	c := &model.Category{Name: name, Description: name + "类装备"}
	require.NoError(t, db.Create(c).Error)
	return c
}

// CreateEquipment 默认状态为可用、可用数量等于总数
func CreateEquipment(t *testing.T, db *gorm.DB, categoryID uint, name, serial string, quantity int) *model.Equipment {
	t.Helper()
	purchased := time.Date(2023, 1, 1, 0, 0, 0, 0, time.Local)
	price := 199.5
	e := &model.Equipment{
		Name:              name,
		SerialNumber:      serial,
		CategoryID:        categoryID,
		Quantity:          quantity,
		AvailableQuantity: quantity,
		Status:            model.EquipmentAvailable,
		Manufacturer:      "Bosch",
		ModelNo:           "X-1",
		PurchaseDate:      &purchased,
		PurchasePrice:     &price,
		Location:          "A区",
	}
	require.NoError(t, db.Create(e).Error)
	return e
}
