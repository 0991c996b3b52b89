package database

import (
	"errors"
	"log/slog"

	"equipment-lending-system/config"
	"equipment-lending-system/internal/model"
	"equipment-lending-system/tools"

	"gorm.io/gorm"
)

// Seed 确保角色和管理员账户存在，已存在的管理员不会被修改
func Seed(db *gorm.DB, log *slog.Logger) error {
	for _, name := range []model.RoleName{model.RoleUser, model.RoleAdmin} {
		role := model.Role{Name: name}
		if err := db.Where(model.Role{Name: name}).FirstOrCreate(&role).Error; err != nil {
			return err
		}
	}

	seed := config.Get().Seed
	if seed.AdminUsername == "" {
		return nil
	}
	var admin model.User
	err := db.Where("username = ?", seed.AdminUsername).First(&admin).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	var adminRole model.Role
	if err := db.Where("name = ?", model.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}
	hashed, err := tools.PasswordEncrypt(seed.AdminPassword)
	if err != nil {
		return err
	}
	admin = model.User{
		Username: seed.AdminUsername,
		Email:    seed.AdminEmail,
		Password: hashed,
		Name:     "系统管理员",
		Roles:    []model.Role{adminRole},
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	log.Info("管理员账户创建成功", "username", admin.Username)
	return nil
}
