package database

import (
	"errors"
	"fmt"

	"equipment-lending-system/config"
	"equipment-lending-system/internal/global/sentry/tracing"
	"equipment-lending-system/internal/model"
	"equipment-lending-system/tools"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

var DB *gorm.DB

func Init() {
	c := config.Get().Mysql
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.Username, c.Password, c.Host, c.Port, c.DBName)

	db, err := Open(gormmysql.Open(dsn))
	tools.PanicOnErr(err)
	if tracing.IsEnabled() {
		tools.PanicOnErr(db.Use(tracing.NewGormPlugin()))
	}
	tools.PanicOnErr(Migrate(db))
	DB = db
}

// Open 使用统一的命名策略和日志级别打开数据库
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: true}, // 还是单数表名好
		TranslateError: true,
	}
	switch config.Get().Mode {
	case config.ModeDebug:
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	case config.ModeRelease:
		gormConfig.Logger = logger.Discard
	}
	return gorm.Open(dialector, gormConfig)
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return err
	}
	// 旧数据补齐序列号唯一键
	return db.Model(&model.Equipment{}).
		Where("serial_key IS NULL AND serial_number <> ''").
		UpdateColumn("serial_key", gorm.Expr("serial_number")).Error
}

// IsDuplicate 唯一索引冲突
func IsDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
