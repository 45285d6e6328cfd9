package repository

import (
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"linkboard-go/internal/model"
	"linkboard-go/pkg/logging"
)

// OpenDB 建立数据库连接并迁移表结构，句柄交由调用方注入各服务
func OpenDB(logger *zap.Logger, atomicLogLevel zap.AtomicLevel) (*gorm.DB, error) {
	dsn := viper.GetString("db.dsn")
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logging.NewGormLogger(logger, logging.ToGormLogLevel(atomicLogLevel.Level())),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&model.Link{}, &model.BlockedDomain{}); err != nil {
		return nil, err
	}

	return db, nil
}
