package database

import (
	"fmt"
	"log"

	"eventledger/config"
	"eventledger/models"

	"github.com/cenkalti/backoff/v4"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// DSN 构建 MySQL 连接字符串
func DSN(cfg *config.Config) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DBName,
		cfg.Database.Charset,
	)
}

// Init 初始化数据库连接
// 首次连接按指数退避重试，超过 connect_timeout 视为失败
func Init(cfg *config.Config) error {
	dsn := DSN(cfg)

	logLevel := logger.Warn
	if cfg.Server.Mode == "debug" {
		logLevel = logger.Info
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = cfg.Database.ConnectTimeout

	attempt := 0
	connect := func() error {
		attempt++
		db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logLevel),
		})
		if err != nil {
			log.Printf("连接数据库失败（第 %d 次）: %v", attempt, err)
			return err
		}
		DB = db
		return nil
	}
	if err := backoff.Retry(connect, b); err != nil {
		return fmt.Errorf("连接数据库失败（%s 内未就绪）: %w", cfg.Database.ConnectTimeout, err)
	}

	// 获取底层 *sql.DB 连接池配置
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	if err := Migrate(DB); err != nil {
		return err
	}

	log.Println("数据库初始化成功")
	return nil
}

// Migrate 自动迁移数据库表
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Document{}); err != nil {
		return fmt.Errorf("迁移数据表失败: %w", err)
	}
	return nil
}

// GetDB 获取数据库连接
func GetDB() *gorm.DB {
	return DB
}
