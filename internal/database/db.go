package database

import (
	_ "embed"
	"fmt"

	"github.com/NCUHOME-Y/TimiFocus/internal/config"
	"github.com/NCUHOME-Y/TimiFocus/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

//go:embed seeds/achievements.yaml
var achievementSeed []byte

// Open 按配置选择驱动并初始化
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch cfg.DBDriver {
	case "sqlite":
		dial = sqlite.Open(SQLiteDSN(cfg.SQLitePath))
	default:
		dial = postgres.Open(cfg.DSN())
	}
	return InitGorm(dial)
}

// SQLiteDSN 写事务用 BEGIN IMMEDIATE 串行化，避免并发 start 时的锁升级死锁
func SQLiteDSN(path string) string {
	return "file:" + path + "?_busy_timeout=5000&_txlock=immediate&_foreign_keys=on"
}

// InitGorm 初始化 GORM 数据库连接并运行自动迁移
// AutoMigrate 会自动创建表、添加缺失的列、创建约束和索引（含单一未结束区间的唯一索引）
func InitGorm(dial gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dial, &gorm.Config{
		TranslateError: true, // 唯一索引冲突统一翻译成 gorm.ErrDuplicatedKey
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&models.Interval{},
		&models.Task{},
		&models.Setting{},
		&models.Achievement{},
		&models.GrowthEvent{},
	); err != nil {
		return nil, err
	}
	if err := Seed(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Seed 写入成就定义与默认设置；重复执行不会清除已解锁时间和用户改过的设置
func Seed(db *gorm.DB) error {
	defs, err := AchievementDefinitions()
	if err != nil {
		return err
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "icon", "tier", "threshold"}),
	}).Create(&defs).Error; err != nil {
		return fmt.Errorf("seed achievements: %w", err)
	}

	settings := make([]models.Setting, 0, len(models.DefaultSettings))
	for k, v := range models.DefaultSettings {
		settings = append(settings, models.Setting{Key: k, Value: v})
	}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&settings).Error; err != nil {
		return fmt.Errorf("seed settings: %w", err)
	}
	return nil
}

// AchievementDefinitions 解析内置的成就定义
func AchievementDefinitions() ([]models.Achievement, error) {
	var defs []models.Achievement
	if err := yaml.Unmarshal(achievementSeed, &defs); err != nil {
		return nil, fmt.Errorf("parse achievement seed: %w", err)
	}
	return defs, nil
}
