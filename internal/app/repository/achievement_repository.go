package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/NCUHOME-Y/TimiFocus/internal/models"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: db}
}

// All 全部成就定义及解锁状态
func (r *AchievementRepository) All(ctx context.Context) ([]models.Achievement, error) {
	var out []models.Achievement
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

// Unlock 只写未解锁的行；返回 false 说明已被别的请求解锁
func (r *AchievementRepository) Unlock(ctx context.Context, key string, at time.Time) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Achievement{}).
		Where("key = ? AND unlocked_at IS NULL", key).
		Update("unlocked_at", at.UTC())
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
