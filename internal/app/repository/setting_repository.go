package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/NCUHOME-Y/TimiFocus/internal/models"
)

type SettingRepository struct {
	DB *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{DB: db}
}

// All 库里没有的键回落到默认值
func (r *SettingRepository) All(ctx context.Context) (map[string]int, error) {
	var rows []models.Setting
	if err := r.DB.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int, len(models.DefaultSettings))
	for k, v := range models.DefaultSettings {
		out[k] = v
	}
	for _, s := range rows {
		out[s.Key] = s.Value
	}
	return out, nil
}

// Save 批量写入（存在则覆盖）
func (r *SettingRepository) Save(ctx context.Context, values map[string]int) error {
	if len(values) == 0 {
		return nil
	}
	rows := make([]models.Setting, 0, len(values))
	for k, v := range values {
		rows = append(rows, models.Setting{Key: k, Value: v})
	}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&rows).Error
}
