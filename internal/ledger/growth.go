package ledger

import (
	"context"

	"github.com/NCUHOME-Y/TimiFocus/internal/models"
)

// PullGrowth 拉取未处理的成长事件，按 ID 升序（保证顺序）
func (l *Ledger) PullGrowth(ctx context.Context, limit int) ([]models.GrowthEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var evs []models.GrowthEvent
	err := l.db.WithContext(ctx).
		Where("handled = ?", false).
		Order("id ASC").Limit(limit).Find(&evs).Error
	return evs, err
}

// AckGrowth 将 ≤ lastID 的事件标记为已处理，防止重复拉取
func (l *Ledger) AckGrowth(ctx context.Context, lastID uint) error {
	return l.db.WithContext(ctx).Model(&models.GrowthEvent{}).
		Where("id <= ? AND handled = ?", lastID, false).
		Update("handled", true).Error
}
