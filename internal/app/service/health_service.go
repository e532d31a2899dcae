package service

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// HealthService 探活：数据库可用即 ok
type HealthService struct {
	db *gorm.DB
}

func NewHealthService(db *gorm.DB) *HealthService {
	return &HealthService{db: db}
}

func (s *HealthService) Check(ctx context.Context) (map[string]string, error) {
	out := map[string]string{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)}
	sqlDB, err := s.db.DB()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}
	out["db"] = "ok"
	return out, nil
}
