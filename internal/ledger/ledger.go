// Package ledger 计时区间账本：持久化区间记录，保证同一时刻最多一个未结束区间
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/NCUHOME-Y/TimiFocus/internal/models"
	"github.com/NCUHOME-Y/TimiFocus/internal/pkg/metrics"
)

// StartInput start 的入参
type StartInput struct {
	Kind            models.Kind `json:"kind" validate:"required,oneof=work short_break long_break custom_work"`
	SubjectID       *uint       `json:"subject_id,omitempty"`
	DurationMinutes int         `json:"duration_minutes" validate:"min=1,max=120"`
}

type Ledger struct {
	db       *gorm.DB
	now      func() time.Time
	validate *validator.Validate
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db, now: time.Now, validate: validator.New()}
}

// WithClock 替换时间源（测试用）
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// WithTx 绑定到外层事务的账本副本；内部事务变成 savepoint，随外层一起提交或回滚
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	cp := *l
	cp.db = tx
	return &cp
}

// Start 新建区间，started_at = now
// 检查与插入在同一事务内；即使两个请求同时通过检查，open_slot 唯一索引也只放行一个
func (l *Ledger) Start(ctx context.Context, in StartInput) (models.Interval, error) {
	if err := l.validate.Struct(in); err != nil {
		return models.Interval{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	open := true
	iv := models.Interval{
		Kind:            in.Kind,
		SubjectID:       in.SubjectID,
		DurationMinutes: in.DurationMinutes,
		StartedAt:       l.now().UTC(),
		OpenSlot:        &open,
	}

	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.Interval{}).Where("ended_at IS NULL").Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrConflict
		}
		return tx.Create(&iv).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		err = ErrConflict
	}
	if err != nil {
		if errors.Is(err, ErrConflict) {
			metrics.RecordStartConflict()
		}
		return models.Interval{}, err
	}
	metrics.RecordIntervalStarted(string(iv.Kind))
	return iv, nil
}

// Complete 正常完成；已结束的区间直接返回当前状态（幂等）
func (l *Ledger) Complete(ctx context.Context, id uint) (models.Interval, error) {
	return l.close(ctx, id, models.OutcomeCompleted)
}

// Cancel 取消；语义同 Complete
func (l *Ledger) Cancel(ctx context.Context, id uint) (models.Interval, error) {
	return l.close(ctx, id, models.OutcomeCancelled)
}

func (l *Ledger) close(ctx context.Context, id uint, outcome models.Outcome) (models.Interval, error) {
	var iv models.Interval
	closed := false
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&iv, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if !iv.Open() {
			return nil
		}

		// ended_at 不早于 started_at
		end := l.now().UTC()
		if end.Before(iv.StartedAt) {
			end = iv.StartedAt
		}
		res := tx.Model(&models.Interval{}).
			Where("id = ? AND ended_at IS NULL", id).
			Updates(map[string]any{
				"ended_at":  end,
				"outcome":   string(outcome),
				"open_slot": nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 并发的另一次关闭抢先了，以库里的为准
			return tx.First(&iv, id).Error
		}
		closed = true
		iv.EndedAt = &end
		iv.Outcome = &outcome
		iv.OpenSlot = nil

		if outcome == models.OutcomeCompleted && iv.Kind.Qualifying() {
			return tx.Create(&models.GrowthEvent{IntervalID: iv.ID, Minutes: iv.DurationMinutes}).Error
		}
		return nil
	})
	if err != nil {
		return models.Interval{}, err
	}
	if closed {
		metrics.RecordIntervalClosed(string(iv.Kind), string(outcome))
	}
	return iv, nil
}

// Open 当前未结束的区间，没有则返回 nil
func (l *Ledger) Open(ctx context.Context) (*models.Interval, error) {
	var iv models.Interval
	err := l.db.WithContext(ctx).Where("ended_at IS NULL").Take(&iv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

// OpenForSubject 关联到某个任务的未结束区间
func (l *Ledger) OpenForSubject(ctx context.Context, subjectID uint) (*models.Interval, error) {
	var iv models.Interval
	err := l.db.WithContext(ctx).Where("ended_at IS NULL AND subject_id = ?", subjectID).Take(&iv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &iv, nil
}

func (l *Ledger) Get(ctx context.Context, id uint) (models.Interval, error) {
	var iv models.Interval
	err := l.db.WithContext(ctx).First(&iv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return iv, ErrNotFound
	}
	return iv, err
}

// List 历史记录，since 为零值时返回全部；按开始时间升序
func (l *Ledger) List(ctx context.Context, since time.Time) ([]models.Interval, error) {
	q := l.db.WithContext(ctx).Order("started_at ASC")
	if !since.IsZero() {
		q = q.Where("started_at >= ?", since.UTC())
	}
	var out []models.Interval
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// RecordManual 补录一段已结束的 custom_work，不占用 open_slot
func (l *Ledger) RecordManual(ctx context.Context, subjectID *uint, minutes int) (models.Interval, error) {
	in := StartInput{Kind: models.KindCustomWork, SubjectID: subjectID, DurationMinutes: minutes}
	if err := l.validate.Struct(in); err != nil {
		return models.Interval{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	end := l.now().UTC()
	outcome := models.OutcomeCompleted
	iv := models.Interval{
		Kind:            models.KindCustomWork,
		SubjectID:       subjectID,
		DurationMinutes: minutes,
		StartedAt:       end.Add(-time.Duration(minutes) * time.Minute),
		EndedAt:         &end,
		Outcome:         &outcome,
	}
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&iv).Error; err != nil {
			return err
		}
		return tx.Create(&models.GrowthEvent{IntervalID: iv.ID, Minutes: minutes}).Error
	})
	if err != nil {
		return models.Interval{}, err
	}
	metrics.RecordIntervalClosed(string(iv.Kind), string(outcome))
	return iv, nil
}
