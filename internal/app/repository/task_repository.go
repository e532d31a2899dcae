package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/NCUHOME-Y/TimiFocus/internal/ledger"
	"github.com/NCUHOME-Y/TimiFocus/internal/models"
)

// TaskRepository 任务记录；完成任务时顺带关闭关联的未结束区间
type TaskRepository struct {
	DB     *gorm.DB
	Ledger *ledger.Ledger
	now    func() time.Time
}

func NewTaskRepository(db *gorm.DB, l *ledger.Ledger) *TaskRepository {
	return &TaskRepository{DB: db, Ledger: l, now: time.Now}
}

// WithClock 替换时间源（测试用）
func (r *TaskRepository) WithClock(now func() time.Time) *TaskRepository {
	r.now = now
	return r
}

// Create 创建任务
func (r *TaskRepository) Create(ctx context.Context, title string) (models.Task, error) {
	t := models.Task{Title: title, CreatedAt: r.now().UTC()}
	err := r.DB.WithContext(ctx).Create(&t).Error
	return t, err
}

func (r *TaskRepository) Get(ctx context.Context, id uint) (models.Task, error) {
	var t models.Task
	err := r.DB.WithContext(ctx).First(&t, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return t, ErrTaskNotFound
	}
	return t, err
}

// Title 引擎只关心标题
func (r *TaskRepository) Title(ctx context.Context, id uint) (string, error) {
	t, err := r.Get(ctx, id)
	return t.Title, err
}

// List 全部任务，统计用
func (r *TaskRepository) List(ctx context.Context) ([]models.Task, error) {
	var out []models.Task
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

// ToggleCompletion 切换完成状态。
// 变为完成时：关联该任务的未结束区间按完成关闭，实际耗时（截断到计划时长）记到任务上；
// manualMinutes > 0 时补录一段 custom_work。变回未完成时只清掉完成时间。
// 所有写入在同一事务里，任何一步失败都整体回滚
func (r *TaskRepository) ToggleCompletion(ctx context.Context, id uint, elapsedMinutes, manualMinutes *int) (models.Task, error) {
	var t models.Task
	now := r.now().UTC()
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&t, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}
		t.IsCompleted = !t.IsCompleted
		if t.IsCompleted {
			t.CompletedAt = &now
		} else {
			t.CompletedAt = nil
		}
		if err := tx.Model(&t).Select("is_completed", "completed_at").Updates(&t).Error; err != nil {
			return err
		}
		if !t.IsCompleted {
			return nil
		}

		l := r.Ledger.WithTx(tx)
		logged := 0
		open, err := l.OpenForSubject(ctx, id)
		if err != nil {
			return err
		}
		if open != nil {
			logged += clampElapsed(elapsedMinutes, open.StartedAt, now, open.DurationMinutes)
			if _, err := l.Complete(ctx, open.ID); err != nil {
				return err
			}
		}
		if manualMinutes != nil && *manualMinutes > 0 {
			if _, err := l.RecordManual(ctx, &id, *manualMinutes); err != nil {
				return err
			}
			logged += *manualMinutes
		}
		if logged == 0 {
			return nil
		}
		if err := tx.Model(&t).
			Update("logged_minutes", gorm.Expr("logged_minutes + ?", logged)).Error; err != nil {
			return err
		}
		t.LoggedMinutes += logged
		return nil
	})
	if err != nil {
		return models.Task{}, err
	}
	return t, nil
}

// clampElapsed 优先用客户端给的耗时（暂停过也准确），否则按 started_at 估算；结果在 [1, planned]
func clampElapsed(client *int, startedAt, now time.Time, planned int) int {
	var m int
	if client != nil {
		m = *client
	} else {
		m = int(now.Sub(startedAt).Round(time.Minute) / time.Minute)
	}
	if m < 1 {
		m = 1
	}
	if m > planned {
		m = planned
	}
	return m
}
