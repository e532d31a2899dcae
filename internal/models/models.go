package models

import (
	"time"
)

// Kind 计时区间类型
type Kind string

const (
	KindWork       Kind = "work"
	KindShortBreak Kind = "short_break"
	KindLongBreak  Kind = "long_break"
	KindCustomWork Kind = "custom_work"
)

// Qualifying work / custom_work 计入专注统计，休息不计
func (k Kind) Qualifying() bool {
	return k == KindWork || k == KindCustomWork
}

func (k Kind) Valid() bool {
	switch k {
	case KindWork, KindShortBreak, KindLongBreak, KindCustomWork:
		return true
	}
	return false
}

// Outcome 只有 EndedAt 非空时才有意义
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeCancelled Outcome = "cancelled"
)

// Interval 一次计时区间（账本记录单位）
// OpenSlot 在区间未结束时为 true，结束后置 NULL；配合唯一索引保证同一时刻最多一个未结束区间
type Interval struct {
	ID              uint       `json:"id" gorm:"primaryKey"`
	Kind            Kind       `json:"kind" gorm:"type:varchar(16);index:idx_intervals_kind_outcome"`
	SubjectID       *uint      `json:"subject_id,omitempty" gorm:"index"`
	DurationMinutes int        `json:"duration_minutes"`
	StartedAt       time.Time  `json:"started_at" gorm:"index"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	Outcome         *Outcome   `json:"outcome,omitempty" gorm:"type:varchar(16);index:idx_intervals_kind_outcome"`
	OpenSlot        *bool      `json:"-" gorm:"uniqueIndex:idx_intervals_open_slot"`
}

// Open 未结束（运行中或暂停中）
func (iv Interval) Open() bool { return iv.EndedAt == nil }

// Completed 已正常完成
func (iv Interval) Completed() bool {
	return iv.EndedAt != nil && iv.Outcome != nil && *iv.Outcome == OutcomeCompleted
}

// Duration 计划时长
func (iv Interval) Duration() time.Duration {
	return time.Duration(iv.DurationMinutes) * time.Minute
}

// Task 任务记录（外部协作方，这里只保留引擎需要的字段）
type Task struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	Title         string     `json:"title" gorm:"type:varchar(255)"`
	IsCompleted   bool       `json:"is_completed" gorm:"default:false"`
	CompletedAt   *time.Time `json:"completed_at,omitempty" gorm:"index"`
	LoggedMinutes int        `json:"logged_minutes"` // 实际专注时长，完成任务时由引擎推送
	CreatedAt     time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
}

// 设置键
const (
	SettingWorkDuration       = "work_duration"
	SettingShortBreakDuration = "short_break_duration"
	SettingLongBreakDuration  = "long_break_duration"
	SettingSetSize            = "set_size"
)

// DefaultSettings 计时默认值，未写入的键回落到这里
var DefaultSettings = map[string]int{
	SettingWorkDuration:       25,
	SettingShortBreakDuration: 5,
	SettingLongBreakDuration:  15,
	SettingSetSize:            4,
}

// DurationKey 各类型区间默认时长对应的设置键；custom_work 沿用专注时长
func (k Kind) DurationKey() string {
	switch k {
	case KindShortBreak:
		return SettingShortBreakDuration
	case KindLongBreak:
		return SettingLongBreakDuration
	}
	return SettingWorkDuration
}

// Setting 键值设置
type Setting struct {
	Key   string `json:"key" gorm:"primaryKey;type:varchar(64)"`
	Value int    `json:"value"`
}

// Achievement 成就定义，UnlockedAt 一旦写入不再清空
type Achievement struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Key         string     `json:"key" gorm:"uniqueIndex;type:varchar(64)" yaml:"key"`
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Icon        string     `json:"icon" yaml:"icon"`
	Tier        string     `json:"tier" gorm:"type:varchar(16)" yaml:"tier"`
	Threshold   int        `json:"threshold" yaml:"threshold"`
	UnlockedAt  *time.Time `json:"unlocked_at,omitempty" yaml:"-"`
}

// Unlocked 是否已解锁
func (a Achievement) Unlocked() bool { return a.UnlockedAt != nil }

// GrowthEvent 成长事件：专注区间完成时写一条 minutes，供前端/宠物系统消费
type GrowthEvent struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	IntervalID uint      `json:"interval_id" gorm:"uniqueIndex"`
	Minutes    int       `json:"minutes"`
	Handled    bool      `json:"handled" gorm:"default:false;index"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}
