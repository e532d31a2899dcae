package service

import (
	"time"

	"github.com/NCUHOME-Y/TimiFocus/internal/models"
)

type Motivation struct {
	Type    string `json:"type"` // praise|nudge
	Message string `json:"message"`
}

var praiseMessages = []string{
	"The early bird catches the worm. Great start!",
	"Productive this early? Respect!",
	"The morning is yours. Keep it up!",
	"Up and running before most people wake up.",
}

var nudgeMessages = []string{
	"Finally! It was about time...",
	"Half the day is gone. Let's get going!",
	"First timer this late? You can do better.",
	"Better late than never, but only just!",
}

var bedtimeMessages = []string{
	"It's past 9 pm. Time to start winding down!",
	"Your bed misses you. Don't work too long.",
	"Sleep is productive too. Remember to stop soon.",
	"Getting late! One more timer and then off to bed?",
}

const (
	praiseBefore = 11
	nudgeFrom    = 15
	bedtimeFrom  = 21
)

// Motivate 当天第一个专注：11 点前表扬，15–21 点催一下；21 点后的专注附带睡觉提醒。
// local 为本地时间，firstToday 表示今天此前没有开始过专注。
func Motivate(kind models.Kind, id uint, local time.Time, firstToday bool) (*Motivation, string) {
	if !kind.Qualifying() {
		return nil, ""
	}
	h := local.Hour()
	bedtime := ""
	if h >= bedtimeFrom {
		bedtime = pick(bedtimeMessages, id)
	}
	if !firstToday {
		return nil, bedtime
	}
	switch {
	case h < praiseBefore:
		return &Motivation{Type: "praise", Message: pick(praiseMessages, id)}, bedtime
	case h >= nudgeFrom && h < bedtimeFrom:
		return &Motivation{Type: "nudge", Message: pick(nudgeMessages, id)}, bedtime
	}
	return nil, bedtime
}

func pick(msgs []string, id uint) string {
	return msgs[int(id%uint(len(msgs)))]
}
