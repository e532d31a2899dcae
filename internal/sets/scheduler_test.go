package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/NCUHOME-Y/TimiFocus/internal/models"
)

func TestNew_DefaultSize(t *testing.T) {
	assert.Equal(t, DefaultSize, New(0).Size())
	assert.Equal(t, DefaultSize, New(-3).Size())
	assert.Equal(t, 6, New(6).Size())
}

func TestCompleted_OnlyQualifying(t *testing.T) {
	s := New(4)
	s.Completed(models.KindWork)
	s.Completed(models.KindCustomWork)
	s.Completed(models.KindShortBreak)
	s.Completed(models.KindLongBreak)
	assert.Equal(t, 2, s.Count())
}

func TestSetComplete_AfterSizeWorks(t *testing.T) {
	s := New(4)
	for i := 0; i < 4; i++ {
		s.Completed(models.KindWork)
		s.Started(models.KindShortBreak)
	}
	assert.True(t, s.IsSetComplete())
	assert.Equal(t, models.KindLongBreak, s.RecommendBreak())
}

func TestSetComplete_Threshold(t *testing.T) {
	// counter+1 >= size：第 size-1 个完成后就建议长休息
	s := New(4)
	s.Completed(models.KindWork)
	s.Completed(models.KindWork)
	assert.False(t, s.IsSetComplete())
	assert.Equal(t, models.KindShortBreak, s.RecommendBreak())

	s.Completed(models.KindWork)
	assert.True(t, s.IsSetComplete())
}

func TestLongBreakResets(t *testing.T) {
	for _, n := range []int{0, 1, 3, 9} {
		s := New(4)
		for i := 0; i < n; i++ {
			s.Completed(models.KindWork)
		}
		s.Started(models.KindLongBreak)
		assert.Equal(t, 0, s.Count())
		assert.False(t, s.IsSetComplete())
	}
}

func TestStarted_OtherKindsKeepCount(t *testing.T) {
	s := New(4)
	s.Completed(models.KindWork)
	s.Started(models.KindWork)
	s.Started(models.KindShortBreak)
	assert.Equal(t, 1, s.Count())
}

func TestResize(t *testing.T) {
	s := New(4)
	s.Completed(models.KindWork)
	s.Resize(2)
	assert.True(t, s.IsSetComplete())
	s.Resize(0)
	assert.Equal(t, DefaultSize, s.Size())
}
