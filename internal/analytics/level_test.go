package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NCUHOME-Y/TimiFocus/internal/models"
)

func TestLevelFor_Thresholds(t *testing.T) {
	for _, s := range levels {
		at := LevelFor(s.threshold)
		assert.Equal(t, s.level, at.Level, "exactly at %d", s.threshold)
		assert.Equal(t, s.title, at.Title)
		if s.threshold > 0 {
			below := LevelFor(s.threshold - 1)
			assert.Equal(t, s.level-1, below.Level, "one short of %d", s.threshold)
		}
	}
}

func TestLevelFor_Brackets(t *testing.T) {
	l := LevelFor(180)
	assert.Equal(t, 2, l.Level)
	assert.Equal(t, 60, l.CurrentThreshold)
	require.NotNil(t, l.NextThreshold)
	assert.Equal(t, 300, *l.NextThreshold)
	assert.InDelta(t, 0.5, l.Progress, 1e-9)

	zero := LevelFor(0)
	assert.Equal(t, 1, zero.Level)
	assert.Equal(t, "Beginner", zero.Title)
	assert.Zero(t, zero.Progress)
}

func TestLevelFor_Top(t *testing.T) {
	l := LevelFor(50000)
	assert.Equal(t, MaxLevel(), l.Level)
	assert.Equal(t, "Legend", l.Title)
	assert.Nil(t, l.NextThreshold)
	assert.Equal(t, 1.0, l.Progress)
}

func TestTotalFocusMinutes(t *testing.T) {
	ivs := []models.Interval{
		done(models.KindWork, 0, 10, 25),
		done(models.KindCustomWork, 1, 10, 40),
		done(models.KindShortBreak, 0, 11, 5),
		cancelled(models.KindWork, 0, 12, 25),
	}
	assert.Equal(t, 65, TotalFocusMinutes(ivs))
	assert.Zero(t, TotalFocusMinutes(nil))
}
