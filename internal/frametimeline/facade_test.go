package frametimeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vsyncPeriod = int64(16 * time.Millisecond)

func newTestTimeline() *FrameTimeline {
	cfg := DefaultConfig()
	cfg.MaxDisplayFrames = 4
	return NewFrameTimeline(cfg, nil, nil)
}

func TestFrameTimeline_OnTimeFrame(t *testing.T) {
	ft := newTestTimeline()

	// predPresent is set well clear of a single vsyncPeriod so the
	// lastLatchTime=0 "no previous buffer" sentinel below can't
	// accidentally land inside the one-period stuffing window.
	predPresent := vsyncPeriod * 5
	token := ft.GenerateTokenForPredictions(TimelineItem{StartTime: 0, EndTime: 1_000_000, PresentTime: predPresent})
	ft.SetSfWakeUp(token, true, 0, vsyncPeriod)

	sf := ft.CreateSurfaceFrameForToken(token, true, 100, 200, "layer", "")
	ft.AddSurfaceFrame(sf)
	sf.SetActualStartTime(0)
	sf.SetAcquireFenceTime(1_000_000)
	sf.SetPresentState(PresentPresented, 0)

	manual := &ManualFence{}
	manual.Signal(predPresent)
	ft.SetSfPresent(1_000_000, manual)

	history := ft.History()
	require.Len(t, history, 1)
	assert.False(t, history[0].isJanky())
}

func TestFrameTimeline_CompositorMissedDeadline(t *testing.T) {
	ft := newTestTimeline()

	token := ft.GenerateTokenForPredictions(TimelineItem{EndTime: 1_000_000, PresentTime: vsyncPeriod})
	ft.SetSfWakeUp(token, true, 0, vsyncPeriod)

	manual := &ManualFence{}
	manual.Signal(vsyncPeriod + int64(3*time.Millisecond))
	ft.SetSfPresent(1_000_000+int64(3*time.Millisecond), manual)

	history := ft.History()
	require.Len(t, history, 1)
	snap := history[0].snapshot()
	assert.True(t, snap.JankType&JankSurfaceFlingerDeadlineMissed != 0)
}

func TestFrameTimeline_DisplayHALJank(t *testing.T) {
	ft := newTestTimeline()

	token := ft.GenerateTokenForPredictions(TimelineItem{EndTime: 1_000_000, PresentTime: vsyncPeriod})
	ft.SetSfWakeUp(token, true, 0, vsyncPeriod)

	// Ready on time (EndTime matches prediction) but present is late.
	manual := &ManualFence{}
	ft.SetSfPresent(1_000_000, manual)
	assert.Empty(t, ft.History(), "frame must stay pending until its fence signals")

	manual.Signal(vsyncPeriod + int64(3*time.Millisecond))
	ft.Drain()

	history := ft.History()
	require.Len(t, history, 1)
	snap := history[0].snapshot()
	assert.True(t, snap.JankType&JankDisplayHAL != 0)
}

func TestFrameTimeline_AppBufferStuffing(t *testing.T) {
	ft := newTestTimeline()
	pred := TimelineItem{StartTime: 0, EndTime: 1_000_000, PresentTime: vsyncPeriod * 10}

	token := ft.GenerateTokenForPredictions(pred)
	ft.SetSfWakeUp(token, true, 0, vsyncPeriod)

	sf := ft.CreateSurfaceFrameForToken(token, true, 1, 2, "stuffed-layer", "")
	ft.AddSurfaceFrame(sf)
	sf.SetActualStartTime(0)
	sf.SetAcquireFenceTime(1_000_000)
	sf.SetPresentState(PresentPresented, vsyncPeriod*9)

	manual := &ManualFence{}
	manual.Signal(vsyncPeriod * 10)
	ft.SetSfPresent(1_000_000, manual)

	history := ft.History()
	require.Len(t, history, 1)
	surfaces := history[0].snapshot().SurfaceFrames
	require.Len(t, surfaces, 1)
	assert.True(t, surfaces[0].JankType&JankAppBufferStuffing != 0)
}

func TestFrameTimeline_ExpiredToken(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PredictionRetention = 10 * time.Millisecond
	ft := NewFrameTimeline(cfg, nil, nil)

	now := time.Unix(0, 0)
	ft.tokens.nowFn = func() time.Time { return now }
	token := ft.GenerateTokenForPredictions(TimelineItem{PresentTime: vsyncPeriod})

	now = now.Add(20 * time.Millisecond)
	sf := ft.CreateSurfaceFrameForToken(token, true, 1, 2, "layer", "")
	assert.Equal(t, PredictionExpired, sf.snapshot().PredictionState)
}

func TestFrameTimeline_HistoryBound(t *testing.T) {
	ft := newTestTimeline() // capacity 4

	for i := 0; i < 10; i++ {
		ft.SetSfWakeUp(InvalidToken, false, int64(i), vsyncPeriod)
		ft.SetSfPresent(int64(i), NullFence(int64(i)))
	}

	history := ft.History()
	assert.Len(t, history, 4, "history must stay bounded to MaxDisplayFrames")
}
