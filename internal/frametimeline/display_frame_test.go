package frametimeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayFrame_LifecycleTransitions(t *testing.T) {
	cfg := DefaultConfig()
	df := newDisplayFrame(1, 0, 16_000_000, PredictionNone, TimelineItem{}, cfg)
	require.True(t, df.isOpen())

	df.setSfPresent(1000, NullFence(1000))
	assert.False(t, df.isOpen())

	signalTime, ok := df.pollFence()
	require.True(t, ok)
	assert.Equal(t, int64(1000), signalTime, "a null fence pre-signals at the finalize time, not zero")

	df.resolve(signalTime, NopTimeStatsSink{})
	snap := df.snapshot()
	assert.Equal(t, JankUnknown, snap.JankType, "no prediction means Unknown jank")
}

func TestDisplayFrame_AddSurfaceFrameAfterPresentIsDropped(t *testing.T) {
	df := newDisplayFrame(1, 0, 16_000_000, PredictionNone, TimelineItem{}, DefaultConfig())
	df.setSfPresent(1000, NullFence(1000))

	sf := newSurfaceFrame(2, 0, 0, "l", "", PredictionNone, TimelineItem{}, DefaultConfig())
	df.addSurfaceFrame(sf)

	assert.Empty(t, df.snapshot().SurfaceFrames, "protocol violation must be dropped, not appended")
}

func TestDisplayFrame_ResolveCascadesToSurfaceFrames(t *testing.T) {
	cfg := DefaultConfig()
	pred := TimelineItem{StartTime: 0, EndTime: 1000, PresentTime: 2000}
	df := newDisplayFrame(1, 0, 16_000_000, PredictionValid, pred, cfg)

	sf := newSurfaceFrame(2, 10, 20, "layer", "", PredictionValid, pred, cfg)
	df.addSurfaceFrame(sf)

	df.setSfPresent(1000, NullFence(1000))
	sink := &BufferingTimeStatsSink{}
	df.resolve(2000, sink)

	require.Len(t, sink.Displays, 1)
	require.Len(t, sink.Surfaces, 1)
	assert.Equal(t, int32(10), sink.Surfaces[0].OwnerPid)

	wantActuals := TimelineItem{StartTime: 0, EndTime: 1000, PresentTime: 2000}
	if diff := cmp.Diff(wantActuals, df.snapshot().Actuals); diff != "" {
		t.Errorf("resolved DisplayFrame actuals mismatch (-want +got):\n%s", diff)
	}
}

func TestDisplayFrame_ResolveCalledTwiceIsNoop(t *testing.T) {
	df := newDisplayFrame(1, 0, 16_000_000, PredictionNone, TimelineItem{}, DefaultConfig())
	df.setSfPresent(1000, NullFence(1000))

	sink := &BufferingTimeStatsSink{}
	df.resolve(2000, sink)
	df.resolve(3000, sink)

	assert.Len(t, sink.Displays, 1, "second resolve must not publish again")
}

func TestDisplayFrame_IsJanky(t *testing.T) {
	cfg := DefaultConfig()
	pred := TimelineItem{PresentTime: 2000}
	df := newDisplayFrame(1, 0, 16_000_000, PredictionValid, pred, cfg)
	df.setSfPresent(1000, NullFence(1000))
	df.resolve(2000, NopTimeStatsSink{})

	assert.False(t, df.isJanky())
}
