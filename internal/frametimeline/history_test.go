package frametimeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDisplayFrame(token int64) *DisplayFrame {
	return newDisplayFrame(token, 0, vsyncPeriod, PredictionNone, TimelineItem{}, DefaultConfig())
}

func TestFrameHistory_BoundsToCapacity(t *testing.T) {
	h := newFrameHistory(3)
	for i := int64(0); i < 5; i++ {
		h.add(newTestDisplayFrame(i))
	}
	assert.Equal(t, 3, h.len())

	all := h.all()
	require.Len(t, all, 3)
	assert.Equal(t, int64(2), all[0].token)
	assert.Equal(t, int64(4), all[2].token)
}

func TestFrameHistory_OrderingOldestFirst(t *testing.T) {
	h := newFrameHistory(5)
	for i := int64(0); i < 3; i++ {
		h.add(newTestDisplayFrame(i))
	}
	all := h.all()
	require.Len(t, all, 3)
	for i, f := range all {
		assert.Equal(t, int64(i), f.token)
	}
}

func TestFrameHistory_ResizeShrinkKeepsMostRecent(t *testing.T) {
	h := newFrameHistory(5)
	for i := int64(0); i < 5; i++ {
		h.add(newTestDisplayFrame(i))
	}
	h.resize(2)
	all := h.all()
	require.Len(t, all, 2)
	assert.Equal(t, int64(3), all[0].token)
	assert.Equal(t, int64(4), all[1].token)
}

func TestFrameHistory_ResizeGrowKeepsAll(t *testing.T) {
	h := newFrameHistory(2)
	for i := int64(0); i < 2; i++ {
		h.add(newTestDisplayFrame(i))
	}
	h.resize(5)
	assert.Equal(t, 2, h.len())

	h.add(newTestDisplayFrame(99))
	assert.Equal(t, 3, h.len())
}

func TestFrameHistory_Clear(t *testing.T) {
	h := newFrameHistory(3)
	h.add(newTestDisplayFrame(1))
	h.clear()
	assert.Equal(t, 0, h.len())
	assert.Empty(t, h.all())
}
