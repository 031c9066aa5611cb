package frametimeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_MonotonicTokens(t *testing.T) {
	m := NewTokenManager(120 * time.Millisecond)

	a := m.GenerateTokenForPredictions(TimelineItem{PresentTime: 1})
	b := m.GenerateTokenForPredictions(TimelineItem{PresentTime: 2})
	c := m.GenerateTokenForPredictions(TimelineItem{PresentTime: 3})

	assert.Less(t, a, b)
	assert.Less(t, b, c)
}

func TestTokenManager_LookupReturnsStoredPrediction(t *testing.T) {
	m := NewTokenManager(120 * time.Millisecond)
	pred := TimelineItem{StartTime: 10, EndTime: 20, PresentTime: 30}

	token := m.GenerateTokenForPredictions(pred)
	got, ok := m.GetPredictionsForToken(token)

	require.True(t, ok)
	assert.Equal(t, pred, got)
}

func TestTokenManager_UnknownTokenMisses(t *testing.T) {
	m := NewTokenManager(120 * time.Millisecond)
	_, ok := m.GetPredictionsForToken(9999)
	assert.False(t, ok)
}

func TestTokenManager_ExpiresAfterRetention(t *testing.T) {
	m := NewTokenManager(120 * time.Millisecond)
	now := time.Unix(0, 0)
	m.nowFn = func() time.Time { return now }

	token := m.GenerateTokenForPredictions(TimelineItem{PresentTime: 1})

	now = now.Add(119 * time.Millisecond)
	_, ok := m.GetPredictionsForToken(token)
	assert.True(t, ok, "should still be valid just under retention")

	now = now.Add(2 * time.Millisecond)
	_, ok = m.GetPredictionsForToken(token)
	assert.False(t, ok, "should have expired past retention")
}

func TestTokenManager_SweepsExpiredEntriesOnInsert(t *testing.T) {
	m := NewTokenManager(10 * time.Millisecond)
	now := time.Unix(0, 0)
	m.nowFn = func() time.Time { return now }

	old := m.GenerateTokenForPredictions(TimelineItem{PresentTime: 1})

	now = now.Add(20 * time.Millisecond)
	m.GenerateTokenForPredictions(TimelineItem{PresentTime: 2})

	m.mu.Lock()
	_, stillStored := m.entries[old]
	m.mu.Unlock()
	assert.False(t, stillStored, "sweep should have removed the expired entry's storage")
}
