package frametimeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNullFence_PreSignaledAtGivenTime(t *testing.T) {
	nsecs, ok := NullFence(42).SignalTime()
	assert.True(t, ok)
	assert.Equal(t, int64(42), nsecs)
}

func TestManualFence_UnsignaledUntilSignal(t *testing.T) {
	f := &ManualFence{}
	_, ok := f.SignalTime()
	assert.False(t, ok)

	f.Signal(12345)
	nsecs, ok := f.SignalTime()
	assert.True(t, ok)
	assert.Equal(t, int64(12345), nsecs)
}
