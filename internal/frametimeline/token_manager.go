package frametimeline

import (
	"sync"
	"time"
)

// registryEntry is one row of the token registry: the prediction the
// vsync scheduler handed over, and when it was recorded.
type registryEntry struct {
	insertedAt time.Time
	prediction TimelineItem
}

// TokenManager mints monotonically increasing tokens bound to a
// prediction tuple and serves lookups until the entry expires.
//
// Tokens are strictly increasing and, because expiry is purely time
// based, the registry's key order is also insertion order — a single
// mutex and a FIFO slice of live keys is enough to sweep expired
// entries in amortized O(1) per insert.
type TokenManager struct {
	mu        sync.Mutex
	nextToken int64
	retention time.Duration
	entries   map[int64]registryEntry
	order     []int64 // keys in insertion (== numeric) order, oldest first
	nowFn     func() time.Time
}

// NewTokenManager creates a TokenManager retaining predictions for the
// given duration (spec default: 120ms).
func NewTokenManager(retention time.Duration) *TokenManager {
	return &TokenManager{
		nextToken: InvalidToken + 1,
		retention: retention,
		entries:   make(map[int64]registryEntry),
		nowFn:     time.Now,
	}
}

// GenerateTokenForPredictions assigns the next token, records the
// prediction, sweeps expired entries, and returns the new token.
func (m *TokenManager) GenerateTokenForPredictions(pred TimelineItem) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowFn()
	m.sweepLocked(now)

	token := m.nextToken
	m.nextToken++
	m.entries[token] = registryEntry{insertedAt: now, prediction: pred}
	m.order = append(m.order, token)

	tracef("token %d minted pred=%+v", token, pred)
	return token
}

// GetPredictionsForToken returns the stored prediction if present and
// unexpired. No sweep happens on read, per the spec's contract that
// lookup holds the lock only long enough to copy out the item.
func (m *TokenManager) GetPredictionsForToken(token int64) (TimelineItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[token]
	if !ok {
		return TimelineItem{}, false
	}
	if m.nowFn().Sub(entry.insertedAt) >= m.retention {
		return TimelineItem{}, false
	}
	return entry.prediction, true
}

// sweepLocked removes every entry older than the retention window.
// Callers must hold m.mu. Entries are evicted oldest-first since
// m.order is insertion-ordered and retention is a fixed duration.
func (m *TokenManager) sweepLocked(now time.Time) {
	i := 0
	for ; i < len(m.order); i++ {
		entry, ok := m.entries[m.order[i]]
		if !ok || now.Sub(entry.insertedAt) < m.retention {
			break
		}
		delete(m.entries, m.order[i])
	}
	if i > 0 {
		m.order = m.order[i:]
	}
}
