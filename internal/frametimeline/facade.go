package frametimeline

import "sync"

// FrameTimeline is the lifecycle owner: it exposes the ingress API to
// the compositor, holds the bounded history, owns the TokenManager,
// and fans out to the timestats and trace sinks (spec §4.5).
//
// A single mutex guards the current frame, pending queue and history
// (spec §5). Operations release it before calling into the
// TokenManager, which is self-synchronized, so no operation holds both
// locks at once; AddSurfaceFrame and SetSfPresent also release it
// between their steps rather than holding it for their full duration.
type FrameTimeline struct {
	mu sync.Mutex

	cfg     Config
	tokens  *TokenManager
	current *DisplayFrame
	pending pendingPresentQueue
	history *frameHistory

	timeStats TimeStatsSink
	trace     TraceSink
}

// NewFrameTimeline creates a facade with the given configuration and
// external sinks. Either sink may be nil, in which case records/packets
// are simply dropped.
func NewFrameTimeline(cfg Config, timeStats TimeStatsSink, trace TraceSink) *FrameTimeline {
	if timeStats == nil {
		timeStats = NopTimeStatsSink{}
	}
	if trace == nil {
		trace = NopTraceSink{}
	}
	return &FrameTimeline{
		cfg:       cfg,
		tokens:    NewTokenManager(cfg.PredictionRetention),
		history:   newFrameHistory(cfg.MaxDisplayFrames),
		timeStats: timeStats,
		trace:     trace,
	}
}

// GenerateTokenForPredictions mints a token bound to a prediction
// tuple. Called by the vsync scheduler (spec §6).
func (ft *FrameTimeline) GenerateTokenForPredictions(pred TimelineItem) int64 {
	return ft.tokens.GenerateTokenForPredictions(pred)
}

// CreateSurfaceFrameForToken resolves optToken against the registry and
// constructs a SurfaceFrame. If hasToken is false (no token supplied),
// predictionState is None with zero predictions.
func (ft *FrameTimeline) CreateSurfaceFrameForToken(optToken int64, hasToken bool, ownerPid, ownerUid int32, layerName, debugName string) *SurfaceFrame {
	ft.mu.Lock()
	cfg := ft.cfg
	ft.mu.Unlock()

	if !hasToken {
		return newSurfaceFrame(InvalidToken, ownerPid, ownerUid, layerName, debugName, PredictionNone, TimelineItem{}, cfg)
	}

	pred, ok := ft.tokens.GetPredictionsForToken(optToken)
	if ok {
		return newSurfaceFrame(optToken, ownerPid, ownerUid, layerName, debugName, PredictionValid, pred, cfg)
	}
	return newSurfaceFrame(optToken, ownerPid, ownerUid, layerName, debugName, PredictionExpired, TimelineItem{}, cfg)
}

// AddSurfaceFrame appends sf to the currently open DisplayFrame. Out of
// protocol (no frame open) is a protocol violation: logged and dropped.
func (ft *FrameTimeline) AddSurfaceFrame(sf *SurfaceFrame) {
	ft.mu.Lock()
	current := ft.current
	ft.mu.Unlock()

	if current == nil {
		opsf("addSurfaceFrame with no open DisplayFrame, token=%d", sf.Token())
		return
	}
	current.addSurfaceFrame(sf)
}

// SetSfWakeUp finalizes any previously open DisplayFrame that hasn't
// been finalized yet (a new wake implies the previous one is done,
// spec Design Notes §9 "open question"), then opens a new one.
func (ft *FrameTimeline) SetSfWakeUp(optToken int64, hasToken bool, wakeTime, vsyncPeriod int64) {
	ft.mu.Lock()
	if ft.current != nil && ft.current.isOpen() {
		// No real fence for an implicit finalize: setSfPresent treats a
		// nil fence as pre-signaled at wakeTime (spec invariant 4).
		ft.finalizeCurrentLocked(wakeTime, nil)
	}
	ft.mu.Unlock()

	// Resolve the prediction with the facade lock released: TokenManager
	// is self-synchronized and the facade lock is never held across a
	// call into it (spec §5).
	predictionState := PredictionNone
	pred := TimelineItem{}
	if hasToken {
		if resolved, ok := ft.tokens.GetPredictionsForToken(optToken); ok {
			predictionState, pred = PredictionValid, resolved
		} else {
			predictionState = PredictionExpired
		}
	}
	token := optToken
	if !hasToken {
		token = InvalidToken
	}

	ft.mu.Lock()
	ft.current = newDisplayFrame(token, wakeTime, vsyncPeriod, predictionState, pred, ft.cfg)
	ft.mu.Unlock()

	tracef("setSfWakeUp token=%d wake=%d vsync=%d", token, wakeTime, vsyncPeriod)
}

// SetSfPresent finalizes the current DisplayFrame, enqueues it against
// fence, clears the current reference, and drains the pending queue.
func (ft *FrameTimeline) SetSfPresent(endTime int64, fence Fence) {
	ft.mu.Lock()
	if ft.current == nil {
		ft.mu.Unlock()
		opsf("setSfPresent with no open DisplayFrame")
		return
	}
	ft.finalizeCurrentLocked(endTime, fence)
	ft.mu.Unlock()

	ft.drain()
}

// finalizeCurrentLocked runs setSfPresent on the current DisplayFrame,
// enqueues it, and clears ft.current. Callers must hold ft.mu.
func (ft *FrameTimeline) finalizeCurrentLocked(endTime int64, fence Fence) {
	ft.current.setSfPresent(endTime, fence)
	ft.pending.push(ft.current)
	ft.current = nil
}

// drain walks the pending queue resolving every signaled fence, in
// FIFO order, appending resolved frames to history.
func (ft *FrameTimeline) drain() {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.pending.drain(ft.timeStats, ft.trace, func(frame *DisplayFrame) {
		ft.history.add(frame)
	})
}

// Drain exposes the pending-present drain for callers (e.g. dump
// routines) that want to surface any newly signaled fences before
// reading history, per spec §4.6 ("invoked at every setSfPresent and
// every dump").
func (ft *FrameTimeline) Drain() {
	ft.drain()
}

// SetMaxDisplayFrames bounds the history. Shrinking keeps the most
// recent frames.
func (ft *FrameTimeline) SetMaxDisplayFrames(n int) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.cfg.MaxDisplayFrames = n
	ft.history.resize(n)
}

// Reset first finalizes any open DisplayFrame and drains every pending
// frame, resolving it and publishing it to the timestats and trace
// sinks so none is silently discarded (spec §4.5). It then clears the
// history, including the frames just drained, and restores the default
// history size.
func (ft *FrameTimeline) Reset() {
	ft.mu.Lock()
	defer ft.mu.Unlock()

	if ft.current != nil {
		ft.finalizeCurrentLocked(ft.current.wakeTime(), nil)
	}
	ft.pending.drainAll(ft.timeStats, ft.trace, func(frame *DisplayFrame) {
		ft.history.add(frame)
	})

	ft.cfg.MaxDisplayFrames = DefaultMaxDisplayFrames
	ft.history = newFrameHistory(DefaultMaxDisplayFrames)
}

// History returns a snapshot of the bounded history, oldest first.
func (ft *FrameTimeline) History() []*DisplayFrame {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return ft.history.all()
}

// Config returns the facade's current configuration.
func (ft *FrameTimeline) Config() Config {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return ft.cfg
}
