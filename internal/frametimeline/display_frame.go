package frametimeline

import "sync"

// displayLifecycle is the DisplayFrame's tagged lifecycle state (spec
// §4.3 and Design Notes §9: "prefer a tagged variant ... over open sets
// of boolean flags").
type displayLifecycle int

const (
	displayOpen displayLifecycle = iota
	displayAwaitingFence
	displayResolved
)

// DisplayFrame is the per-vsync aggregate: one compositor timeline plus
// the set of SurfaceFrames composited in it. It owns its own jank
// verdict and drives per-surface verdicts at present resolution.
type DisplayFrame struct {
	mu sync.Mutex

	token           int64
	vsyncPeriod     int64
	predictionState PredictionState
	predictions     TimelineItem
	actuals         TimelineItem
	cfg             Config

	lifecycle     displayLifecycle
	surfaceFrames []*SurfaceFrame

	jankType JankType
	present  PresentMetadata
	ready    ReadyMetadata
	start    StartMetadata

	fence Fence
}

// newDisplayFrame opens a new DisplayFrame at setSfWakeUp.
func newDisplayFrame(token int64, wakeTime, vsyncPeriod int64, predictionState PredictionState, predictions TimelineItem, cfg Config) *DisplayFrame {
	capacityHint := cfg.SurfaceFrameCapacityHint
	df := &DisplayFrame{
		token:           token,
		vsyncPeriod:     vsyncPeriod,
		predictionState: predictionState,
		predictions:     predictions,
		cfg:             cfg,
		lifecycle:       displayOpen,
		surfaceFrames:   make([]*SurfaceFrame, 0, capacityHint),
	}
	df.actuals.StartTime = wakeTime
	return df
}

// addSurfaceFrame appends a SurfaceFrame in arrival order. Appending
// after setSfPresent is a protocol violation: logged and dropped (spec
// §7).
func (df *DisplayFrame) addSurfaceFrame(sf *SurfaceFrame) {
	df.mu.Lock()
	defer df.mu.Unlock()
	if df.lifecycle != displayOpen {
		opsf("addSurfaceFrame after setSfPresent, display token=%d surface token=%d", df.token, sf.Token())
		return
	}
	df.surfaceFrames = append(df.surfaceFrames, sf)
}

// setSfPresent finalizes the DisplayFrame: records actuals.EndTime,
// evaluates start/ready metadata against predictions, transitions
// Open -> AwaitingFence, and stores the fence to be drained later.
// Passing a nil fence is treated as pre-signaled (spec invariant 4).
func (df *DisplayFrame) setSfPresent(endTime int64, fence Fence) {
	df.mu.Lock()
	defer df.mu.Unlock()

	if df.lifecycle != displayOpen {
		opsf("setSfPresent called on non-open DisplayFrame token=%d", df.token)
		return
	}
	df.actuals.EndTime = endTime
	if fence == nil {
		fence = NullFence(endTime)
	}
	df.fence = fence

	if df.predictionState == PredictionValid {
		df.start = classifyStart(df.predictions, df.actuals, df.cfg)
		df.ready = classifyReady(df.predictions, df.actuals, df.cfg)
	} else {
		df.start, df.ready = StartUnknown, ReadyUnknown
	}

	df.lifecycle = displayAwaitingFence
}

// isOpen reports whether this DisplayFrame is still accepting surface
// frames (has not yet had setSfPresent called on it).
func (df *DisplayFrame) isOpen() bool {
	df.mu.Lock()
	defer df.mu.Unlock()
	return df.lifecycle == displayOpen
}

// wakeTime returns the wake-up timestamp recorded when this DisplayFrame
// was opened.
func (df *DisplayFrame) wakeTime() int64 {
	df.mu.Lock()
	defer df.mu.Unlock()
	return df.actuals.StartTime
}

// pollFence reports the fence's signal time without mutating state.
func (df *DisplayFrame) pollFence() (int64, bool) {
	df.mu.Lock()
	fence := df.fence
	df.mu.Unlock()
	if fence == nil {
		return 0, false
	}
	return fence.SignalTime()
}

// resolve transitions AwaitingFence -> Resolved: sets the actual
// present time, computes this DisplayFrame's present metadata and jank
// bitmask, then cascades onPresent to every contained SurfaceFrame so
// each can classify with the display's jank as ambient cause.
func (df *DisplayFrame) resolve(signalTime int64, sink TimeStatsSink) {
	df.mu.Lock()
	if df.lifecycle != displayAwaitingFence {
		df.mu.Unlock()
		opsf("resolve called on DisplayFrame not AwaitingFence token=%d", df.token)
		return
	}
	df.actuals.PresentTime = signalTime

	hasPrediction := df.predictionState == PredictionValid
	if hasPrediction {
		df.present = classifyPresent(df.predictions, df.actuals, df.cfg)
		df.jankType = classifyDisplayJank(df.predictions, df.actuals, df.ready, df.present, df.cfg, df.vsyncPeriod)
	} else {
		df.present = PresentMetaUnknown
		df.jankType = JankUnknown
	}

	df.lifecycle = displayResolved
	surfaces := append([]*SurfaceFrame(nil), df.surfaceFrames...)
	vsyncPeriod := df.vsyncPeriod
	jank := df.jankType
	token := df.token
	stats := DisplayFrameStats{
		PredictedPresent: df.predictions.PresentTime,
		ActualPresent:    df.actuals.PresentTime,
		Jank:             df.jankType,
	}
	df.mu.Unlock()

	diagf("display token=%d jank=%s surfaces=%d", token, jank, len(surfaces))
	if sink != nil {
		sink.RecordDisplayFrame(stats)
	}

	for _, sf := range surfaces {
		sf.onPresent(signalTime, jank, vsyncPeriod, sink)
	}
}

// snapshot captures a read-only copy for dump/trace emission.
type displayFrameSnapshot struct {
	Token           int64
	VsyncPeriod     int64
	PredictionState PredictionState
	Predictions     TimelineItem
	Actuals         TimelineItem
	JankType        JankType
	Start           StartMetadata
	Ready           ReadyMetadata
	Present         PresentMetadata
	SurfaceFrames   []surfaceFrameSnapshot
}

func (df *DisplayFrame) snapshot() displayFrameSnapshot {
	df.mu.Lock()
	surfaces := append([]*SurfaceFrame(nil), df.surfaceFrames...)
	snap := displayFrameSnapshot{
		Token:           df.token,
		VsyncPeriod:     df.vsyncPeriod,
		PredictionState: df.predictionState,
		Predictions:     df.predictions,
		Actuals:         df.actuals,
		JankType:        df.jankType,
		Start:           df.start,
		Ready:           df.ready,
		Present:         df.present,
	}
	df.mu.Unlock()

	snap.SurfaceFrames = make([]surfaceFrameSnapshot, len(surfaces))
	for i, sf := range surfaces {
		snap.SurfaceFrames[i] = sf.snapshot()
	}
	return snap
}

// isJanky reports whether this DisplayFrame or any contained
// SurfaceFrame is janky (used by dumpJank).
func (df *DisplayFrame) isJanky() bool {
	df.mu.Lock()
	jank := df.jankType
	surfaces := append([]*SurfaceFrame(nil), df.surfaceFrames...)
	df.mu.Unlock()

	if jank.IsJanky() {
		return true
	}
	for _, sf := range surfaces {
		if sf.snapshot().JankType.IsJanky() {
			return true
		}
	}
	return false
}
