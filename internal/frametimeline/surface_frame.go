package frametimeline

import "sync"

// SurfaceFrame is a per-layer, per-buffer record tracking predicted vs.
// actual timestamps, present disposition, and the per-frame jank
// verdict. Construction is the privilege of the facade; ingest setters
// are guarded by a mutex so trace/test readers can observe state
// concurrently with the compositor thread. After onPresent runs, the
// SurfaceFrame is read-only.
type SurfaceFrame struct {
	mu sync.Mutex

	token           int64
	ownerPid        int32
	ownerUid        int32
	layerName       string
	debugName       string
	predictionState PredictionState
	predictions     TimelineItem
	cfg             Config

	actuals         TimelineItem
	actualQueueTime int64
	presentState    PresentState
	lastLatchTime   int64

	jankType JankType
	start    StartMetadata
	ready    ReadyMetadata
	present  PresentMetadata

	resolved bool
}

// newSurfaceFrame constructs a SurfaceFrame. Unexported: only the
// facade may mint one (spec §4.2).
func newSurfaceFrame(token int64, ownerPid, ownerUid int32, layerName, debugName string, predictionState PredictionState, predictions TimelineItem, cfg Config) *SurfaceFrame {
	return &SurfaceFrame{
		token:           token,
		ownerPid:        ownerPid,
		ownerUid:        ownerUid,
		layerName:       layerName,
		debugName:       debugName,
		predictionState: predictionState,
		predictions:     predictions,
		cfg:             cfg,
	}
}

// Token returns the surface frame's prediction token, or InvalidToken.
func (sf *SurfaceFrame) Token() int64 {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return sf.token
}

// LayerName returns the layer name used for stats grouping.
func (sf *SurfaceFrame) LayerName() string {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return sf.layerName
}

// SetActualStartTime records when the app began producing this frame.
func (sf *SurfaceFrame) SetActualStartTime(t int64) {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	if sf.resolved {
		opsf("SetActualStartTime on resolved SurfaceFrame token=%d", sf.token)
		return
	}
	sf.actuals.StartTime = t
}

// SetActualQueueTime records when the compositor received the buffer.
func (sf *SurfaceFrame) SetActualQueueTime(t int64) {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	if sf.resolved {
		opsf("SetActualQueueTime on resolved SurfaceFrame token=%d", sf.token)
		return
	}
	sf.actualQueueTime = t
}

// SetAcquireFenceTime records when the buffer became visually usable,
// filling the actuals' EndTime (the "ready" timestamp).
func (sf *SurfaceFrame) SetAcquireFenceTime(t int64) {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	if sf.resolved {
		opsf("SetAcquireFenceTime on resolved SurfaceFrame token=%d", sf.token)
		return
	}
	sf.actuals.EndTime = t
}

// SetPresentState transitions Unknown -> Presented or Unknown ->
// Dropped. Re-entry with the same state is idempotent; a contradictory
// transition is logged and ignored, since the ingress protocol never
// reaches it legitimately.
func (sf *SurfaceFrame) SetPresentState(state PresentState, lastLatchTime int64) {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	if sf.resolved {
		opsf("SetPresentState on resolved SurfaceFrame token=%d", sf.token)
		return
	}
	if sf.presentState == state {
		if state == PresentPresented {
			sf.lastLatchTime = lastLatchTime
		}
		return
	}
	if sf.presentState != PresentUnknown {
		opsf("contradictory SetPresentState token=%d from=%s to=%s", sf.token, sf.presentState, state)
		return
	}
	sf.presentState = state
	if state == PresentPresented {
		sf.lastLatchTime = lastLatchTime
	}
}

// onPresent is invoked by the owning DisplayFrame once its present
// fence has signaled. It sets the present actual, classifies this
// surface frame's metadata and jank, and pushes a record to sink. After
// this call the SurfaceFrame is read-only.
func (sf *SurfaceFrame) onPresent(presentTime int64, displayJank JankType, vsyncPeriod int64, sink TimeStatsSink) {
	sf.mu.Lock()

	if sf.resolved {
		sf.mu.Unlock()
		opsf("onPresent called twice token=%d", sf.token)
		return
	}
	// A contained SurfaceFrame only takes on the DisplayFrame's present
	// time when it was actually presented; a dropped buffer keeps
	// actuals.PresentTime at its zero sentinel (spec invariant 6).
	if sf.presentState == PresentPresented {
		sf.actuals.PresentTime = presentTime
	}

	hasPrediction := sf.predictionState == PredictionValid
	if hasPrediction {
		sf.start = classifyStart(sf.predictions, sf.actuals, sf.cfg)
		sf.ready = classifyReady(sf.predictions, sf.actuals, sf.cfg)
	} else {
		sf.start, sf.ready = StartUnknown, ReadyUnknown
	}
	if hasPrediction && sf.presentState == PresentPresented {
		sf.present = classifyPresent(sf.predictions, sf.actuals, sf.cfg)
	} else {
		sf.present = PresentMetaUnknown
	}

	sf.jankType = classifySurfaceJank(surfaceJankInput{
		hasPrediction: hasPrediction,
		ready:         sf.ready,
		present:       sf.present,
		displayJank:   displayJank,
		presentState:  sf.presentState,
		predictions:   sf.predictions,
		lastLatchTime: sf.lastLatchTime,
		vsyncPeriod:   vsyncPeriod,
		cfg:           sf.cfg,
	})

	sf.resolved = true
	stats := SurfaceFrameStats{
		OwnerUid:         sf.ownerUid,
		OwnerPid:         sf.ownerPid,
		LayerName:        sf.layerName,
		PredictedPresent: sf.predictions.PresentTime,
		ActualPresent:    sf.actuals.PresentTime,
		Jank:             sf.jankType,
	}
	sf.mu.Unlock()

	diagf("surface token=%d layer=%q jank=%s", sf.token, stats.LayerName, stats.Jank)
	if sink != nil {
		sink.RecordSurfaceFrame(stats)
	}
}

// snapshot captures a read-only copy of the SurfaceFrame's state for
// dump/trace emission.
type surfaceFrameSnapshot struct {
	Token           int64
	OwnerPid        int32
	OwnerUid        int32
	LayerName       string
	DebugName       string
	PredictionState PredictionState
	Predictions     TimelineItem
	Actuals         TimelineItem
	ActualQueueTime int64
	PresentState    PresentState
	JankType        JankType
	Start           StartMetadata
	Ready           ReadyMetadata
	Present         PresentMetadata
}

func (sf *SurfaceFrame) snapshot() surfaceFrameSnapshot {
	sf.mu.Lock()
	defer sf.mu.Unlock()
	return surfaceFrameSnapshot{
		Token:           sf.token,
		OwnerPid:        sf.ownerPid,
		OwnerUid:        sf.ownerUid,
		LayerName:       sf.layerName,
		DebugName:       sf.debugName,
		PredictionState: sf.predictionState,
		Predictions:     sf.predictions,
		Actuals:         sf.actuals,
		ActualQueueTime: sf.actualQueueTime,
		PresentState:    sf.presentState,
		JankType:        sf.jankType,
		Start:           sf.start,
		Ready:           sf.ready,
		Present:         sf.present,
	}
}
