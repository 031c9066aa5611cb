package frametimeline

// This file holds the jank classification algorithm (spec §4.4). Every
// function here is a pure function of its arguments — no clock reads,
// no locks, no mutation — so behavior is bit-identical for identical
// inputs and directly testable in isolation from the state machines
// that call it.

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// classifyStart compares an actual start time to its prediction.
func classifyStart(pred, actual TimelineItem, cfg Config) StartMetadata {
	threshold := cfg.StartThreshold.Nanoseconds()
	diff := actual.StartTime - pred.StartTime
	switch {
	case absInt64(diff) <= threshold:
		return OnTimeStart
	case diff > threshold:
		return LateStart
	default:
		return EarlyStart
	}
}

// classifyReady compares an actual ready (end) time to its deadline.
// Early is treated as on time — the goal is meeting the deadline.
func classifyReady(pred, actual TimelineItem, cfg Config) ReadyMetadata {
	threshold := cfg.DeadlineThreshold.Nanoseconds()
	if actual.EndTime <= pred.EndTime+threshold {
		return OnTimeFinish
	}
	return LateFinish
}

// classifyPresent compares an actual present time to its prediction.
func classifyPresent(pred, actual TimelineItem, cfg Config) PresentMetadata {
	threshold := cfg.PresentThreshold.Nanoseconds()
	diff := actual.PresentTime - pred.PresentTime
	switch {
	case absInt64(diff) <= threshold:
		return OnTimePresent
	case diff > threshold:
		return LatePresent
	default:
		return EarlyPresent
	}
}

// presentSlippedFullPeriod reports whether the present time missed its
// prediction by very nearly one whole vsync period — the signature of
// a prediction error on top of the scheduling misalignment.
func presentSlippedFullPeriod(pred, actual TimelineItem, cfg Config, vsyncPeriodNanos int64) bool {
	if vsyncPeriodNanos <= 0 {
		return false
	}
	diff := absInt64(actual.PresentTime - pred.PresentTime)
	return absInt64(diff-vsyncPeriodNanos) <= cfg.PresentThreshold.Nanoseconds()
}

// presentWithinOnePeriod reports whether the actual present landed
// within one vsync period of its prediction.
func presentWithinOnePeriod(pred, actual TimelineItem, vsyncPeriodNanos int64) bool {
	if vsyncPeriodNanos <= 0 {
		return true
	}
	return absInt64(actual.PresentTime-pred.PresentTime) <= vsyncPeriodNanos
}

// classifyDisplayJank composes a DisplayFrame's jank bitmask from its
// Ready and Present metadata (spec §4.4 step 4).
func classifyDisplayJank(pred, actual TimelineItem, ready ReadyMetadata, present PresentMetadata, cfg Config, vsyncPeriodNanos int64) JankType {
	switch {
	case ready == OnTimeFinish && present == OnTimePresent:
		return JankNone

	case ready == LateFinish && present == LatePresent:
		return JankSurfaceFlingerDeadlineMissed

	case ready == OnTimeFinish && present == LatePresent:
		return JankDisplayHAL

	case present == EarlyPresent:
		jank := JankSurfaceFlingerScheduling
		if presentSlippedFullPeriod(pred, actual, cfg, vsyncPeriodNanos) {
			jank |= JankPredictionError
		}
		return jank

	case ready == LateFinish && present == OnTimePresent:
		if presentWithinOnePeriod(pred, actual, vsyncPeriodNanos) {
			return JankNone
		}
		return JankPredictionError

	default:
		return JankUnknown
	}
}

// surfaceJankInput bundles everything classifySurfaceJank needs so it
// stays a pure function independent of SurfaceFrame's internal layout.
type surfaceJankInput struct {
	hasPrediction bool
	ready         ReadyMetadata
	present       PresentMetadata
	displayJank   JankType
	presentState  PresentState
	predictions   TimelineItem
	lastLatchTime int64
	vsyncPeriod   int64
	cfg           Config
}

// classifySurfaceJank applies spec §4.4's per-SurfaceFrame rules, given
// the ambient jank cause already computed for the owning DisplayFrame.
func classifySurfaceJank(in surfaceJankInput) JankType {
	if !in.hasPrediction {
		return JankUnknown
	}

	if in.displayJank&JankSurfaceFlingerDeadlineMissed != 0 {
		return JankSurfaceFlingerDeadlineMissed
	}

	if in.ready == LateFinish {
		return JankAppDeadlineMissed
	}

	if in.presentState == PresentPresented && in.lastLatchTime != 0 && in.vsyncPeriod > 0 {
		windowStart := in.predictions.PresentTime - in.vsyncPeriod
		windowEnd := in.predictions.PresentTime
		if in.lastLatchTime >= windowStart && in.lastLatchTime <= windowEnd {
			return JankAppBufferStuffing
		}
	}

	if in.displayJank&JankDisplayHAL != 0 {
		return JankDisplayHAL
	}

	return JankNone
}
