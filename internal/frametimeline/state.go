package frametimeline

import "strings"

// PredictionState tags where a SurfaceFrame's or DisplayFrame's
// predicted TimelineItem came from.
type PredictionState int

const (
	// PredictionNone means no token was supplied.
	PredictionNone PredictionState = iota
	// PredictionValid means the token resolved against the live
	// registry at creation time.
	PredictionValid
	// PredictionExpired means a token was supplied but the registry
	// held no live prediction for it: it had fallen outside the
	// retention window, or it was never issued.
	PredictionExpired
)

func (s PredictionState) String() string {
	switch s {
	case PredictionValid:
		return "Valid"
	case PredictionExpired:
		return "Expired"
	default:
		return "None"
	}
}

// PresentState is the per-SurfaceFrame disposition of a latched
// buffer.
type PresentState int

const (
	// PresentUnknown is the initial state before setPresentState.
	PresentUnknown PresentState = iota
	// PresentPresented means the buffer was latched and composited.
	PresentPresented
	// PresentDropped means the buffer was latched but superseded.
	PresentDropped
)

func (s PresentState) String() string {
	switch s {
	case PresentPresented:
		return "Presented"
	case PresentDropped:
		return "Dropped"
	default:
		return "Unknown"
	}
}

// StartMetadata classifies an actual start time against its
// prediction.
type StartMetadata int

const (
	StartUnknown StartMetadata = iota
	OnTimeStart
	LateStart
	EarlyStart
)

func (s StartMetadata) String() string {
	switch s {
	case OnTimeStart:
		return "OnTimeStart"
	case LateStart:
		return "LateStart"
	case EarlyStart:
		return "EarlyStart"
	default:
		return "UnknownStart"
	}
}

// ReadyMetadata classifies an actual end (ready) time against its
// deadline.
type ReadyMetadata int

const (
	ReadyUnknown ReadyMetadata = iota
	OnTimeFinish
	LateFinish
)

func (s ReadyMetadata) String() string {
	switch s {
	case OnTimeFinish:
		return "OnTimeFinish"
	case LateFinish:
		return "LateFinish"
	default:
		return "UnknownReady"
	}
}

// PresentMetadata classifies an actual present time against its
// prediction.
type PresentMetadata int

const (
	PresentMetaUnknown PresentMetadata = iota
	OnTimePresent
	LatePresent
	EarlyPresent
)

func (s PresentMetadata) String() string {
	switch s {
	case OnTimePresent:
		return "OnTimePresent"
	case LatePresent:
		return "LatePresent"
	case EarlyPresent:
		return "EarlyPresent"
	default:
		return "UnknownPresent"
	}
}

// JankType is a bitmask over the enumerated jank causes. Multiple bits
// may be set simultaneously.
type JankType uint32

const JankNone JankType = 0

const (
	JankAppDeadlineMissed JankType = 1 << iota
	JankSurfaceFlingerDeadlineMissed
	JankDisplayHAL
	JankAppBufferStuffing
	JankPredictionError
	JankSurfaceFlingerScheduling
	JankUnknown
)

var jankNames = []struct {
	bit  JankType
	name string
}{
	{JankAppDeadlineMissed, "AppDeadlineMissed"},
	{JankSurfaceFlingerDeadlineMissed, "SurfaceFlingerDeadlineMissed"},
	{JankDisplayHAL, "DisplayHAL"},
	{JankAppBufferStuffing, "AppBufferStuffing"},
	{JankPredictionError, "PredictionError"},
	{JankSurfaceFlingerScheduling, "SurfaceFlingerScheduling"},
	{JankUnknown, "Unknown"},
}

// String renders the set bits in a JankType bitmask, e.g.
// "DisplayHAL|PredictionError". A bitmask of JankNone renders "None".
func (j JankType) String() string {
	if j == JankNone {
		return "None"
	}
	var parts []string
	for _, n := range jankNames {
		if j&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "|")
}

// IsJanky reports whether any jank bit beyond JankNone is set.
func (j JankType) IsJanky() bool {
	return j != JankNone
}
