package session

// State is the orchestrator's position in the measurement lifecycle.
type State int

const (
	// StateIdle means no image is loaded, or the session was just reset.
	StateIdle State = iota
	// StateCalibrating means a seed click triggered reference detection.
	StateCalibrating
	// StateCalibrated means a scale factor is available.
	StateCalibrated
	// StateSegmenting means silhouette segmentation is running.
	StateSegmenting
	// StateMeasured means the capture produced a measurement; the operator
	// may re-click to recalibrate or load a new image.
	StateMeasured
	// StateError means the last stage failed; the next operator action
	// (re-click or new image) re-attempts.
	StateError
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCalibrating:
		return "calibrating"
	case StateCalibrated:
		return "calibrated"
	case StateSegmenting:
		return "segmenting"
	case StateMeasured:
		return "measured"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// ReferenceKind selects which reference object the seed click points at.
type ReferenceKind int

const (
	// RefCoin is a circular reference of known diameter.
	RefCoin ReferenceKind = iota
	// RefSquare is a printed square of known side length.
	RefSquare
)
