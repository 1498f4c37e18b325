package processor

// Stage identifies a step of a run
type Stage int

const (
	StageReading Stage = iota + 1
	StageDetecting
	StageReconciling
	StageApplying
)

func (s Stage) String() string {
	switch s {
	case StageReading:
		return "Reading"
	case StageDetecting:
		return "Detecting"
	case StageReconciling:
		return "Reconciling"
	case StageApplying:
		return "Applying"
	default:
		return "Unknown"
	}
}

// ProgressCallback receives stage progress as a percentage, 0 to 100
type ProgressCallback func(stage Stage, percent int)
