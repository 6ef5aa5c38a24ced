package pipeline

// Stage is a step of one add operation.
type Stage int

const (
	StagePending Stage = iota
	StageQuerying
	StageParsing
	StageValidating
	StageNormalizing
	StageDone
	StageFailed
)

func (s Stage) String() string {
	switch s {
	case StagePending:
		return "pending"
	case StageQuerying:
		return "querying"
	case StageParsing:
		return "parsing"
	case StageValidating:
		return "validating"
	case StageNormalizing:
		return "normalizing"
	case StageDone:
		return "done"
	case StageFailed:
		return "failed"
	default:
		return "unknown"
	}
}
