package contracts

type Stage string

const (
	StageExtracting   Stage = "extracting"
	StageTransforming Stage = "transforming"
	StageWriting      Stage = "writing"
	StageRecorded     Stage = "recorded"
)

type BatchState int32

const (
	BatchIdle BatchState = iota
	BatchRunning
	BatchCompleted
)

// Event is emitted by the orchestrator as files move through the pipeline.
// Done counts recorded outcomes only, so it grows monotonically up to Total.
type Event struct {
	Path    string
	Stage   Stage
	Outcome *ConversionOutcome
	Done    int
	Total   int
}
