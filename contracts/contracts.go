package contracts

import "image"

// ConversionRequest describes one user-initiated batch run. It is built once
// and never mutated while the batch is running.
type ConversionRequest struct {
	BatchID   string
	Files     []string
	Format    string
	IconSize  int
	OutputDir string
}

// FrameRecord is one decoded raster frame of an input file. It is owned by
// the orchestrator while the file is being processed and dropped as soon as
// the corresponding output is written.
type FrameRecord struct {
	Image       image.Image
	Mode        string
	PageIndex   int
	Orientation int
}

// ConversionOutcome is the per-input result. Exactly one is produced for
// every file in the request, whether it succeeded or not.
type ConversionOutcome struct {
	Input   string
	OK      bool
	Outputs []string
	Err     string
}

type BatchSummary struct {
	BatchID    string
	OutputRoot string
	Total      int
	Succeeded  int
	Failed     int
	Outcomes   []ConversionOutcome
}
