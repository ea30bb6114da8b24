package models

// Strategy names recorded in a RunResult.
const (
	StrategyBrowser     = "browser"
	StrategyDirectFetch = "direct-fetch"
	StrategyNone        = "none"
)

// RunRequest is the run-scoped configuration for one pipeline execution.
// It is immutable for the duration of the run.
type RunRequest struct {
	// Target selects the page, schema and endpoints to extract.
	Target Target

	// OutputDir is where the data file (and any fallback or debug
	// artifacts) are written.
	OutputDir string

	// Limit, when > 0, truncates the final record sequence to the first
	// Limit entries. Applied only after extraction, never during it.
	Limit int
}

// RunResult is the outcome of one pipeline execution.
type RunResult struct {
	// Records is the ordered sequence the winning strategy produced,
	// after limit truncation. Empty when Strategy is StrategyNone.
	Records []Record

	// Strategy names the strategy that produced the records.
	Strategy string

	// ManualFallback is true when fallback artifacts were emitted.
	ManualFallback bool

	// OutputPath is the persisted data file path, empty on fallback.
	OutputPath string
}
