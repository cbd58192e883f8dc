package model

import "time"

// RunMode identifies which command produced a run report.
type RunMode string

const (
	// ModePrompt marks a report produced by applying prompt output.
	ModePrompt RunMode = "prompt"
	// ModeCopy marks a report produced by a verbatim copy run.
	ModeCopy RunMode = "copy"
)

// Outcome is one report row: what happened for a single snippet or copied
// file. Target is empty for skips; Hash is the SHA-256 of the written file
// and stays empty on dry runs.
type Outcome struct {
	Path   string  `yaml:"path"`
	Action Action  `yaml:"action"`
	Target string  `yaml:"target,omitempty"`
	Score  float64 `yaml:"score,omitempty"`
	Hash   string  `yaml:"hash,omitempty"`
}

// RunReport records every decision of one apply run.
type RunReport struct {
	ID        string        `yaml:"id"`
	Mode      RunMode       `yaml:"mode"`
	Target    string        `yaml:"target"`
	Threshold float64       `yaml:"threshold,omitempty"`
	Force     bool          `yaml:"force,omitempty"`
	DryRun    bool          `yaml:"dry_run,omitempty"`
	StartedAt time.Time     `yaml:"started_at"`
	Duration  time.Duration `yaml:"duration"`
	Outcomes  []Outcome     `yaml:"outcomes"`
}

// Tally holds per-action outcome counts for a run.
type Tally struct {
	Created int
	Updated int
	Skipped int
	Copied  int
}

// Tally aggregates the report's outcomes by action kind.
func (r RunReport) Tally() Tally {
	var t Tally

	for _, outcome := range r.Outcomes {
		switch outcome.Action {
		case ActionCreate:
			t.Created++
		case ActionUpdate:
			t.Updated++
		case ActionSkip:
			t.Skipped++
		case ActionCopy:
			t.Copied++
		}
	}

	return t
}
