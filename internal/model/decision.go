package model

// Action is the kind of change planned or performed for one snippet or
// copied file.
type Action string

const (
	// ActionCreate writes a new file at the snippet's literal relative path.
	ActionCreate Action = "create"
	// ActionUpdate overwrites the best-matching existing file in place.
	ActionUpdate Action = "update"
	// ActionSkip leaves the tree untouched; informational, never an error.
	ActionSkip Action = "skip"
	// ActionCopy mirrors a source file verbatim in copy mode.
	ActionCopy Action = "copy"
)

// Candidate is an existing file whose base name equals a snippet's base
// name, together with its similarity score against the snippet content.
type Candidate struct {
	Path  Path
	Score float64
}

// Decision is the planned outcome for a single snippet. Target is the path
// that will be (or was) written for create/update; for a below-threshold
// skip it is the path force mode would have created, and it stays empty
// when the snippet path was refused outright.
type Decision struct {
	Snippet    Snippet
	Action     Action
	Target     Path
	Score      float64
	Candidates int
}

// CopyOp is a single planned file copy in verbatim copy mode.
type CopyOp struct {
	Source Path
	Target Path
}
