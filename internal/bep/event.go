package bep

// Event represents a single record of a build-event stream (one JSON object
// per line). The recognized keys are mutually non-exclusive per record, but
// in practice at most one payload is populated per line. Unrecognized keys
// are ignored.
type Event struct {
	// ID carries event identity, notably the label of a completed target.
	ID *EventID `json:"id,omitempty"`

	// Configured signals that a target entered the build.
	Configured *TargetConfigured `json:"configured,omitempty"`

	// Completed signals that a target finished, with a success flag.
	Completed *TargetCompleted `json:"completed,omitempty"`

	// Action describes a single execution step.
	Action *ActionExecuted `json:"action,omitempty"`

	// Finished carries build-level start/end timestamps.
	Finished *BuildFinished `json:"finished,omitempty"`

	// Aborted signals a build-level failure.
	Aborted *Aborted `json:"aborted,omitempty"`
}

// EventID identifies the subject of an event
type EventID struct {
	TargetCompleted *TargetCompletedID `json:"targetCompleted,omitempty"`
}

// TargetCompletedID carries the label of the target an event refers to
type TargetCompletedID struct {
	Label string `json:"label,omitempty"`
}

// TargetConfigured is emitted when a target enters the build
type TargetConfigured struct {
	TargetKind string `json:"targetKind,omitempty"`
}

// TargetCompleted is emitted when a target finishes building
type TargetCompleted struct {
	Success bool `json:"success,omitempty"`
}

// ActionExecuted describes one execution step of the build
type ActionExecuted struct {
	// Type is the action mnemonic, e.g. "Javac" or "CACHE_HIT".
	Type string `json:"type,omitempty"`

	// Label is the owning target, when reported.
	Label string `json:"label,omitempty"`

	// PrimaryOutput points at the action's main output artifact.
	PrimaryOutput *ActionOutput `json:"primaryOutput,omitempty"`

	// Metrics carries per-action execution measurements.
	Metrics *ActionMetrics `json:"actionMetrics,omitempty"`
}

// ActionOutput locates an action output artifact
type ActionOutput struct {
	URI string `json:"uri,omitempty"`
}

// ActionMetrics carries per-action execution measurements
type ActionMetrics struct {
	ExecutionTimeMs int64 `json:"executionTimeInMs,omitempty"`
}

// BuildFinished carries build-level timestamps. Pointers distinguish absent
// fields from zero values: partial streams from cancelled builds routinely
// omit one or both.
type BuildFinished struct {
	StartTimeMillis  *int64 `json:"startTimeMillis,omitempty"`
	FinishTimeMillis *int64 `json:"finishTimeMillis,omitempty"`
}

// Aborted signals an aborted build or target
type Aborted struct {
	Reason      string `json:"reason,omitempty"`
	Description string `json:"description,omitempty"`
}
