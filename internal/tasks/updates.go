package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ImportLines Phase = iota
	LoadEffects
	SubmitRender
)

func (p Phase) String() string {
	switch p {
	case ImportLines:
		return "import_lines"
	case LoadEffects:
		return "load_effects"
	case SubmitRender:
		return "submit_render"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func importStartedUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportLines,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Resolving %d lines...", total),
	}
}

func lineResolvedUpdate(step, total int, o *LineOutcome) ProgressUpdate {
	mark := "✓"
	label := o.Found
	if o.Song == nil {
		mark = "✗"
		label = o.Line
	}
	return ProgressUpdate{
		Phase:   ImportLines,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s", step, total, mark, label),
		Data:    o,
	}
}

func loadingEffectsUpdate(effectID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadEffects,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Looking up effect %s...", effectID),
	}
}

func submittingRenderUpdate(items int, language string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SubmitRender,
		Step:    0,
		Total:   1,
		Message: fmt.Sprintf("Submitting %d items (%s) to the audio worker...", items, language),
	}
}

func renderSubmittedUpdate(jobID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SubmitRender,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Render finished: job %s", jobID),
		Data:    jobID,
	}
}
