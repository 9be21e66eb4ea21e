package document

// SelectionState tracks the selection/modification workflow.
type SelectionState string

const (
	SelectionIdle    SelectionState = "idle"
	SelectionActive  SelectionState = "active"
	SelectionPending SelectionState = "pending"
)

// Anchor is the screen position of the pointer release, used to place the
// contextual toolbar.
type Anchor struct {
	Top  int `json:"top"`
	Left int `json:"left"`
}

// Selection is a snapshot of the text highlighted in the body at the moment
// it was captured. Text equals Body[StartOffset:EndOffset] at capture time;
// that equality is not re-verified later, so the snapshot can go stale if
// the body changes underneath it. Replacement is by text content, which is
// why stale offsets are tolerable.
type Selection struct {
	State       SelectionState `json:"state"`
	Text        string         `json:"text,omitempty"`
	StartOffset int            `json:"startOffset,omitempty"`
	EndOffset   int            `json:"endOffset,omitempty"`
	Anchor      Anchor         `json:"anchor,omitempty"`
}

// Capture moves Idle -> Active for a non-empty range inside the body. The
// range must describe the current body; captures that do not match are
// rejected so the snapshot invariant holds at least at capture time.
// An empty or reversed range clears any existing selection instead.
func (s *Selection) Capture(body string, start, end int, anchor Anchor) bool {
	if s.State == SelectionPending {
		return false
	}
	if start < 0 || end > len(body) || start >= end {
		s.Dismiss()
		return false
	}
	text := body[start:end]
	if isBlank(text) {
		s.Dismiss()
		return false
	}
	*s = Selection{
		State:       SelectionActive,
		Text:        text,
		StartOffset: start,
		EndOffset:   end,
		Anchor:      anchor,
	}
	return true
}

// Dismiss discards the selection (pointer-down anywhere in the body).
// A pending action is not interrupted; its resolution clears the state.
func (s *Selection) Dismiss() {
	if s.State == SelectionPending {
		return
	}
	*s = Selection{State: SelectionIdle}
}

// BeginAction moves Active -> Pending and returns the captured text. It
// fails when there is no active selection or another action is in flight.
func (s *Selection) BeginAction() (string, bool) {
	if s.State != SelectionActive {
		return "", false
	}
	s.State = SelectionPending
	return s.Text, true
}

// Resolve returns to Idle once the action's response lands, regardless of
// success or failure.
func (s *Selection) Resolve() {
	*s = Selection{State: SelectionIdle}
}

func isBlank(text string) bool {
	for _, r := range text {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
