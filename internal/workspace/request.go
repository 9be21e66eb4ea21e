package workspace

import "context"

// ToolKind identifies one of the AI-backed operations.
type ToolKind string

const (
	ToolGrammar          ToolKind = "grammar"
	ToolArticle          ToolKind = "article"
	ToolSeo              ToolKind = "seo"
	ToolImage            ToolKind = "image"
	ToolImageDescription ToolKind = "image_description"
	ToolTranslation      ToolKind = "translation"
	ToolTrends           ToolKind = "trends"
	ToolChat             ToolKind = "chat"
	ToolModification     ToolKind = "modification"
	ToolTitle            ToolKind = "title"
)

// ToolKinds lists every tool kind with an orchestrated request slot.
var ToolKinds = []ToolKind{
	ToolGrammar, ToolArticle, ToolSeo, ToolImage, ToolImageDescription,
	ToolTranslation, ToolTrends, ToolChat, ToolModification, ToolTitle,
}

// ToolStatus is the tagged request state, replacing per-tool boolean
// loading flags so impossible combinations cannot be represented.
type ToolStatus string

const (
	StatusIdle      ToolStatus = "idle"
	StatusPending   ToolStatus = "pending"
	StatusSucceeded ToolStatus = "succeeded"
	StatusFailed    ToolStatus = "failed"
)

// ToolState is the externally visible request state of one tool kind.
type ToolState struct {
	Status ToolStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// Event is emitted on every tool state transition.
type Event struct {
	Kind   ToolKind   `json:"kind"`
	Status ToolStatus `json:"status"`
	Error  string     `json:"error,omitempty"`
}

// EventFunc receives state-transition events. It must not call back into
// the workspace; it runs with the workspace lock held.
type EventFunc func(Event)

// slot is the request lifecycle state of one tool kind. seq is a monotonic
// dispatch counter: a resolution carrying a stale seq lost the race to a
// newer dispatch and is discarded instead of overwriting its state.
type slot struct {
	status ToolStatus
	err    string
	seq    uint64
	cancel context.CancelFunc
}

// begin marks the slot Pending and hands out a cancellable context plus the
// dispatch sequence number. Must be called with the workspace lock held.
func (w *Workspace) begin(ctx context.Context, kind ToolKind) (context.Context, uint64) {
	s := w.slots[kind]
	if s.cancel != nil {
		// Overlapping dispatch of the same kind: the UI disables the
		// triggering control while Pending, but nothing here blocks a second
		// caller. The older call is cancelled and its resolution discarded.
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.seq++
	s.status = StatusPending
	s.err = ""
	s.cancel = cancel
	w.emit(Event{Kind: kind, Status: StatusPending})
	return ctx, s.seq
}

// finish resolves a dispatch. apply runs with the lock held, and only when
// the sequence number is still current; a stale resolution is a no-op and
// finish reports false.
func (w *Workspace) finish(kind ToolKind, seq uint64, err error, apply func()) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.slots[kind]
	if s.seq != seq {
		return false
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if err != nil {
		s.status = StatusFailed
		s.err = err.Error()
	} else {
		s.status = StatusSucceeded
		s.err = ""
	}
	if apply != nil {
		apply()
	}
	w.emit(Event{Kind: kind, Status: s.status, Error: s.err})
	return true
}

// applyIfCurrent runs fn under the lock when seq is still the live dispatch
// of kind. Used for intermediate results of multi-stage dispatches.
func (w *Workspace) applyIfCurrent(kind ToolKind, seq uint64, fn func()) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.slots[kind].seq != seq {
		return false
	}
	fn()
	return true
}

func (w *Workspace) emit(ev Event) {
	if w.notify != nil {
		w.notify(ev)
	}
}
