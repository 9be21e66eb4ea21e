package workspace

import (
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"time"

	"facewriter/internal/config"
	"facewriter/internal/document"
	"facewriter/internal/gateway"
)

// Role of a chat message.
type Role string

const (
	RoleUser   Role = "user"
	RoleModel  Role = "model"
	RoleSystem Role = "system"
)

// ChatMessage is one entry of the append-only conversation log.
type ChatMessage struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

const (
	welcomeMessage    = "Welcome to FaceWriter Assistant! How can I help you today?"
	newProjectMessage = "New project started. How can I help?"
	savedMessage      = "Article saved successfully!"

	// saveStatusTTL is how long the transient save notice stays visible.
	saveStatusTTL = 3 * time.Second

	// imagePromptWordCap bounds the body text summarized into an image prompt.
	imagePromptWordCap = 100
)

var (
	ErrNoSelection = errors.New("workspace: no active selection")
	ErrClosed      = errors.New("workspace: closed")
)

// Workspace is the request orchestrator for one editing session. It owns
// the document, the selection workflow, the chat log, and one request slot
// per tool kind. Different tools run concurrently without interfering; the
// document body is the only shared mutable resource and every mutation
// happens under the workspace lock.
type Workspace struct {
	mu       sync.Mutex
	gw       gateway.Gateway
	settings *config.Store
	notify   EventFunc

	doc *document.Document
	sel document.Selection

	chat       []ChatMessage
	grammar    []gateway.GrammarSuggestion
	seo        []gateway.SeoSuggestion
	trends     string
	translated string

	saveStatus string
	saveSeq    uint64
	saveTTL    time.Duration

	slots  map[ToolKind]*slot
	closed bool
}

// SavedArticle is the snapshot produced by Save.
type SavedArticle struct {
	Title       string               `json:"title"`
	Body        string               `json:"body"`
	Goal        string               `json:"goal"`
	Client      string               `json:"client"`
	Destination document.Destination `json:"destination"`
	SavedAt     time.Time            `json:"savedAt"`
}

type Option func(*Workspace)

// WithNotify registers a state-transition callback (used by the event
// websocket). The callback runs with the workspace lock held.
func WithNotify(fn EventFunc) Option {
	return func(w *Workspace) { w.notify = fn }
}

// WithSaveStatusTTL overrides the save-notice lifetime, for tests.
func WithSaveStatusTTL(d time.Duration) Option {
	return func(w *Workspace) { w.saveTTL = d }
}

func New(gw gateway.Gateway, settings *config.Store, opts ...Option) *Workspace {
	w := &Workspace{
		gw:       gw,
		settings: settings,
		doc:      document.New(),
		sel:      document.Selection{State: document.SelectionIdle},
		chat:     []ChatMessage{{Role: RoleSystem, Text: welcomeMessage}},
		saveTTL:  saveStatusTTL,
		slots:    make(map[ToolKind]*slot, len(ToolKinds)),
	}
	for _, kind := range ToolKinds {
		w.slots[kind] = &slot{status: StatusIdle}
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Settings returns the session's settings store.
func (w *Workspace) Settings() *config.Store {
	return w.settings
}

// SetGateway swaps the AI gateway after a settings change. Dispatches
// already in flight finish against the gateway they started with.
func (w *Workspace) SetGateway(gw gateway.Gateway) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.gw = gw
}

// --- Document field setters ---

func (w *Workspace) SetTitle(title string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.doc.Title = title
}

func (w *Workspace) SetBody(body string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.doc.Body = body
}

func (w *Workspace) SetGoal(goal string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.doc.Goal = goal
}

func (w *Workspace) SetClient(client string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.doc.Client = client
}

func (w *Workspace) SetDestination(dest document.Destination) error {
	if !dest.Valid() {
		return errors.New("workspace: unknown destination")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.doc.Destination = dest
	return nil
}

// AppendToBody inserts assistant output into the editor as a new paragraph.
func (w *Workspace) AppendToBody(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.doc.AppendSection(text)
}

// --- Selection workflow ---

// CaptureSelection snapshots the highlighted range (pointer release).
func (w *Workspace) CaptureSelection(start, end int, anchor document.Anchor) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.sel.Capture(w.doc.Body, start, end, anchor)
}

// DismissSelection discards the active selection (pointer down).
func (w *Workspace) DismissSelection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sel.Dismiss()
}

// resolveSelection clears a pending selection action whose resolution was
// discarded as stale. The selection must return to idle regardless of how
// the dispatch ended, or capture and dismiss stay blocked forever.
func (w *Workspace) resolveSelection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.sel.State == document.SelectionPending {
		w.sel.Resolve()
	}
}

// --- Grammar suggestions ---

// ApplySuggestion folds one grammar suggestion into the body and removes it
// from the list by content equality. Remaining suggestions are untouched;
// grammar check is not re-run. Reports whether the original text was still
// present in the body.
func (w *Workspace) ApplySuggestion(s gateway.GrammarSuggestion) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	replaced := w.doc.ReplaceSubstring(s.Original, s.Suggestion)
	kept := w.grammar[:0]
	for _, g := range w.grammar {
		if g.Original != s.Original {
			kept = append(kept, g)
		}
	}
	w.grammar = kept
	return replaced
}

// --- Translation ---

// ApplyTranslation replaces the body with the pending translation result.
func (w *Workspace) ApplyTranslation() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.translated == "" {
		return false
	}
	w.doc.Body = w.translated
	w.translated = ""
	return true
}

// --- Image upload ---

// UploadImage attaches a locally provided image to the article as a data
// URL, with no AI call. It clears any AI image prompt and description.
func (w *Workspace) UploadImage(data []byte) string {
	mime := http.DetectContentType(data)
	url := "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.doc.ImageURL = url
	w.doc.ImagePrompt = ""
	w.doc.ImageDescription = ""
	return url
}

// --- Save ---

// Save snapshots the article and raises the transient save notice, which
// clears itself after the TTL unless a newer save supersedes it.
func (w *Workspace) Save() SavedArticle {
	w.mu.Lock()
	defer w.mu.Unlock()
	snap := SavedArticle{
		Title:       w.doc.Title,
		Body:        w.doc.Body,
		Goal:        w.doc.Goal,
		Client:      w.doc.Client,
		Destination: w.doc.Destination,
		SavedAt:     time.Now(),
	}
	w.saveStatus = savedMessage
	w.saveSeq++
	seq := w.saveSeq
	time.AfterFunc(w.saveTTL, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if w.saveSeq == seq {
			w.saveStatus = ""
		}
	})
	return snap
}

// --- Lifecycle ---

// NewProject cancels all in-flight work and resets the session to a fresh
// document, a fresh chat log and idle tool slots.
func (w *Workspace) NewProject() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancelAllLocked()
	w.doc.Reset()
	w.sel = document.Selection{State: document.SelectionIdle}
	w.chat = []ChatMessage{{Role: RoleSystem, Text: newProjectMessage}}
	w.grammar = nil
	w.seo = nil
	w.trends = ""
	w.translated = ""
	w.saveStatus = ""
	w.saveSeq++
	for _, kind := range ToolKinds {
		w.slots[kind] = &slot{status: StatusIdle}
	}
}

// Close cancels all in-flight work and rejects further dispatches.
func (w *Workspace) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cancelAllLocked()
	w.closed = true
}

func (w *Workspace) cancelAllLocked() {
	for _, s := range w.slots {
		if s.cancel != nil {
			s.cancel()
			s.cancel = nil
		}
		// Bump seq so late resolutions of cancelled work are discarded.
		s.seq++
	}
}

// --- State snapshot ---

// State is a point-in-time view of the whole session for rendering.
type State struct {
	Document   document.Document           `json:"document"`
	Selection  document.Selection          `json:"selection"`
	Chat       []ChatMessage               `json:"chat"`
	Grammar    []gateway.GrammarSuggestion `json:"grammarSuggestions"`
	Seo        []gateway.SeoSuggestion     `json:"seoSuggestions"`
	Trends     string                      `json:"trends,omitempty"`
	Translated string                      `json:"translatedContent,omitempty"`
	SaveStatus string                      `json:"saveStatus,omitempty"`
	Tools      map[ToolKind]ToolState      `json:"tools"`
}

func (w *Workspace) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := State{
		Document:   *w.doc,
		Selection:  w.sel,
		Chat:       append([]ChatMessage(nil), w.chat...),
		Grammar:    append([]gateway.GrammarSuggestion(nil), w.grammar...),
		Seo:        append([]gateway.SeoSuggestion(nil), w.seo...),
		Trends:     w.trends,
		Translated: w.translated,
		SaveStatus: w.saveStatus,
		Tools:      make(map[ToolKind]ToolState, len(w.slots)),
	}
	for kind, s := range w.slots {
		st.Tools[kind] = ToolState{Status: s.status, Error: s.err}
	}
	return st
}

func (w *Workspace) appendChatLocked(role Role, text string) {
	w.chat = append(w.chat, ChatMessage{Role: role, Text: text})
}
