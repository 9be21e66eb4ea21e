package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"facewriter/internal/config"
	"facewriter/internal/document"
	"facewriter/internal/gateway"
	"facewriter/internal/workspace"
)

// uploadLimit caps accepted image uploads at 8 MiB.
const uploadLimit = 8 << 20

type sessionResp struct {
	SessionID string          `json:"session_id"`
	State     workspace.State `json:"state"`
}

func (s *Server) handleSessionCreate(w http.ResponseWriter, r *http.Request) {
	sess, err := s.createSession(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, http.StatusCreated, sessionResp{SessionID: sess.id, State: sess.ws.State()})
}

func (s *Server) handleSessionDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.store.delete(r.PathValue("id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	sess.ws.Close()
	sess.hub.stop()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request, sess *session) {
	writeJSON(w, http.StatusOK, sess.ws.State())
}

func (s *Server) handleNewProject(w http.ResponseWriter, r *http.Request, sess *session) {
	sess.ws.NewProject()
	writeJSON(w, http.StatusOK, sess.ws.State())
}

type documentUpdateReq struct {
	Title       *string `json:"title"`
	Body        *string `json:"body"`
	Goal        *string `json:"goal"`
	Client      *string `json:"client"`
	Destination *string `json:"destination"`
}

func (s *Server) handleDocumentUpdate(w http.ResponseWriter, r *http.Request, sess *session) {
	var req documentUpdateReq
	if !readJSON(w, r, &req) {
		return
	}
	if req.Title != nil {
		sess.ws.SetTitle(*req.Title)
	}
	if req.Body != nil {
		sess.ws.SetBody(*req.Body)
	}
	if req.Goal != nil {
		sess.ws.SetGoal(*req.Goal)
	}
	if req.Client != nil {
		sess.ws.SetClient(*req.Client)
	}
	if req.Destination != nil {
		if err := sess.ws.SetDestination(document.Destination(*req.Destination)); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	writeJSON(w, http.StatusOK, sess.ws.State())
}

type selectionReq struct {
	Start  int             `json:"start"`
	End    int             `json:"end"`
	Anchor document.Anchor `json:"anchor"`
}

func (s *Server) handleSelectionCapture(w http.ResponseWriter, r *http.Request, sess *session) {
	var req selectionReq
	if !readJSON(w, r, &req) {
		return
	}
	captured := sess.ws.CaptureSelection(req.Start, req.End, req.Anchor)
	writeJSON(w, http.StatusOK, map[string]any{"captured": captured, "state": sess.ws.State()})
}

func (s *Server) handleSelectionDismiss(w http.ResponseWriter, r *http.Request, sess *session) {
	sess.ws.DismissSelection()
	writeJSON(w, http.StatusOK, sess.ws.State())
}

type modifyReq struct {
	Action string `json:"action"` // expand, shorten, rewrite or summarize
}

func (s *Server) handleSelectionModify(w http.ResponseWriter, r *http.Request, sess *session) {
	var req modifyReq
	if !readJSON(w, r, &req) {
		return
	}
	var err error
	if req.Action == "summarize" {
		err = sess.ws.SummarizeSelection(r.Context())
	} else {
		action := gateway.ModificationAction(req.Action)
		if !action.Valid() {
			http.Error(w, "unknown action", http.StatusBadRequest)
			return
		}
		err = sess.ws.ModifySelection(r.Context(), action)
	}
	if errors.Is(err, workspace.ErrNoSelection) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	writeJSON(w, http.StatusOK, sess.ws.State())
}

type chatReq struct {
	Prompt string `json:"prompt"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request, sess *session) {
	var req chatReq
	if !readJSON(w, r, &req) {
		return
	}
	sess.ws.SendMessage(r.Context(), req.Prompt)
	writeJSON(w, http.StatusOK, sess.ws.State())
}

type insertReq struct {
	Text string `json:"text"`
}

func (s *Server) handleChatInsert(w http.ResponseWriter, r *http.Request, sess *session) {
	var req insertReq
	if !readJSON(w, r, &req) {
		return
	}
	sess.ws.AppendToBody(req.Text)
	writeJSON(w, http.StatusOK, sess.ws.State())
}

func (s *Server) handleGrammarCheck(w http.ResponseWriter, r *http.Request, sess *session) {
	sess.ws.CheckGrammar(r.Context())
	writeJSON(w, http.StatusOK, sess.ws.State())
}

func (s *Server) handleGrammarApply(w http.ResponseWriter, r *http.Request, sess *session) {
	var req gateway.GrammarSuggestion
	if !readJSON(w, r, &req) {
		return
	}
	replaced := sess.ws.ApplySuggestion(req)
	writeJSON(w, http.StatusOK, map[string]any{"replaced": replaced, "state": sess.ws.State()})
}

func (s *Server) handleGenerateArticle(w http.ResponseWriter, r *http.Request, sess *session) {
	var params gateway.ArticleParams
	if !readJSON(w, r, &params) {
		return
	}
	sess.ws.GenerateArticle(r.Context(), params)
	writeJSON(w, http.StatusOK, sess.ws.State())
}

func (s *Server) handleGenerateTitle(w http.ResponseWriter, r *http.Request, sess *session) {
	sess.ws.GenerateSeoTitle(r.Context())
	writeJSON(w, http.StatusOK, sess.ws.State())
}

func (s *Server) handleAnalyzeSeo(w http.ResponseWriter, r *http.Request, sess *session) {
	sess.ws.AnalyzeSeo(r.Context())
	writeJSON(w, http.StatusOK, sess.ws.State())
}

type trendsReq struct {
	Topic string `json:"topic"`
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request, sess *session) {
	var req trendsReq
	if !readJSON(w, r, &req) {
		return
	}
	sess.ws.FetchTrends(r.Context(), req.Topic)
	writeJSON(w, http.StatusOK, sess.ws.State())
}

func (s *Server) handleGenerateImage(w http.ResponseWriter, r *http.Request, sess *session) {
	sess.ws.GenerateImage(r.Context())
	writeJSON(w, http.StatusOK, sess.ws.State())
}

func (s *Server) handleImageDescription(w http.ResponseWriter, r *http.Request, sess *session) {
	sess.ws.GenerateImageDescription(r.Context())
	writeJSON(w, http.StatusOK, sess.ws.State())
}

func (s *Server) handleImageUpload(w http.ResponseWriter, r *http.Request, sess *session) {
	data, err := io.ReadAll(io.LimitReader(r.Body, uploadLimit+1))
	if err != nil {
		http.Error(w, "failed to read upload", http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		http.Error(w, "empty upload", http.StatusBadRequest)
		return
	}
	if len(data) > uploadLimit {
		http.Error(w, "upload too large", http.StatusRequestEntityTooLarge)
		return
	}
	url := sess.ws.UploadImage(data)
	writeJSON(w, http.StatusOK, map[string]any{"imageUrl": url})
}

type translateReq struct {
	Language string `json:"language"`
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request, sess *session) {
	var req translateReq
	if !readJSON(w, r, &req) {
		return
	}
	if req.Language == "" {
		http.Error(w, "language required", http.StatusBadRequest)
		return
	}
	sess.ws.Translate(r.Context(), req.Language)
	writeJSON(w, http.StatusOK, sess.ws.State())
}

func (s *Server) handleTranslateApply(w http.ResponseWriter, r *http.Request, sess *session) {
	applied := sess.ws.ApplyTranslation()
	writeJSON(w, http.StatusOK, map[string]any{"applied": applied, "state": sess.ws.State()})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request, sess *session) {
	snap := sess.ws.Save()
	writeJSON(w, http.StatusOK, map[string]any{"saved": snap, "state": sess.ws.State()})
}

func (s *Server) handleSettingsGet(w http.ResponseWriter, r *http.Request, sess *session) {
	settings, version := sess.ws.Settings().Get()
	writeJSON(w, http.StatusOK, map[string]any{"settings": settings, "version": version})
}

func (s *Server) handleSettingsUpdate(w http.ResponseWriter, r *http.Request, sess *session) {
	var req map[string]json.RawMessage
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	updated, version := sess.ws.Settings().Update(func(cur config.Settings) config.Settings {
		merged := cur
		_ = json.Unmarshal(body, &merged)
		return merged
	})

	// A provider or key change takes effect by swapping the gateway; in-flight
	// calls finish against the old one.
	gw, err := s.newGateway(r.Context(), gatewayOptions(updated, s.cfg.AI.BaseURL))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	sess.ws.SetGateway(gw)
	writeJSON(w, http.StatusOK, map[string]any{"settings": updated, "version": version})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return false
	}
	return true
}
