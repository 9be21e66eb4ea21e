package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"

	"facewriter/internal/config"
	"facewriter/internal/gateway"
	"facewriter/internal/workspace"

	"github.com/google/uuid"
)

// GatewayFactory builds the AI gateway for a new session from its settings.
// Tests substitute a factory returning a mock.
type GatewayFactory func(ctx context.Context, opts gateway.Options) (gateway.Gateway, error)

// Server exposes per-session editing workspaces over a JSON HTTP API.
type Server struct {
	cfg        *config.Config
	newGateway GatewayFactory
	store      *sessionStore
}

type session struct {
	id  string
	ws  *workspace.Workspace
	hub *eventHub
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*session
}

func newStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*session)}
}

func (s *sessionStore) set(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.id] = sess
}

func (s *sessionStore) get(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *sessionStore) delete(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if ok {
		delete(s.sessions, id)
	}
	return sess, ok
}

func New(cfg *config.Config, newGateway GatewayFactory) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if newGateway == nil {
		newGateway = gateway.New
	}
	return &Server{
		cfg:        cfg,
		newGateway: newGateway,
		store:      newStore(),
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /api/sessions", s.handleSessionCreate)
	mux.HandleFunc("GET /api/sessions/{id}", s.withSession(s.handleState))
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleSessionDelete)
	mux.HandleFunc("POST /api/sessions/{id}/new-project", s.withSession(s.handleNewProject))

	mux.HandleFunc("PUT /api/sessions/{id}/document", s.withSession(s.handleDocumentUpdate))
	mux.HandleFunc("POST /api/sessions/{id}/selection", s.withSession(s.handleSelectionCapture))
	mux.HandleFunc("DELETE /api/sessions/{id}/selection", s.withSession(s.handleSelectionDismiss))
	mux.HandleFunc("POST /api/sessions/{id}/selection/modify", s.withSession(s.handleSelectionModify))

	mux.HandleFunc("POST /api/sessions/{id}/chat", s.withSession(s.handleChat))
	mux.HandleFunc("POST /api/sessions/{id}/chat/insert", s.withSession(s.handleChatInsert))
	mux.HandleFunc("POST /api/sessions/{id}/grammar", s.withSession(s.handleGrammarCheck))
	mux.HandleFunc("POST /api/sessions/{id}/grammar/apply", s.withSession(s.handleGrammarApply))
	mux.HandleFunc("POST /api/sessions/{id}/article", s.withSession(s.handleGenerateArticle))
	mux.HandleFunc("POST /api/sessions/{id}/title", s.withSession(s.handleGenerateTitle))
	mux.HandleFunc("POST /api/sessions/{id}/seo", s.withSession(s.handleAnalyzeSeo))
	mux.HandleFunc("POST /api/sessions/{id}/trends", s.withSession(s.handleTrends))
	mux.HandleFunc("POST /api/sessions/{id}/image", s.withSession(s.handleGenerateImage))
	mux.HandleFunc("POST /api/sessions/{id}/image/description", s.withSession(s.handleImageDescription))
	mux.HandleFunc("POST /api/sessions/{id}/image/upload", s.withSession(s.handleImageUpload))
	mux.HandleFunc("POST /api/sessions/{id}/translate", s.withSession(s.handleTranslate))
	mux.HandleFunc("POST /api/sessions/{id}/translate/apply", s.withSession(s.handleTranslateApply))
	mux.HandleFunc("POST /api/sessions/{id}/save", s.withSession(s.handleSave))

	mux.HandleFunc("GET /api/sessions/{id}/preview", s.withSession(s.handlePreview))
	mux.HandleFunc("GET /api/sessions/{id}/settings", s.withSession(s.handleSettingsGet))
	mux.HandleFunc("PUT /api/sessions/{id}/settings", s.withSession(s.handleSettingsUpdate))
	mux.HandleFunc("GET /api/sessions/{id}/events", s.withSession(s.handleEvents))

	return logMiddleware(corsMiddleware(mux))
}

// withSession resolves the {id} path segment to a live session.
func (s *Server) withSession(h func(http.ResponseWriter, *http.Request, *session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.store.get(r.PathValue("id"))
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		h(w, r, sess)
	}
}

func (s *Server) createSession(ctx context.Context) (*session, error) {
	settings := config.SettingsFromConfig(s.cfg)
	store := config.NewStore(settings)

	gw, err := s.newGateway(ctx, gatewayOptions(settings, s.cfg.AI.BaseURL))
	if err != nil {
		return nil, err
	}

	hub := newHub()
	go hub.run()

	sess := &session{
		id:  uuid.NewString(),
		hub: hub,
	}
	sess.ws = workspace.New(gw, store, workspace.WithNotify(hub.broadcastEvent))
	s.store.set(sess)
	return sess, nil
}

func gatewayOptions(settings config.Settings, baseURL string) gateway.Options {
	opts := gateway.Options{
		Provider:   settings.LLMProvider,
		Model:      settings.Model,
		ImageModel: settings.ImageModel,
		BaseURL:    baseURL,
	}
	switch opts.Provider {
	case "openai":
		opts.APIKey = settings.OpenAIAPIKey
	default:
		opts.APIKey = settings.GeminiAPIKey
	}
	return opts
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
		log.Printf("%s %s", r.Method, r.URL.Path)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
