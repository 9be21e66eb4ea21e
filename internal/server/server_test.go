package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"facewriter/internal/config"
	"facewriter/internal/gateway"
	"facewriter/internal/workspace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	grammarFn func(ctx context.Context, text string) ([]gateway.GrammarSuggestion, error)
	modifyFn  func(ctx context.Context, text string, action gateway.ModificationAction) (string, error)
}

func (g *stubGateway) RunPrompt(ctx context.Context, prompt string) (string, error) {
	return "stub reply", nil
}

func (g *stubGateway) CheckGrammar(ctx context.Context, text string) ([]gateway.GrammarSuggestion, error) {
	if g.grammarFn != nil {
		return g.grammarFn(ctx, text)
	}
	return []gateway.GrammarSuggestion{}, nil
}

func (g *stubGateway) ModifyText(ctx context.Context, text string, action gateway.ModificationAction) (string, error) {
	if g.modifyFn != nil {
		return g.modifyFn(ctx, text, action)
	}
	return "modified", nil
}

func (g *stubGateway) GenerateArticle(ctx context.Context, params gateway.ArticleParams) (gateway.GeneratedArticle, error) {
	return gateway.GeneratedArticle{Title: "Stub Title", Content: "Stub content."}, nil
}

func (g *stubGateway) GenerateSeoTitle(ctx context.Context, goal, content string) (string, error) {
	return "Stub SEO Title", nil
}

func (g *stubGateway) AnalyzeSeo(ctx context.Context, input gateway.SeoInput) ([]gateway.SeoSuggestion, error) {
	return []gateway.SeoSuggestion{}, nil
}

func (g *stubGateway) TranslateText(ctx context.Context, text, language string) (string, error) {
	return "translated", nil
}

func (g *stubGateway) SummarizeForImagePrompt(ctx context.Context, text string) (string, error) {
	return "an image prompt", nil
}

func (g *stubGateway) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	return []byte{0xFF, 0xD8, 0xFF}, nil
}

func (g *stubGateway) GenerateImageDescription(ctx context.Context, prompt string) (string, error) {
	return "keywords", nil
}

func (g *stubGateway) FetchTrends(ctx context.Context, topic string) (string, error) {
	return "trend summary", nil
}

type factoryRecorder struct {
	mu    sync.Mutex
	gw    *stubGateway
	calls []gateway.Options
}

func (f *factoryRecorder) factory(_ context.Context, opts gateway.Options) (gateway.Gateway, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, opts)
	return f.gw, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *factoryRecorder) {
	t.Helper()
	cfg := &config.Config{}
	cfg.AI.Provider = "gemini"
	cfg.AI.Model = "gemini-2.5-flash"
	cfg.AI.APIKey = "test-key"

	rec := &factoryRecorder{gw: &stubGateway{}}
	srv, err := New(cfg, rec.factory)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)
	return ts, rec
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

func createSession(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/sessions", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created struct {
		SessionID string          `json:"session_id"`
		State     workspace.State `json:"state"`
	}
	decodeBody(t, resp, &created)
	require.NotEmpty(t, created.SessionID)
	return created.SessionID
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSessionLifecycle(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st workspace.State
	decodeBody(t, resp, &st)
	assert.Equal(t, "My First SEO Article", st.Document.Title)
	require.Len(t, st.Chat, 1)

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/sessions/"+id, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/sessions/"+id, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUnknownSession(t *testing.T) {
	ts, _ := newTestServer(t)
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/sessions/nope/grammar", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDocumentUpdate(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	t.Run("partial update preserves other fields", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, ts.URL+"/api/sessions/"+id+"/document",
			map[string]string{"body": "fresh body"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var st workspace.State
		decodeBody(t, resp, &st)
		assert.Equal(t, "fresh body", st.Document.Body)
		assert.Equal(t, "My First SEO Article", st.Document.Title)
	})

	t.Run("rejects unknown destination", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, ts.URL+"/api/sessions/"+id+"/document",
			map[string]string{"destination": "Carrier Pigeon"})
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("accepts a known destination", func(t *testing.T) {
		resp := doJSON(t, http.MethodPut, ts.URL+"/api/sessions/"+id+"/document",
			map[string]string{"destination": "Youtube Script"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var st workspace.State
		decodeBody(t, resp, &st)
		assert.Equal(t, "Youtube Script", string(st.Document.Destination))
	})
}

func TestGrammarFlow(t *testing.T) {
	ts, rec := newTestServer(t)
	rec.gw.grammarFn = func(context.Context, string) ([]gateway.GrammarSuggestion, error) {
		return []gateway.GrammarSuggestion{
			{Original: "on mat", Suggestion: "on the mat", Explanation: "missing article"},
		}, nil
	}
	id := createSession(t, ts)

	resp := doJSON(t, http.MethodPut, ts.URL+"/api/sessions/"+id+"/document",
		map[string]string{"body": "The cat sat on mat."})
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/grammar", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st workspace.State
	decodeBody(t, resp, &st)
	require.Len(t, st.Grammar, 1)
	assert.Equal(t, "succeeded", string(st.Tools[workspace.ToolGrammar].Status))

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/grammar/apply", st.Grammar[0])
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var applied struct {
		Replaced bool            `json:"replaced"`
		State    workspace.State `json:"state"`
	}
	decodeBody(t, resp, &applied)
	assert.True(t, applied.Replaced)
	assert.Equal(t, "The cat sat on the mat.", applied.State.Document.Body)
	assert.Empty(t, applied.State.Grammar)
}

func TestSelectionModify(t *testing.T) {
	ts, rec := newTestServer(t)
	rec.gw.modifyFn = func(_ context.Context, text string, action gateway.ModificationAction) (string, error) {
		return "swift", nil
	}
	id := createSession(t, ts)

	resp := doJSON(t, http.MethodPut, ts.URL+"/api/sessions/"+id+"/document",
		map[string]string{"body": "The quick brown fox"})
	resp.Body.Close()

	t.Run("modify without selection conflicts", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/selection/modify",
			map[string]string{"action": "rewrite"})
		resp.Body.Close()
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})

	t.Run("rejects unknown action", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/selection/modify",
			map[string]string{"action": "uppercase"})
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("capture then rewrite", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/selection",
			map[string]int{"start": 4, "end": 9})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var captured struct {
			Captured bool `json:"captured"`
		}
		decodeBody(t, resp, &captured)
		require.True(t, captured.Captured)

		resp = doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/selection/modify",
			map[string]string{"action": "rewrite"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var st workspace.State
		decodeBody(t, resp, &st)
		assert.Equal(t, "The swift brown fox", st.Document.Body)
	})
}

func TestChatEndpoints(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/chat",
		map[string]string{"prompt": "give me an idea"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st workspace.State
	decodeBody(t, resp, &st)
	require.Len(t, st.Chat, 3)
	assert.Equal(t, "stub reply", st.Chat[2].Text)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/chat/insert",
		map[string]string{"text": "stub reply"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &st)
	assert.True(t, strings.HasSuffix(st.Document.Body, "\n\nstub reply"))
}

func TestPreview(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	resp := doJSON(t, http.MethodPut, ts.URL+"/api/sessions/"+id+"/document",
		map[string]string{"body": "# Heading\n\nSome *emphasis* here."})
	resp.Body.Close()

	r, err := http.Get(ts.URL + "/api/sessions/" + id + "/preview")
	require.NoError(t, err)
	defer r.Body.Close()
	require.Equal(t, http.StatusOK, r.StatusCode)
	assert.Contains(t, r.Header.Get("Content-Type"), "text/html")
	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "<h1>Heading</h1>")
	assert.Contains(t, string(body), "<em>emphasis</em>")
}

func TestImageUpload(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/api/sessions/"+id+"/image/upload",
		bytes.NewReader([]byte("\x89PNG\r\n\x1a\nfake image data")))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		ImageURL string `json:"imageUrl"`
	}
	decodeBody(t, resp, &out)
	assert.True(t, strings.HasPrefix(out.ImageURL, "data:"))

	t.Run("empty upload rejected", func(t *testing.T) {
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/image/upload", nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestTranslateRequiresLanguage(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/translate",
		map[string]string{})
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSettingsUpdateSwapsGateway(t *testing.T) {
	ts, rec := newTestServer(t)
	id := createSession(t, ts)

	rec.mu.Lock()
	require.Len(t, rec.calls, 1)
	assert.Equal(t, "gemini", rec.calls[0].Provider)
	rec.mu.Unlock()

	resp := doJSON(t, http.MethodPut, ts.URL+"/api/sessions/"+id+"/settings",
		map[string]string{"llmProvider": "openai", "openaiApiKey": "sk-test"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Settings config.Settings `json:"settings"`
		Version  int             `json:"version"`
	}
	decodeBody(t, resp, &out)
	assert.Equal(t, "openai", out.Settings.LLMProvider)
	assert.Equal(t, 2, out.Version)

	rec.mu.Lock()
	require.Len(t, rec.calls, 2)
	assert.Equal(t, "openai", rec.calls[1].Provider)
	assert.Equal(t, "sk-test", rec.calls[1].APIKey)
	rec.mu.Unlock()
}

func TestHubAdd(t *testing.T) {
	t.Run("registers on a running hub", func(t *testing.T) {
		hub := newHub()
		go hub.run()
		defer hub.stop()

		client := &wsClient{hub: hub, send: make(chan []byte, 1)}
		assert.True(t, hub.add(client))
	})

	t.Run("returns instead of blocking on a stopped hub", func(t *testing.T) {
		hub := newHub()
		hub.stop()

		client := &wsClient{hub: hub, send: make(chan []byte, 1)}
		assert.False(t, hub.add(client))
	})
}

func TestSave(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/save", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		State workspace.State `json:"state"`
	}
	decodeBody(t, resp, &out)
	assert.Equal(t, "Article saved successfully!", out.State.SaveStatus)
}

func TestNewProject(t *testing.T) {
	ts, _ := newTestServer(t)
	id := createSession(t, ts)

	resp := doJSON(t, http.MethodPut, ts.URL+"/api/sessions/"+id+"/document",
		map[string]string{"title": "My Draft", "body": "draft body"})
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/sessions/"+id+"/new-project", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st workspace.State
	decodeBody(t, resp, &st)
	assert.Equal(t, "New Untitled Article", st.Document.Title)
	assert.Equal(t, "Start writing...", st.Document.Body)
}
