package server

import (
	"bytes"
	"net/http"

	"github.com/yuin/goldmark"
)

// handlePreview renders the markdown body to HTML for a read-only preview
// of the article as it would publish.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request, sess *session) {
	state := sess.ws.State()

	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(state.Document.Body), &buf); err != nil {
		http.Error(w, "failed to render preview", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
