// ABOUTME: Markdown preview endpoint for knowledge-base record content
// ABOUTME: Renders record markdown to HTML with goldmark for the dashboard pane

package gateway

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/yuin/goldmark"
)

// PreviewRequest is the JSON request body for POST /api/admin/preview.
type PreviewRequest struct {
	Content string `json:"content"`
}

// PreviewResponse carries the rendered HTML.
type PreviewResponse struct {
	HTML string `json:"html"`
}

// maxPreviewBytes bounds how much markdown one preview call will render.
const maxPreviewBytes = 256 * 1024

// handlePreview renders knowledge-base markdown content to HTML.
func (g *Gateway) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req PreviewRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPreviewBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var htmlBuf bytes.Buffer
	if err := goldmark.Convert([]byte(req.Content), &htmlBuf); err != nil {
		g.logger.Error("rendering preview", "error", err)
		writeError(w, http.StatusInternalServerError, "rendering failed")
		return
	}

	writeJSON(w, http.StatusOK, PreviewResponse{HTML: htmlBuf.String()})
}
