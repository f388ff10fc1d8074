package delivery

import (
	_ "embed"
	"net/http"
	"os"

	"github.com/Vovarama1992/voicerelay/internal/ports"
	"github.com/go-chi/chi/v5"
)

//go:embed web/index.html
var indexHTML []byte

type StaticHandler struct {
	content ports.ContentStore
}

func NewStaticHandler(content ports.ContentStore) *StaticHandler {
	return &StaticHandler{content: content}
}

// GET /
func (h *StaticHandler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

// GET /uploads/{filename}
func (h *StaticHandler) Upload(w http.ResponseWriter, r *http.Request) {
	path, err := h.content.Path(chi.URLParam(r, "filename"))
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}

	f, err := os.Open(path)
	if err != nil {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
