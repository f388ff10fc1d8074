package delivery

import (
	"errors"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voicerelay/internal/domain"
)

const multipartMemory = 8 << 20

type UploadHandler struct {
	uploads  *domain.UploadService
	maxBytes int64
	log      *logger.ZapLogger
}

func NewUploadHandler(uploads *domain.UploadService, maxBytes int64, log *logger.ZapLogger) *UploadHandler {
	return &UploadHandler{
		uploads:  uploads,
		maxBytes: maxBytes,
		log:      log,
	}
}

type uploadResponse struct {
	Success    bool    `json:"success"`
	Filename   string  `json:"filename"`
	Transcript *string `json:"transcript"`
}

// POST /api/upload_audio
func (h *UploadHandler) UploadAudio(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, "audio file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "no audio file provided")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no audio file provided")
		return
	}
	defer file.Close()

	var transcript *string
	if vals, ok := r.MultipartForm.Value["transcript"]; ok && len(vals) > 0 {
		transcript = &vals[0]
	}

	res, err := h.uploads.Upload(r.Context(), domain.AudioUpload{
		Filename:   header.Filename,
		Body:       file,
		Transcript: transcript,
	})
	if err != nil {
		h.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "upload failed",
			Fields:  map[string]any{"original": header.Filename},
			Error:   err,
		})
		writeError(w, http.StatusInternalServerError, "failed store upload: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Success:    true,
		Filename:   res.Filename,
		Transcript: res.Transcript,
	})
}
