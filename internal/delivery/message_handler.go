package delivery

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voicerelay/internal/domain"
	"github.com/Vovarama1992/voicerelay/internal/models"
	"github.com/go-chi/chi/v5"
)

type MessageHandler struct {
	messages *domain.MessageService
	log      *logger.ZapLogger
}

func NewMessageHandler(messages *domain.MessageService, log *logger.ZapLogger) *MessageHandler {
	return &MessageHandler{
		messages: messages,
		log:      log,
	}
}

// GET /api/messages
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.messages.List(r.Context())
	if err != nil {
		h.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "list messages failed",
			Error:   err,
		})
		writeError(w, http.StatusInternalServerError, "failed list messages: "+err.Error())
		return
	}

	if msgs == nil {
		msgs = []models.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

type createMessageRequest struct {
	Role          models.Role `json:"role"`
	Text          *string     `json:"text"`
	AudioFilename *string     `json:"audio_filename"`
}

// POST /api/messages
//
// Unlike the upload and inbound-webhook paths, this does not require text or
// audio_filename to be set.
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	msg, err := h.messages.Create(r.Context(), domain.SourceAPI, &models.Message{
		Role:          req.Role,
		Text:          req.Text,
		AudioFilename: req.AudioFilename,
	})
	if err != nil {
		if errors.Is(err, models.ErrInvalidRole) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "create message failed",
			Error:   err,
		})
		writeError(w, http.StatusInternalServerError, "failed create message: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, msg)
}

// DELETE /api/messages/{id}
func (h *MessageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "message not found")
		return
	}

	found, err := h.messages.Delete(r.Context(), id)
	if err != nil {
		h.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "delete message failed",
			Fields:  map[string]any{"id": id},
			Error:   err,
		})
		writeError(w, http.StatusInternalServerError, "failed delete message: "+err.Error())
		return
	}

	if !found {
		writeError(w, http.StatusNotFound, "message not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
