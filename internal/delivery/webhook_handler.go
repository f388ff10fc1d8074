package delivery

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voicerelay/internal/domain"
	"github.com/Vovarama1992/voicerelay/internal/models"
)

type WebhookHandler struct {
	replies *domain.ReplyService
	log     *logger.ZapLogger
}

func NewWebhookHandler(replies *domain.ReplyService, log *logger.ZapLogger) *WebhookHandler {
	return &WebhookHandler{
		replies: replies,
		log:     log,
	}
}

type webhookReceiveRequest struct {
	Role          models.Role `json:"role"`
	Text          *string     `json:"text"`
	AudioFilename *string     `json:"audio_filename"`
}

type webhookReceiveResponse struct {
	Success bool `json:"success"`
	models.Message
}

// POST /api/webhook_receive
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var req webhookReceiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}

	msg, err := h.replies.Receive(r.Context(), domain.InboundReply{
		Role:          req.Role,
		Text:          req.Text,
		AudioFilename: req.AudioFilename,
	})
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrEmptyReply), errors.Is(err, models.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	default:
		h.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "failed to handle incoming webhook data",
			Error:   err,
		})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, webhookReceiveResponse{
		Success: true,
		Message: *msg,
	})
}
