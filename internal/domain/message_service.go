package domain

import (
	"context"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voicerelay/internal/metrics"
	"github.com/Vovarama1992/voicerelay/internal/models"
	"github.com/Vovarama1992/voicerelay/internal/ports"
)

// Creation paths, used as a metrics label.
const (
	SourceAPI     = "api"
	SourceUpload  = "upload"
	SourceForward = "forward"
	SourceWebhook = "webhook"
)

// MessageService acquires a fresh store handle for every operation, so
// request goroutines and background forwards never share a connection.
type MessageService struct {
	store   ports.MessageStore
	content ports.ContentStore
	log     *logger.ZapLogger
}

func NewMessageService(store ports.MessageStore, content ports.ContentStore, log *logger.ZapLogger) *MessageService {
	return &MessageService{
		store:   store,
		content: content,
		log:     log,
	}
}

func (s *MessageService) List(ctx context.Context) ([]models.Message, error) {
	h, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer h.Release()

	return h.ListMessages(ctx)
}

func (s *MessageService) Create(ctx context.Context, source string, msg *models.Message) (*models.Message, error) {
	if !msg.Role.Valid() {
		return nil, models.ErrInvalidRole
	}

	h, err := s.store.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer h.Release()

	created, err := h.InsertMessage(ctx, msg)
	if err != nil {
		return nil, err
	}

	metrics.RecordMessageCreated(source, string(created.Role))
	s.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "message stored",
		Fields: map[string]any{
			"id":       created.ID,
			"role":     created.Role,
			"source":   source,
			"hasText":  models.Present(created.Text),
			"hasAudio": models.Present(created.AudioFilename),
		},
	})

	return created, nil
}

// Delete removes the message and then, best-effort, its audio file. The row
// goes first so a failed delete never leaves it pointing at a missing file.
// It reports false when the id is unknown.
func (s *MessageService) Delete(ctx context.Context, id int64) (bool, error) {
	h, err := s.store.Acquire(ctx)
	if err != nil {
		return false, err
	}
	defer h.Release()

	msg, err := h.GetMessageByID(ctx, id)
	if err != nil {
		return false, err
	}
	if msg == nil {
		return false, nil
	}

	deleted, err := h.DeleteMessage(ctx, id)
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, nil
	}

	if models.Present(msg.AudioFilename) {
		if err := s.content.Remove(*msg.AudioFilename); err != nil {
			s.log.Log(logger.LogEntry{
				Level:   "error",
				Message: "failed to remove audio file",
				Fields:  map[string]any{"id": id, "filename": *msg.AudioFilename},
				Error:   err,
			})
		}
	}

	s.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "message deleted",
		Fields:  map[string]any{"id": id},
	})

	return true, nil
}
