package domain

import (
	"context"
	"errors"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voicerelay/internal/models"
)

var ErrEmptyReply = errors.New("must include 'text' or 'audio_filename'")

// InboundReply is a reply pushed by the external workflow. Role defaults to bot.
type InboundReply struct {
	Role          models.Role
	Text          *string
	AudioFilename *string
}

type ReplyService struct {
	messages *MessageService
	speech   *SpeechService
	log      *logger.ZapLogger
}

func NewReplyService(messages *MessageService, speech *SpeechService, log *logger.ZapLogger) *ReplyService {
	return &ReplyService{
		messages: messages,
		speech:   speech,
		log:      log,
	}
}

func (s *ReplyService) Receive(ctx context.Context, in InboundReply) (*models.Message, error) {
	if in.Role == "" {
		in.Role = models.RoleBot
	}
	if !in.Role.Valid() {
		return nil, models.ErrInvalidRole
	}

	audio := in.AudioFilename
	if models.Present(in.Text) && !models.Present(audio) {
		audio = s.speech.Voice(ctx, *in.Text)
	}

	if !models.Present(in.Text) && !models.Present(audio) {
		return nil, ErrEmptyReply
	}

	msg, err := s.messages.Create(ctx, SourceWebhook, &models.Message{
		Role:          in.Role,
		Text:          in.Text,
		AudioFilename: audio,
	})
	if err != nil {
		return nil, err
	}

	s.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "inbound webhook reply stored",
		Fields:  map[string]any{"id": msg.ID, "role": msg.Role},
	})

	return msg, nil
}
