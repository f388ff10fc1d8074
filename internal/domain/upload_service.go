package domain

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voicerelay/internal/metrics"
	"github.com/Vovarama1992/voicerelay/internal/models"
	"github.com/Vovarama1992/voicerelay/internal/ports"
)

// DefaultUploadExt applies when the uploaded file name carries no extension.
const DefaultUploadExt = ".webm"

type AudioUpload struct {
	Filename   string
	Body       io.Reader
	Transcript *string
}

type UploadResult struct {
	Filename   string
	Transcript *string
	Message    *models.Message
}

type UploadService struct {
	content    ports.ContentStore
	messages   *MessageService
	forwarder  *Forwarder
	dispatcher *Dispatcher
	log        *logger.ZapLogger
}

func NewUploadService(
	content ports.ContentStore,
	messages *MessageService,
	forwarder *Forwarder,
	dispatcher *Dispatcher,
	log *logger.ZapLogger,
) *UploadService {
	return &UploadService{
		content:    content,
		messages:   messages,
		forwarder:  forwarder,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Upload persists the audio and the user message, then hands the forward to
// the dispatcher. The user's message is stored before forwarding is
// considered, so nothing downstream can lose it.
func (u *UploadService) Upload(ctx context.Context, in AudioUpload) (*UploadResult, error) {
	name := newContentName(uploadExt(in.Filename))

	path, err := u.content.Path(name)
	if err != nil {
		return nil, err
	}

	n, err := u.content.Save(name, in.Body)
	if err != nil {
		metrics.RecordUpload("error", 0)
		return nil, err
	}

	msg, err := u.messages.Create(ctx, SourceUpload, &models.Message{
		Role:          models.RoleUser,
		Text:          in.Transcript,
		AudioFilename: &name,
	})
	if err != nil {
		metrics.RecordUpload("error", 0)
		_ = u.content.Remove(name)
		return nil, err
	}

	metrics.RecordUpload("success", n)

	job := ForwardJob{
		AudioPath:  path,
		Filename:   in.Filename,
		Transcript: in.Transcript,
	}
	if job.Filename == "" {
		job.Filename = name
	}

	u.dispatcher.Go("forward", func(ctx context.Context) {
		u.forwarder.Forward(ctx, job)
	})

	u.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "audio uploaded",
		Fields: map[string]any{
			"id":       msg.ID,
			"filename": name,
			"bytes":    n,
		},
	})

	return &UploadResult{
		Filename:   name,
		Transcript: in.Transcript,
		Message:    msg,
	}, nil
}

func uploadExt(original string) string {
	ext := filepath.Ext(original)
	if ext == "" || ext == "." || len(ext) > 16 || strings.ContainsAny(ext, `/\ `) {
		return DefaultUploadExt
	}
	return ext
}
