package domain

import (
	"context"
	"fmt"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voicerelay/internal/metrics"
	"github.com/Vovarama1992/voicerelay/internal/models"
	"github.com/Vovarama1992/voicerelay/internal/ports"
)

type ForwardJob struct {
	AudioPath  string
	Filename   string
	Transcript *string
}

type Forwarder struct {
	client   ports.WebhookClient
	messages *MessageService
	speech   *SpeechService
	log      *logger.ZapLogger
}

func NewForwarder(
	client ports.WebhookClient,
	messages *MessageService,
	speech *SpeechService,
	log *logger.ZapLogger,
) *Forwarder {
	return &Forwarder{
		client:   client,
		messages: messages,
		speech:   speech,
		log:      log,
	}
}

// Forward relays one upload to the workflow webhook and stores the bot reply,
// if any. It never returns an error: the client already has its response, so
// every failure ends in the log. The stored reply is returned for callers that
// care (nil otherwise).
func (f *Forwarder) Forward(ctx context.Context, job ForwardJob) (stored *models.Message) {
	start := time.Now()
	outcome := "failed"

	defer func() {
		if r := recover(); r != nil {
			stored = nil
			outcome = "failed"
			f.log.Log(logger.LogEntry{
				Level:   "error",
				Message: "forward panicked",
				Fields:  map[string]any{"filename": job.Filename},
				Error:   fmt.Errorf("panic: %v", r),
			})
		}
		metrics.RecordForward(outcome, time.Since(start).Seconds())
	}()

	f.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "forward start",
		Fields:  map[string]any{"filename": job.Filename},
	})

	transcript := ""
	if job.Transcript != nil {
		transcript = *job.Transcript
	}

	resp, err := f.client.Send(ctx, ports.WebhookRequest{
		AudioPath:  job.AudioPath,
		Filename:   job.Filename,
		Transcript: transcript,
	})
	if err != nil {
		f.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "failed to POST audio to webhook",
			Fields:  map[string]any{"filename": job.Filename},
			Error:   err,
		})
		return nil
	}

	f.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "webhook POST done",
		Fields: map[string]any{
			"status": resp.StatusCode,
			"body":   trim(string(resp.Body), 300),
		},
	})

	if resp.StatusCode != http.StatusOK {
		outcome = "http_error"
		f.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "webhook failed",
			Fields: map[string]any{
				"status": resp.StatusCode,
				"body":   trim(string(resp.Body), 300),
			},
		})
		return nil
	}

	reply := ParseReply(resp.Body)

	if models.Present(reply.Text) && reply.AudioFilename == nil {
		reply.AudioFilename = f.speech.Voice(ctx, *reply.Text)
	}

	if reply.Empty() {
		outcome = "empty"
		f.log.Log(logger.LogEntry{
			Level:   "info",
			Message: "webhook reply empty, nothing stored",
			Fields:  map[string]any{"filename": job.Filename},
		})
		return nil
	}

	msg, err := f.messages.Create(ctx, SourceForward, &models.Message{
		Role:          models.RoleBot,
		Text:          reply.Text,
		AudioFilename: reply.AudioFilename,
	})
	if err != nil {
		f.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "failed to store bot reply",
			Fields:  map[string]any{"filename": job.Filename},
			Error:   err,
		})
		return nil
	}

	outcome = "replied"
	f.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "forward done",
		Fields: map[string]any{
			"id":         msg.ID,
			"structured": reply.Structured,
			"dur":        time.Since(start).String(),
		},
	})

	return msg
}

// trim shortens s to at most max bytes without splitting a rune.
func trim(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
