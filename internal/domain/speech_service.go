package domain

import (
	"bytes"
	"context"
	"strings"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voicerelay/internal/metrics"
	"github.com/Vovarama1992/voicerelay/internal/ports"
	"github.com/google/uuid"
)

// SynthesizedAudioExt is used for every synthesized reply, whatever path produced it.
const SynthesizedAudioExt = ".mp3"

type SpeechService struct {
	synth   ports.SpeechSynthesizer
	content ports.ContentStore
	log     *logger.ZapLogger
}

func NewSpeechService(synth ports.SpeechSynthesizer, content ports.ContentStore, log *logger.ZapLogger) *SpeechService {
	return &SpeechService{
		synth:   synth,
		content: content,
		log:     log,
	}
}

// Voice synthesizes text and stores the audio in the content dir, returning
// its filename. Any failure is logged and yields nil: the caller keeps a
// text-only reply.
func (s *SpeechService) Voice(ctx context.Context, text string) *string {
	audio, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		metrics.RecordSynthesis("error")
		s.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "speech synthesis failed",
			Fields:  map[string]any{"textLen": len(text)},
			Error:   err,
		})
		return nil
	}

	name := newContentName(SynthesizedAudioExt)
	if _, err := s.content.Save(name, bytes.NewReader(audio)); err != nil {
		metrics.RecordSynthesis("error")
		s.log.Log(logger.LogEntry{
			Level:   "error",
			Message: "saving synthesized audio failed",
			Fields:  map[string]any{"filename": name},
			Error:   err,
		})
		return nil
	}

	metrics.RecordSynthesis("success")
	s.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "speech synthesized",
		Fields:  map[string]any{"filename": name, "bytes": len(audio)},
	})

	return &name
}

// newContentName returns a collision-resistant 32-hex filename with ext.
func newContentName(ext string) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "") + ext
}
