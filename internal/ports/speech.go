package ports

import "context"

type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
