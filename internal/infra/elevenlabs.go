package infra

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultElevenLabsBaseURL = "https://api.elevenlabs.io"
	elevenLabsOutputFormat   = "mp3_44100_128"
)

type ElevenLabsTTS struct {
	apiKey  string
	voiceID string
	modelID string
	client  *resty.Client
}

func NewElevenLabsTTS(apiKey, baseURL, voiceID, modelID string) *ElevenLabsTTS {
	if baseURL == "" {
		baseURL = DefaultElevenLabsBaseURL
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("User-Agent", "voicerelay/1.0")

	return &ElevenLabsTTS{
		apiKey:  apiKey,
		voiceID: voiceID,
		modelID: modelID,
		client:  client,
	}
}

type elevenLabsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// sanitize: drop broken UTF-8, normalize to NFC
func sanitize(s string) string {
	return norm.NFC.String(strings.ToValidUTF8(s, ""))
}

func (e *ElevenLabsTTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if e.apiKey == "" {
		return nil, fmt.Errorf("no ELEVENLABS_API_KEY")
	}

	text = sanitize(text)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("elevenlabs tts: empty text")
	}

	resp, err := e.client.R().
		SetContext(ctx).
		SetHeader("xi-api-key", e.apiKey).
		SetHeader("Accept", "audio/mpeg").
		SetHeader("Content-Type", "application/json").
		SetPathParam("voice", e.voiceID).
		SetQueryParam("output_format", elevenLabsOutputFormat).
		SetBody(elevenLabsRequest{Text: text, ModelID: e.modelID}).
		Post("/v1/text-to-speech/{voice}")
	if err != nil {
		return nil, fmt.Errorf("elevenlabs tts request: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("elevenlabs tts http %d: %s", resp.StatusCode(), resp.String())
	}

	audio := resp.Body()
	if len(audio) == 0 {
		return nil, fmt.Errorf("elevenlabs tts: empty audio")
	}

	return audio, nil
}
