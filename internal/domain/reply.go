package domain

import (
	"encoding/json"
	"strings"
)

// replyTextFields are checked in order; the first non-empty string wins.
var replyTextFields = []string{"text", "response", "message"}

type Reply struct {
	Text          *string
	AudioFilename *string
	// Structured is false when the body was taken as plain text.
	Structured bool
}

func (r Reply) Empty() bool {
	return r.Text == nil && r.AudioFilename == nil
}

// ParseReply interprets a webhook response body. A JSON object yields text
// from one of replyTextFields and an optional audio_filename; anything else
// is taken verbatim (trimmed) as reply text.
func ParseReply(body []byte) Reply {
	var obj map[string]any
	if err := json.Unmarshal(body, &obj); err == nil {
		reply := Reply{Structured: true}
		for _, key := range replyTextFields {
			if s, ok := obj[key].(string); ok && s != "" {
				reply.Text = &s
				break
			}
		}
		if s, ok := obj["audio_filename"].(string); ok && s != "" {
			reply.AudioFilename = &s
		}
		return reply
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return Reply{}
	}
	return Reply{Text: &text}
}
