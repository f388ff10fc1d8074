package infra

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"time"

	"github.com/Vovarama1992/voicerelay/internal/ports"
	"github.com/gabriel-vasile/mimetype"
)

type HTTPWebhookClient struct {
	url    string
	client *http.Client
}

func NewHTTPWebhookClient(url string, timeout time.Duration) *HTTPWebhookClient {
	return &HTTPWebhookClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPWebhookClient) Send(ctx context.Context, in ports.WebhookRequest) (*ports.WebhookResponse, error) {
	audio, err := os.ReadFile(in.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}

	filename := in.Filename
	if filename == "" {
		filename = filepath.Base(in.AudioPath)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename="%s"`, escapeQuotes(filename)))
	header.Set("Content-Type", audioContentType(audio))

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("creating audio part: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("writing audio: %w", err)
	}

	if err := writer.WriteField("transcript", in.Transcript); err != nil {
		return nil, fmt.Errorf("writing transcript field: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading webhook response: %w", err)
	}

	return &ports.WebhookResponse{
		StatusCode: resp.StatusCode,
		Body:       raw,
	}, nil
}

// audioContentType sniffs the payload; unknown data goes out as octet-stream.
func audioContentType(data []byte) string {
	mt := mimetype.Detect(data)
	if mt == nil || mt.Is("application/octet-stream") || mt.Is("text/plain") {
		return "application/octet-stream"
	}
	return mt.String()
}

func escapeQuotes(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
