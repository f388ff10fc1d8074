package ports

import "context"

type WebhookRequest struct {
	AudioPath  string
	Filename   string
	Transcript string
}

type WebhookResponse struct {
	StatusCode int
	Body       []byte
}

type WebhookClient interface {
	Send(ctx context.Context, req WebhookRequest) (*WebhookResponse, error)
}
