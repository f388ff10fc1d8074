package ports

import (
	"context"

	"github.com/Vovarama1992/voicerelay/internal/models"
)

type MessageRepository interface {
	ListMessages(ctx context.Context) ([]models.Message, error)
	InsertMessage(ctx context.Context, msg *models.Message) (*models.Message, error)
	// GetMessageByID returns nil, nil when the id is unknown.
	GetMessageByID(ctx context.Context, id int64) (*models.Message, error)
	DeleteMessage(ctx context.Context, id int64) (bool, error)
}

// MessageHandle owns one store connection. It must not be shared between
// goroutines and must be released when the unit of work is done.
type MessageHandle interface {
	MessageRepository
	Release()
}

type MessageStore interface {
	Acquire(ctx context.Context) (MessageHandle, error)
	Close()
}
