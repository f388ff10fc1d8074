package infra

import (
	"context"
	"sync"
	"time"

	"github.com/Vovarama1992/voicerelay/internal/models"
	"github.com/Vovarama1992/voicerelay/internal/ports"
)

// MemoryMessageStore keeps messages in process memory. Used for DB_DRIVER=memory
// and in tests.
type MemoryMessageStore struct {
	mu       sync.Mutex
	messages []models.Message
	nextID   int64
}

func NewMemoryMessageStore() *MemoryMessageStore {
	return &MemoryMessageStore{nextID: 1}
}

func (s *MemoryMessageStore) Acquire(ctx context.Context) (ports.MessageHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memoryMessageRepo{store: s}, nil
}

func (s *MemoryMessageStore) Close() {}

type memoryMessageRepo struct {
	store *MemoryMessageStore
}

func (r *memoryMessageRepo) Release() {}

func (r *memoryMessageRepo) ListMessages(ctx context.Context) ([]models.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	out := make([]models.Message, len(r.store.messages))
	for i, m := range r.store.messages {
		out[i] = cloneMessage(m)
	}
	return out, nil
}

func (r *memoryMessageRepo) InsertMessage(ctx context.Context, msg *models.Message) (*models.Message, error) {
	if !msg.Role.Valid() {
		return nil, models.ErrInvalidRole
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	msg.ID = r.store.nextID
	msg.CreatedAt = models.NewCreatedAt(time.Now())
	r.store.nextID++

	r.store.messages = append(r.store.messages, cloneMessage(*msg))
	return msg, nil
}

func (r *memoryMessageRepo) GetMessageByID(ctx context.Context, id int64) (*models.Message, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, m := range r.store.messages {
		if m.ID == id {
			c := cloneMessage(m)
			return &c, nil
		}
	}
	return nil, nil
}

func (r *memoryMessageRepo) DeleteMessage(ctx context.Context, id int64) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i, m := range r.store.messages {
		if m.ID == id {
			r.store.messages = append(r.store.messages[:i], r.store.messages[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func cloneMessage(m models.Message) models.Message {
	if m.Text != nil {
		m.Text = models.StrPtr(*m.Text)
	}
	if m.AudioFilename != nil {
		m.AudioFilename = models.StrPtr(*m.AudioFilename)
	}
	return m
}
