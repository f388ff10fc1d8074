package domain

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Vovarama1992/voicerelay/internal/models"
	"github.com/Vovarama1992/voicerelay/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageService_CreateAndList(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.messages.Create(ctx, SourceAPI, &models.Message{Role: models.RoleUser, Text: ptr("one")})
	require.NoError(t, err)
	second, err := env.messages.Create(ctx, SourceAPI, &models.Message{Role: models.RoleBot, AudioFilename: ptr("a.mp3")})
	require.NoError(t, err)

	assert.Less(t, first.ID, second.ID)
	assert.NotEmpty(t, first.CreatedAt)

	msgs := env.list(t)
	require.Len(t, msgs, 2)
	assert.Equal(t, first.ID, msgs[0].ID)
	assert.Equal(t, "one", *msgs[0].Text)
	assert.Nil(t, msgs[0].AudioFilename)
	assert.Nil(t, msgs[1].Text)
	assert.Equal(t, "a.mp3", *msgs[1].AudioFilename)
}

func TestMessageService_CreateRejectsRole(t *testing.T) {
	env := newTestEnv(t)

	for _, role := range []models.Role{"", "assistant", "USER"} {
		_, err := env.messages.Create(context.Background(), SourceAPI, &models.Message{Role: role, Text: ptr("x")})
		assert.ErrorIs(t, err, models.ErrInvalidRole)
	}
	assert.Empty(t, env.list(t))
}

func TestMessageService_DeleteRemovesFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.content.Save("note.webm", strings.NewReader("audio"))
	require.NoError(t, err)

	msg, err := env.messages.Create(ctx, SourceAPI, &models.Message{Role: models.RoleUser, AudioFilename: ptr("note.webm")})
	require.NoError(t, err)

	found, err := env.messages.Delete(ctx, msg.ID)
	require.NoError(t, err)
	assert.True(t, found)

	assert.Empty(t, env.list(t))
	assert.False(t, env.contentExists(t, "note.webm"))
}

func TestMessageService_DeleteWithMissingFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	msg, err := env.messages.Create(ctx, SourceAPI, &models.Message{Role: models.RoleBot, AudioFilename: ptr("gone.mp3")})
	require.NoError(t, err)

	found, err := env.messages.Delete(ctx, msg.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, env.list(t))
}

func TestMessageService_DeleteUnknown(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.messages.Create(ctx, SourceAPI, &models.Message{Role: models.RoleUser, Text: ptr("keep me")})
	require.NoError(t, err)

	found, err := env.messages.Delete(ctx, 9999)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Len(t, env.list(t), 1)
}

var errRowLocked = errors.New("row locked")

// deleteFailingStore wraps a store whose handles refuse DeleteMessage.
type deleteFailingStore struct {
	ports.MessageStore
}

func (s deleteFailingStore) Acquire(ctx context.Context) (ports.MessageHandle, error) {
	h, err := s.MessageStore.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return deleteFailingHandle{h}, nil
}

type deleteFailingHandle struct {
	ports.MessageHandle
}

func (deleteFailingHandle) DeleteMessage(ctx context.Context, id int64) (bool, error) {
	return false, errRowLocked
}

func TestMessageService_DeleteFailureKeepsFile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.content.Save("kept.webm", strings.NewReader("audio"))
	require.NoError(t, err)
	msg, err := env.messages.Create(ctx, SourceAPI, &models.Message{Role: models.RoleUser, AudioFilename: ptr("kept.webm")})
	require.NoError(t, err)

	failing := NewMessageService(deleteFailingStore{env.store}, env.content, testLogger())

	found, err := failing.Delete(ctx, msg.ID)
	assert.ErrorIs(t, err, errRowLocked)
	assert.False(t, found)

	// row and file stay together
	assert.Len(t, env.list(t), 1)
	assert.True(t, env.contentExists(t, "kept.webm"))
}
