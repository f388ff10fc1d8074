package domain

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/voicerelay/internal/infra"
	"github.com/Vovarama1992/voicerelay/internal/models"
	"github.com/Vovarama1992/voicerelay/internal/ports"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testLogger() *logger.ZapLogger {
	return logger.NewZapLogger(zap.NewNop().Sugar())
}

type fakeSynth struct {
	audio []byte
	err   error
	calls atomic.Int32
}

func (f *fakeSynth) Synthesize(ctx context.Context, text string) ([]byte, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.audio, nil
}

var errSynthDown = errors.New("quota exceeded")

type fakeWebhook struct {
	mu      sync.Mutex
	reqs    []ports.WebhookRequest
	resp    *ports.WebhookResponse
	err     error
	block   chan struct{}
	explode bool
}

func (f *fakeWebhook) Send(ctx context.Context, req ports.WebhookRequest) (*ports.WebhookResponse, error) {
	if f.block != nil {
		<-f.block
	}

	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()

	if f.explode {
		panic("webhook exploded")
	}
	return f.resp, f.err
}

func (f *fakeWebhook) requests() []ports.WebhookRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ports.WebhookRequest(nil), f.reqs...)
}

type testEnv struct {
	store    *infra.MemoryMessageStore
	content  *infra.ContentDir
	synth    *fakeSynth
	webhook  *fakeWebhook
	messages *MessageService
	speech   *SpeechService
	forward  *Forwarder
	dispatch *Dispatcher
	uploads  *UploadService
	replies  *ReplyService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	content, err := infra.NewContentDir(t.TempDir())
	require.NoError(t, err)

	log := testLogger()
	env := &testEnv{
		store:   infra.NewMemoryMessageStore(),
		content: content,
		synth:   &fakeSynth{audio: []byte("ID3 fake mp3")},
		webhook: &fakeWebhook{resp: &ports.WebhookResponse{StatusCode: 200, Body: []byte(`{}`)}},
	}
	env.messages = NewMessageService(env.store, content, log)
	env.speech = NewSpeechService(env.synth, content, log)
	env.forward = NewForwarder(env.webhook, env.messages, env.speech, log)
	env.dispatch = NewDispatcher(0, log)
	env.uploads = NewUploadService(content, env.messages, env.forward, env.dispatch, log)
	env.replies = NewReplyService(env.messages, env.speech, log)
	return env
}

func (e *testEnv) list(t *testing.T) []models.Message {
	t.Helper()
	msgs, err := e.messages.List(context.Background())
	require.NoError(t, err)
	return msgs
}

func (e *testEnv) contentExists(t *testing.T, name string) bool {
	t.Helper()
	path, err := e.content.Path(name)
	require.NoError(t, err)
	return fileExists(path)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
