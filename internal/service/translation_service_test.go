package service

import (
	"context"
	"errors"
	"testing"

	"github.com/batikin/tailor-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTranslator struct {
	calls int
	out   string
	err   error
}

func (s *stubTranslator) Translate(_ context.Context, text, target string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	if s.out != "" {
		return s.out, nil
	}
	return "[" + target + "] " + text, nil
}

func seedMessage(t *testing.T, env *testEnv) string {
	t.Helper()
	ctx := context.Background()
	d, _, err := env.chatSvc.CheckOrCreate(ctx, "cust", "tail")
	require.NoError(t, err)
	m, err := env.chatSvc.SendMessage(ctx, d.Chat.ChatID, "cust", NewMessage{Content: "good morning"})
	require.NoError(t, err)
	return m.Message.MessageID
}

func TestTranslate_CachesPerLanguage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := seedMessage(t, env)
	tr := &stubTranslator{}
	svc := NewTranslationService(env.chats, tr)

	got, err := svc.Translate(ctx, id, "Jawa")
	require.NoError(t, err)
	assert.Equal(t, "[Jawa] good morning", got)
	assert.Equal(t, 1, tr.calls)

	got, err = svc.Translate(ctx, id, "Jawa")
	require.NoError(t, err)
	assert.Equal(t, "[Jawa] good morning", got)
	assert.Equal(t, 1, tr.calls, "second lookup is served from the message")

	_, err = svc.Translate(ctx, id, "Sunda")
	require.NoError(t, err)
	assert.Equal(t, 2, tr.calls)

	stored, err := env.chats.FindMessageByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.Translations{
		"Jawa":  "[Jawa] good morning",
		"Sunda": "[Sunda] good morning",
	}, stored.TranslatedContent)
}

func TestTranslate_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := seedMessage(t, env)
	tr := &stubTranslator{}
	svc := NewTranslationService(env.chats, tr)

	_, err := svc.Translate(ctx, id, "Klingon")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
	_, err = svc.Translate(ctx, "", "Jawa")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
	_, err = svc.Translate(ctx, "missing", "Jawa")
	assert.ErrorIs(t, err, ErrMessageNotFound)
	assert.Zero(t, tr.calls)
}

func TestTranslate_TranslatorFailureIsWrapped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	id := seedMessage(t, env)
	upstream := errors.New("quota exceeded")
	svc := NewTranslationService(env.chats, &stubTranslator{err: upstream})

	_, err := svc.Translate(ctx, id, "Bali")
	var te *TranslationError
	require.ErrorAs(t, err, &te)
	assert.ErrorIs(t, err, upstream)
	assert.Equal(t, "translation failed: quota exceeded", err.Error())

	stored, err := env.chats.FindMessageByID(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, stored.TranslatedContent["Bali"])
}
