package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedChatMessage(t *testing.T, api *apiEnv) string {
	t.Helper()
	rec := api.do(t, http.MethodPost, "/api/chats/check-or-create", "cust", map[string]string{"tailorId": "tail"})
	require.Equal(t, http.StatusCreated, rec.Code)
	chatID := decode(t, rec)["chat"].(map[string]interface{})["chat_id"].(string)
	rec = api.do(t, http.MethodPost, "/api/chats/"+chatID+"/messages", "cust", map[string]string{"content": "good morning"})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode(t, rec)["message"].(map[string]interface{})["message_id"].(string)
}

func TestTranslateEndpoint(t *testing.T) {
	api := newAPI(t)
	id := seedChatMessage(t, api)
	calls := 0
	api.translator = func(_ context.Context, text, target string) (string, error) {
		calls++
		return "sugeng enjing", nil
	}

	for i := 0; i < 2; i++ {
		rec := api.do(t, http.MethodPost, "/api/translate", "tail", map[string]string{"messageId": id, "targetLanguage": "Jawa"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "sugeng enjing", decode(t, rec)["translatedText"])
	}
	assert.Equal(t, 1, calls)
}

func TestTranslateEndpoint_Errors(t *testing.T) {
	api := newAPI(t)
	id := seedChatMessage(t, api)
	api.translator = func(context.Context, string, string) (string, error) {
		return "", errors.New("upstream 503")
	}

	rec := api.do(t, http.MethodPost, "/api/translate", "cust", map[string]string{"messageId": id, "targetLanguage": "Latin"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid messageId or unsupported target language", errorOf(t, rec))

	rec = api.do(t, http.MethodPost, "/api/translate", "cust", map[string]string{"messageId": "missing", "targetLanguage": "Jawa"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Message not found", errorOf(t, rec))

	rec = api.do(t, http.MethodPost, "/api/translate", "cust", map[string]string{"messageId": id, "targetLanguage": "Sunda"})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Translation failed: upstream 503", errorOf(t, rec))
}
