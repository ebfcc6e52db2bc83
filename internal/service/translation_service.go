package service

import (
	"context"
	"errors"

	"github.com/batikin/tailor-backend/internal/ai"
	"github.com/batikin/tailor-backend/internal/metrics"
	"github.com/batikin/tailor-backend/internal/repository"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Translator is satisfied by *ai.GeminiTranslator.
type Translator interface {
	Translate(ctx context.Context, text, targetLanguage string) (string, error)
}

type TranslationService interface {
	Translate(ctx context.Context, messageID, targetLanguage string) (string, error)
}

type translationService struct {
	chats      repository.ChatRepository
	translator Translator
}

func NewTranslationService(chats repository.ChatRepository, translator Translator) TranslationService {
	return &translationService{chats: chats, translator: translator}
}

// Translate returns the cached translation for the language when present; otherwise
// it calls the translator once and stores the result on the message.
func (s *translationService) Translate(ctx context.Context, messageID, targetLanguage string) (string, error) {
	if messageID == "" || !ai.IsSupportedLanguage(targetLanguage) {
		return "", ErrUnsupportedLanguage
	}
	msg, err := s.chats.FindMessageByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrMessageNotFound
		}
		return "", err
	}
	if cached := msg.TranslatedContent[targetLanguage]; cached != "" {
		metrics.TranslationLookups.WithLabelValues("hit").Inc()
		return cached, nil
	}

	text, err := s.translator.Translate(ctx, msg.Content, targetLanguage)
	if err != nil {
		metrics.TranslationLookups.WithLabelValues("error").Inc()
		return "", &TranslationError{Err: err}
	}
	metrics.TranslationLookups.WithLabelValues("miss").Inc()
	if _, err := s.chats.SetTranslation(ctx, messageID, targetLanguage, text); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("message_id", messageID).Msg("store translation")
		return "", &TranslationError{Err: err}
	}
	return text, nil
}
