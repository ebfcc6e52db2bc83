package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const (
	defaultTranslateModel = "gemini-2.5-flash"
	maxTranslationTokens  = 200
)

// GeminiTranslator translates chat messages through the Gemini API. The client reads
// its API key from GEMINI_API_KEY / GOOGLE_API_KEY.
type GeminiTranslator struct {
	client *genai.Client
	model  string
}

func NewGeminiTranslator(ctx context.Context, model string) (*GeminiTranslator, error) {
	if model == "" {
		model = defaultTranslateModel
	}
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &GeminiTranslator{client: client, model: model}, nil
}

func (t *GeminiTranslator) Translate(ctx context.Context, text, targetLanguage string) (string, error) {
	if t == nil || t.client == nil {
		return "", errors.New("gemini translator is not configured")
	}
	log := zerolog.Ctx(ctx).With().Str("component", "translate").Str("model", t.model).Str("target", targetLanguage).Logger()
	start := time.Now()

	contents := []*genai.Content{
		genai.NewContentFromText(BuildTranslatePrompt(text, targetLanguage), genai.RoleUser),
	}
	temp := float32(0.7)
	topP := float32(1.0)
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       &temp,
		TopP:              &topP,
		MaxOutputTokens:   maxTranslationTokens,
	}
	res, err := t.client.Models.GenerateContent(ctx, t.model, contents, config)
	if err != nil {
		log.Warn().Err(err).Msg("gemini generate failed")
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	out, err := CleanTranslation(res.Text())
	if err != nil {
		log.Warn().Err(err).Int("len", len(res.Text())).Msg("gemini returned no text")
		return "", err
	}
	log.Debug().Dur("elapsed", time.Since(start)).Int("len", len(out)).Msg("translated")
	return out, nil
}
