package ai

import "fmt"

const systemPrompt = `You are a professional translator. Translate the provided text into the specified language accurately, preserving the meaning and context. If the source language is unclear, make a reasonable attempt to detect it.

Rules:
* Reply with the translated text only.
* Do not add quotes, notes, romanization or explanations.
* Keep names, order ids and numbers unchanged.`

// BuildTranslatePrompt renders the user turn for one translation request.
func BuildTranslatePrompt(text, targetLanguage string) string {
	return fmt.Sprintf("Translate the following text into %s (%s): %q", targetLanguage, LanguageCode(targetLanguage), text)
}
