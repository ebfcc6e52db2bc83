package ai

import (
	"errors"
	"strings"
)

var ErrEmptyTranslation = errors.New("empty_translation")

var quotePairs = [][2]string{
	{`"`, `"`},
	{"“", "”"},
	{"'", "'"},
	{"«", "»"},
}

// CleanTranslation trims model output down to the translated text. A single pair of
// wrapping quotes is removed because the prompt quotes the source text and models
// tend to echo that.
func CleanTranslation(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	for _, q := range quotePairs {
		if len(text) >= len(q[0])+len(q[1]) && strings.HasPrefix(text, q[0]) && strings.HasSuffix(text, q[1]) {
			text = strings.TrimSpace(text[len(q[0]) : len(text)-len(q[1])])
			break
		}
	}
	if text == "" {
		return "", ErrEmptyTranslation
	}
	return text, nil
}
