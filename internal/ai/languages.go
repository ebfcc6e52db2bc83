package ai

// SupportedLanguages lists the target languages accepted by the translator,
// in the order clients present them.
var SupportedLanguages = []string{
	"Indonesia",
	"Jawa",
	"Sunda",
	"Batak",
	"Betawi",
	"Minang",
	"Bugis",
	"Madura",
	"Bali",
	"English",
}

// regional languages without their own code fall back to Indonesian
var languageCodes = map[string]string{
	"Indonesia": "id",
	"Jawa":      "jv",
	"Sunda":     "su",
	"Batak":     "id",
	"Betawi":    "id",
	"Minang":    "id",
	"Bugis":     "id",
	"Madura":    "id",
	"Bali":      "id",
	"English":   "en",
}

func IsSupportedLanguage(lang string) bool {
	_, ok := languageCodes[lang]
	return ok
}

// LanguageCode returns the ISO code hinted to the model, "en" for unknown names.
func LanguageCode(lang string) string {
	if code, ok := languageCodes[lang]; ok {
		return code
	}
	return "en"
}
