package feedback

import "strings"

// DefaultLanguage is used when a request carries no language code.
const DefaultLanguage = "de"

var languageNames = map[string]string{
	"de": "Deutsch",
	"nb": "Norwegisch (Bokmål)",
	"no": "Norwegisch (Bokmål)",
	"en": "Englisch",
	"es": "Spanisch",
}

// LanguageName maps a language code to the display name used in the prompt.
// Unknown codes resolve to German.
func LanguageName(code string) string {
	if name, ok := languageNames[normalizeKey(code)]; ok {
		return name
	}
	return languageNames[DefaultLanguage]
}

// normalizeKey lowercases and trims a lookup key.
func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
