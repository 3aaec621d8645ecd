package analyze

import "github.com/abadojack/whatlanggo"

const (
	languageHindi   = "hi"
	languageEnglish = "en"
)

// minDetectLength guards the detector against trivially short inputs, which
// it classifies with near-zero confidence anyway.
const minDetectLength = 20

// DetectLanguage classifies the primary language of the text. Empty or
// low-confidence input is reported as undetermined, which downstream stages
// treat as the target language (no translation attempted).
func DetectLanguage(text string) string {
	if len(text) < minDetectLength {
		return LanguageUndetermined
	}

	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return LanguageUndetermined
	}

	switch info.Lang {
	case whatlanggo.Hin:
		return languageHindi
	case whatlanggo.Eng:
		return languageEnglish
	default:
		if code := whatlanggo.LangToString(info.Lang); code != "" {
			return code
		}
		return LanguageUndetermined
	}
}
