package analyze

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Translator calls a LibreTranslate-compatible HTTP endpoint to translate
// Hindi text to English. Failures never fail the analysis pipeline; callers
// fall back to the untranslated original.
type Translator struct {
	client   *resty.Client
	endpoint string
}

type translateRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type translateResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

func NewTranslator(endpoint string) *Translator {
	return &Translator{
		client:   resty.New().SetTimeout(15 * time.Second),
		endpoint: endpoint,
	}
}

// maxTranslateChars bounds the excerpt sent to the translation service,
// counted in runes: Devanagari text is multi-byte and a byte cut could split
// a character.
const maxTranslateChars = 500

// Translate translates the given Hindi text to English.
func (t *Translator) Translate(ctx context.Context, text string) (string, error) {
	if text == "" {
		return "", nil
	}
	if r := []rune(text); len(r) > maxTranslateChars {
		text = string(r[:maxTranslateChars])
	}

	var result translateResponse
	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(translateRequest{
			Q:      text,
			Source: languageHindi,
			Target: languageEnglish,
			Format: "text",
		}).
		SetResult(&result).
		Post(t.endpoint)
	if err != nil {
		return "", fmt.Errorf("translation request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("translation service returned status %d", resp.StatusCode())
	}
	if result.Error != "" {
		return "", fmt.Errorf("translation service error: %s", result.Error)
	}
	if result.TranslatedText == "" {
		return "", fmt.Errorf("empty translation in response")
	}

	return result.TranslatedText, nil
}
