package analyze

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/anacondy/examwatch/internal/cache"
	"github.com/anacondy/examwatch/internal/logger"
	"github.com/anacondy/examwatch/internal/models"
	"github.com/go-resty/resty/v2"
)

// LanguageUndetermined is reported when detection has no reliable signal
// (empty or too-short text). It is treated as the target language: no
// translation is attempted.
const LanguageUndetermined = "und"

// Options configures an Analyzer.
type Options struct {
	DownloadTimeout  time.Duration
	MaxDownloadBytes int64
	// TranslateEndpoint is a LibreTranslate-compatible /translate URL.
	// Empty disables translation.
	TranslateEndpoint string
}

// Analyzer runs the document-analysis pipeline: download, text extraction,
// language detection, translation, categorization, structured extraction and
// summary synthesis. Each stage can fail without aborting the pipeline; a
// failed stage yields a partial result with the stage's reason in Error.
type Analyzer struct {
	client     *resty.Client
	cache      cache.AnalysisCache
	translator *Translator
	maxBytes   int64
}

// New builds an Analyzer. The cache is required; the translator is only
// created when an endpoint is configured.
func New(c cache.AnalysisCache, opts Options) *Analyzer {
	a := &Analyzer{
		client: resty.New().
			SetTimeout(opts.DownloadTimeout).
			SetHeader("User-Agent", userAgent),
		cache:    c,
		maxBytes: opts.MaxDownloadBytes,
	}
	if opts.TranslateEndpoint != "" {
		a.translator = NewTranslator(opts.TranslateEndpoint)
	}
	return a
}

const userAgent = "Mozilla/5.0 (compatible; ExamWatch/1.0)"

// CanTranslate reports whether a translation backend is configured.
func (a *Analyzer) CanTranslate() bool {
	return a.translator != nil
}

// Analyze runs the pipeline for one document. A prior result for the same
// URL is returned immediately with Cached set unless force is true. The
// returned error is non-nil only when the pipeline produced no usable
// analysis at all (download failure); partial failures are reported through
// the result's Error field.
func (a *Analyzer) Analyze(ctx context.Context, url, title string, force bool) (*models.AnalysisResult, error) {
	log := logger.Get()

	if !force {
		if res, ok := a.cache.Get(ctx, url); ok {
			cached := *res
			cached.Cached = true
			log.Debug().Str("url", url).Msg("analysis cache hit")
			return &cached, nil
		}
	}

	start := time.Now()
	res := &models.AnalysisResult{URL: url, Language: LanguageUndetermined}

	body, err := a.download(ctx, url)
	if err != nil {
		log.Warn().Err(err).Str("url", url).Str("stage", "download").Msg("analysis stage failed")
		res.Error = fmt.Sprintf("download: %v", err)
		return res, fmt.Errorf("download %s: %w", url, err)
	}

	// Documents with no extractable text (scanned images) yield empty text,
	// not a failure.
	text := ExtractText(body)

	res.Language = DetectLanguage(text)

	if res.Language == languageHindi && a.translator != nil {
		translated, err := a.translator.Translate(ctx, title)
		if err != nil {
			// Translation failure falls back to the untranslated original.
			log.Warn().Err(err).Str("url", url).Str("stage", "translate").Msg("analysis stage failed")
		} else {
			res.TranslatedTitle = translated
			res.Translated = true
		}
	}

	res.Category = string(Categorize(title + " " + text))
	res.KeyInfo = ExtractKeyInfo(text)
	res.Summary = Summarize(res.Category, res.KeyInfo)

	a.cache.Set(ctx, url, res)

	log.Info().
		Str("url", url).
		Str("category", res.Category).
		Str("language", res.Language).
		Bool("translated", res.Translated).
		Int("text_len", len(text)).
		Dur("duration", time.Since(start)).
		Msg("document analyzed")

	return res, nil
}

func (a *Analyzer) download(ctx context.Context, url string) ([]byte, error) {
	resp, err := a.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode())
	}
	body := resp.Body()
	if a.maxBytes > 0 && int64(len(body)) > a.maxBytes {
		return nil, fmt.Errorf("document too large: %d bytes (limit %d)", len(body), a.maxBytes)
	}
	return body, nil
}
