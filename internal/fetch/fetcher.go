package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/anacondy/examwatch/internal/logger"
	"github.com/anacondy/examwatch/internal/models"
	"github.com/go-resty/resty/v2"
)

// ErrUnparsable is returned when the listing page was retrieved but could not
// be parsed as HTML.
var ErrUnparsable = errors.New("unparsable listing page")

const userAgent = "Mozilla/5.0 (compatible; ExamWatch/1.0)"

// Fetcher retrieves the announcements listing page and extracts candidate
// links with every configured strategy.
type Fetcher struct {
	client     *resty.Client
	listingURL string
	base       *url.URL
	strategies []Strategy
}

// New builds a Fetcher for the given source. listingURL must be absolute;
// relative hrefs in the page are resolved against it.
func New(listingURL string, timeout time.Duration) (*Fetcher, error) {
	base, err := url.Parse(listingURL)
	if err != nil || !base.IsAbs() {
		return nil, fmt.Errorf("invalid listing url %q: %w", listingURL, err)
	}

	return &Fetcher{
		client: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", userAgent),
		listingURL: listingURL,
		base:       base,
		strategies: []Strategy{
			detailMarkerStrategy{marker: "View Detail"},
			suffixStrategy{suffix: ".pdf"},
		},
	}, nil
}

// Fetch retrieves the listing page and returns the deduplicated union of all
// strategies' candidates. The call fails atomically: on transport error,
// timeout or an unparsable page no partial list is returned.
func (f *Fetcher) Fetch(ctx context.Context) ([]models.CandidateLink, error) {
	log := logger.Get()
	start := time.Now()

	resp, err := f.client.R().
		SetContext(ctx).
		Get(f.listingURL)
	if err != nil {
		return nil, fmt.Errorf("fetching listing page %s: %w", f.listingURL, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode(), f.listingURL)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsable, err)
	}

	seen := make(map[string]bool)
	var candidates []models.CandidateLink
	for _, strat := range f.strategies {
		links := strat.Extract(doc, f.base)
		added := 0
		for _, l := range links {
			if l.URL == "" || seen[l.URL] {
				continue
			}
			seen[l.URL] = true
			candidates = append(candidates, l)
			added++
		}
		log.Debug().
			Str("strategy", strat.Name()).
			Int("found", len(links)).
			Int("added", added).
			Msg("extraction strategy finished")
	}

	log.Info().
		Int("candidates", len(candidates)).
		Dur("duration", time.Since(start)).
		Msg("fetched listing page")

	return candidates, nil
}
