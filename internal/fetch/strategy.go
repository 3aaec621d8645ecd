package fetch

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/anacondy/examwatch/internal/models"
)

// Strategy extracts candidate links from a retrieved listing page. Multiple
// strategies run over the same document and their results are unioned with
// url-based dedup, so adding a strategy never touches callers.
type Strategy interface {
	Name() string
	Extract(doc *goquery.Document, base *url.URL) []models.CandidateLink
}

var (
	reFullDate     = regexp.MustCompile(`\b(\d{2}[-/]\d{2}[-/]\d{4})\b`)
	reWrittenDate  = regexp.MustCompile(`\b(\d{1,2}\s+[A-Za-z]+\s+\d{4})\b`)
	reLeadingPunct = regexp.MustCompile(`^[\.\-\:\s]+`)
)

// detailMarkerStrategy collects links whose visible text is the listing's
// "View Detail" marker; the surrounding container text carries the date and
// title.
type detailMarkerStrategy struct {
	marker string
}

func (s detailMarkerStrategy) Name() string { return "detail-marker" }

func (s detailMarkerStrategy) Extract(doc *goquery.Document, base *url.URL) []models.CandidateLink {
	var out []models.CandidateLink

	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if !strings.EqualFold(text, s.marker) {
			return
		}

		href, ok := sel.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}

		parent := sel.Parent()
		if parent.Length() == 0 {
			return
		}
		raw := normalizeText(parent.Text())

		dateText := firstDate(raw)
		if dateText == "" {
			return
		}

		title := strings.ReplaceAll(raw, dateText, "")
		title = replaceFold(title, s.marker)
		title = reLeadingPunct.ReplaceAllString(strings.TrimSpace(title), "")
		if title == "" {
			return
		}

		out = append(out, models.CandidateLink{
			Title:    title,
			URL:      resolveURL(base, href),
			DateText: dateText,
		})
	})

	return out
}

// suffixStrategy collects links whose target path ends in the document
// suffix, covering rows that have no detail marker at all.
type suffixStrategy struct {
	suffix string
}

func (s suffixStrategy) Name() string { return "suffix" }

func (s suffixStrategy) Extract(doc *goquery.Document, base *url.URL) []models.CandidateLink {
	var out []models.CandidateLink

	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}

		u, err := url.Parse(href)
		if err != nil || !strings.HasSuffix(strings.ToLower(u.Path), s.suffix) {
			return
		}

		title := normalizeText(sel.Text())
		if title == "" || isGenericLabel(title) {
			// Anchor text is a generic label; fall back to the parent text.
			if parent := sel.Parent(); parent.Length() > 0 {
				title = truncateRunes(normalizeText(parent.Text()), maxFallbackTitle)
			}
		}
		if title == "" {
			title = "PDF Document"
		}

		out = append(out, models.CandidateLink{
			Title:    title,
			URL:      resolveURL(base, href),
			DateText: time.Now().Format("02-01-2006"),
		})
	})

	return out
}

// maxFallbackTitle caps parent-text fallback titles, counted in runes so
// Devanagari titles are never cut mid-character.
const maxFallbackTitle = 100

func truncateRunes(text string, max int) string {
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max])
}

var genericLabels = []string{"View Detail", "Download", "Click Here"}

func isGenericLabel(text string) bool {
	for _, l := range genericLabels {
		if strings.EqualFold(text, l) {
			return true
		}
	}
	return false
}

func firstDate(text string) string {
	if m := reFullDate.FindString(text); m != "" {
		return m
	}
	return reWrittenDate.FindString(text)
}

func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func normalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// replaceFold removes every case-insensitive occurrence of marker from text.
func replaceFold(text, marker string) string {
	lower := strings.ToLower(text)
	needle := strings.ToLower(marker)
	var b strings.Builder
	for {
		i := strings.Index(lower, needle)
		if i < 0 {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(text[:i])
		text = text[i+len(needle):]
		lower = lower[i+len(needle):]
	}
}
