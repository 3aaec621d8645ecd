package analyze

import (
	"regexp"
	"strings"

	"github.com/anacondy/examwatch/internal/models"
)

var (
	// Paper codes are short letter-prefix + digit-suffix tokens: CS101, BBA-204.
	rePaperCode = regexp.MustCompile(`\b([A-Za-z]{2,5})-?(\d{2,4})\b`)

	reNumericDate = regexp.MustCompile(`\b\d{1,2}[-/]\d{1,2}[-/]\d{2,4}\b`)
	reWrittenDay  = regexp.MustCompile(`(?i)\b\d{1,2}(?:st|nd|rd|th)?\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?,?\s+\d{4}\b`)

	reClockTime = regexp.MustCompile(`(?i)\b\d{1,2}[:.]\d{2}\s*(?:am|pm)?\b`)
)

// subjectVocabulary is the fixed list of subject keywords looked up in the
// text. Matching is case-insensitive substring.
var subjectVocabulary = []string{
	"mathematics", "physics", "chemistry", "biology", "computer science",
	"english", "hindi", "economics", "management", "commerce", "accounting",
	"statistics", "electronics", "mechanical", "civil", "electrical",
	"pharmacy", "law", "psychology",
}

// ExtractKeyInfo applies the pattern matchers over the extracted text. Every
// list may be empty.
func ExtractKeyInfo(text string) models.KeyInfo {
	return models.KeyInfo{
		PaperCodes: extractPaperCodes(text),
		Dates:      extractDates(text),
		Times:      dedup(reClockTime.FindAllString(text, -1)),
		Subjects:   extractSubjects(text),
	}
}

func extractPaperCodes(text string) []string {
	var codes []string
	for _, m := range rePaperCode.FindAllStringSubmatch(text, -1) {
		// Normalized to the compact uppercase form the query interpreter
		// recognizes as a code-like token.
		codes = append(codes, strings.ToUpper(m[1])+m[2])
	}
	return dedup(codes)
}

func extractDates(text string) []string {
	dates := reNumericDate.FindAllString(text, -1)
	dates = append(dates, reWrittenDay.FindAllString(text, -1)...)
	return dedup(dates)
}

func extractSubjects(text string) []string {
	lower := strings.ToLower(text)
	var subjects []string
	for _, s := range subjectVocabulary {
		if strings.Contains(lower, s) {
			subjects = append(subjects, s)
		}
	}
	return subjects
}

// Summarize builds the human-readable digest persisted as the announcement
// summary: category, then paper codes, then dates.
func Summarize(category string, info models.KeyInfo) string {
	parts := []string{category}
	if len(info.PaperCodes) > 0 {
		parts = append(parts, "Papers: "+strings.Join(info.PaperCodes, ", "))
	}
	if len(info.Dates) > 0 {
		parts = append(parts, "Dates: "+strings.Join(info.Dates, ", "))
	}
	return strings.Join(parts, " | ")
}

func dedup(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
