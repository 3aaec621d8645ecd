package analyze

import (
	"strings"

	"github.com/anacondy/examwatch/internal/models"
)

// categoryKeywords maps each category to the phrases that vote for it.
// General Notice carries no keywords: it is the fallback when nothing
// matches.
var categoryKeywords = map[models.Category][]string{
	models.CategoryExamination: {
		"exam", "examination", "paper code", "time table", "timetable",
		"datesheet", "date sheet", "hall ticket", "admit card",
	},
	models.CategoryResult: {
		"result", "marks", "grade", "cgpa", "transcript",
	},
	models.CategoryAdmission: {
		"admission", "intake", "enrollment", "counseling", "counselling",
	},
	models.CategoryFeeNotice: {
		"fee", "fees", "payment", "dues", "scholarship",
	},
	models.CategoryCalendar: {
		"academic calendar", "holiday", "vacation", "session",
	},
	models.CategoryDates: {
		"last date", "deadline", "important date", "schedule",
	},
	models.CategoryUniform: {
		"uniform", "dress code", "formal wear",
	},
	models.CategoryAssignment: {
		"assignment", "project submission", "viva", "dissertation",
	},
	models.CategoryInternship: {
		"internship", "placement", "recruitment", "campus drive",
	},
	models.CategoryEvent: {
		"event", "workshop", "seminar", "fest", "orientation", "webinar",
	},
}

// Categorize scores every category by counting case-insensitive keyword
// occurrences in the text and returns the highest scorer. Ties are broken by
// the fixed priority order of models.AllCategories, so repeated runs over
// the same text are deterministic. No match at all yields General Notice.
func Categorize(text string) models.Category {
	lower := strings.ToLower(text)

	best := models.CategoryGeneral
	bestScore := 0
	for _, cat := range models.AllCategories() {
		score := 0
		for _, kw := range categoryKeywords[cat] {
			score += strings.Count(lower, kw)
		}
		// Strictly greater: an earlier (higher-priority) category keeps a tie.
		if score > bestScore {
			bestScore = score
			best = cat
		}
	}
	return best
}
