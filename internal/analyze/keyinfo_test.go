package analyze

import (
	"testing"

	"github.com/anacondy/examwatch/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestExtractKeyInfo(t *testing.T) {
	text := "The examination for CS101 and BBA-204 will be held on 15-01-2024 " +
		"and 2nd February 2024 at 10:30 AM in the Physics block. CS101 is a " +
		"Computer Science paper."

	info := ExtractKeyInfo(text)

	assert.Equal(t, []string{"CS101", "BBA204"}, info.PaperCodes)
	assert.Contains(t, info.Dates, "15-01-2024")
	assert.Len(t, info.Dates, 2)
	assert.Contains(t, info.Times[0], "10:30")
	assert.Equal(t, []string{"physics", "computer science"}, info.Subjects)
}

func TestExtractKeyInfoEmptyText(t *testing.T) {
	info := ExtractKeyInfo("")
	assert.Empty(t, info.PaperCodes)
	assert.Empty(t, info.Dates)
	assert.Empty(t, info.Times)
	assert.Empty(t, info.Subjects)
}

func TestSummarize(t *testing.T) {
	full := Summarize("Examination", models.KeyInfo{
		PaperCodes: []string{"CS101", "MA102"},
		Dates:      []string{"15-01-2024"},
	})
	assert.Equal(t, "Examination | Papers: CS101, MA102 | Dates: 15-01-2024", full)

	bare := Summarize("General Notice", models.KeyInfo{})
	assert.Equal(t, "General Notice", bare)
}
