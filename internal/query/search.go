package query

import (
	"context"
	"strings"

	"github.com/anacondy/examwatch/internal/models"
	"github.com/anacondy/examwatch/internal/store"
)

// Searcher turns free-text queries into structured predicates evaluated
// against the store. It never errors on query shape: an empty query yields an
// empty result by convention.
type Searcher struct {
	store *store.Store
}

func NewSearcher(s *store.Store) *Searcher {
	return &Searcher{store: s}
}

// Search interprets queryText and returns matching announcements ordered by
// descending id. Every token must match some field of a row for it to
// qualify; within one generic token, any of the text fields suffices.
func (s *Searcher) Search(ctx context.Context, queryText string) ([]models.Announcement, error) {
	tokens := strings.Fields(queryText)
	if len(tokens) == 0 {
		return []models.Announcement{}, nil
	}

	var (
		conds []string
		args  []any
	)
	for _, tok := range tokens {
		cond, a := buildCondition(tok)
		conds = append(conds, cond)
		args = append(args, a...)
	}

	results, err := s.store.Search(ctx, strings.Join(conds, " AND "), args)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []models.Announcement{}
	}
	return results, nil
}

// buildCondition produces the SQL predicate for one classified token.
func buildCondition(token string) (string, []any) {
	like := "%" + escapeLike(token) + "%"
	switch Classify(token) {
	case TokenFullDate:
		return "date_text = ?", []any{token}
	case TokenYear:
		return `(date_text LIKE ? ESCAPE '\' OR summary LIKE ? ESCAPE '\')`, []any{like, like}
	case TokenCode:
		return `(summary LIKE ? ESCAPE '\' OR title LIKE ? ESCAPE '\')`, []any{like, like}
	default:
		// Prefix search through the FTS mirror, with LIKE fallback for
		// mid-word substrings the tokenizer cannot see.
		return `(id IN (SELECT rowid FROM announcements_fts WHERE announcements_fts MATCH ?)
			OR title LIKE ? ESCAPE '\' OR date_text LIKE ? ESCAPE '\' OR summary LIKE ? ESCAPE '\'
			OR translated_title LIKE ? ESCAPE '\' OR category LIKE ? ESCAPE '\')`,
			[]any{ftsPrefixQuery(token), like, like, like, like, like}
	}
}

// escapeLike neutralizes LIKE metacharacters in a user token so "100%" matches
// the literal text instead of degenerating into a wildcard.
func escapeLike(token string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(token)
}

// ftsPrefixQuery quotes a token for FTS5 MATCH and makes it a prefix query.
func ftsPrefixQuery(token string) string {
	return `"` + strings.ReplaceAll(token, `"`, `""`) + `"*`
}
