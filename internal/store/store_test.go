package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/anacondy/examwatch/internal/models"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func announcement(i int) models.Announcement {
	return models.Announcement{
		DateText: "15-01-2024",
		Title:    fmt.Sprintf("Announcement %d", i),
		URL:      fmt.Sprintf("https://example.edu/docs/%d.pdf", i),
	}
}

func TestUpsertDeduplicatesByURL(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := announcement(1)
	require.NoError(t, s.Upsert(ctx, a))

	first, err := s.GetByURL(ctx, a.URL)
	require.NoError(t, err)

	// Re-upserting the same URL must not change count or id.
	a.Title = "Updated title"
	require.NoError(t, s.Upsert(ctx, a))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	second, err := s.GetByURL(ctx, a.URL)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "Updated title", second.Title)
	require.Equal(t, first.CrawledAt.Unix(), second.CrawledAt.Unix())
}

func TestUpsertKeepsAnalysisFieldsOnEmptyUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := announcement(1)
	a.Summary = "Examination | Papers: CS101"
	a.Category = "Examination"
	require.NoError(t, s.Upsert(ctx, a))

	// A later upsert of the same candidate without analysis output must not
	// wipe the enrichment.
	bare := announcement(1)
	require.NoError(t, s.Upsert(ctx, bare))

	got, err := s.GetByURL(ctx, a.URL)
	require.NoError(t, err)
	require.Equal(t, "Examination | Papers: CS101", got.Summary)
	require.Equal(t, "Examination", got.Category)

	// A fresh analysis overwrites rather than appends.
	a.Summary = "Result | Dates: 20-02-2024"
	a.Category = "Result"
	require.NoError(t, s.Upsert(ctx, a))

	got, err = s.GetByURL(ctx, a.URL)
	require.NoError(t, err)
	require.Equal(t, "Result | Dates: 20-02-2024", got.Summary)
	require.Equal(t, "Result", got.Category)
}

func TestCleanupEvictsOldestIDs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 500; i++ {
		require.NoError(t, s.Upsert(ctx, announcement(i)))
	}

	deleted, err := s.Cleanup(ctx, 470)
	require.NoError(t, err)
	require.Equal(t, 30, deleted)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 470, n)

	// The 30 smallest ids are gone; the survivors start at id 31.
	rows, err := s.Search(ctx, "", nil)
	require.NoError(t, err)
	require.Len(t, rows, 470)
	minID := rows[len(rows)-1].ID
	require.EqualValues(t, 31, minID)
}

func TestCleanupBelowCapDeletesNothing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, s.Upsert(ctx, announcement(i)))
	}

	deleted, err := s.Cleanup(ctx, 470)
	require.NoError(t, err)
	require.Equal(t, 0, deleted)

	n, err := s.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 5, n)
}

func TestFTSMirrorFollowsRowLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := announcement(1)
	a.Title = "Midterm datesheet released"
	require.NoError(t, s.Upsert(ctx, a))
	require.NoError(t, s.Upsert(ctx, announcement(2)))

	ftsWhere := "id IN (SELECT rowid FROM announcements_fts WHERE announcements_fts MATCH ?)"

	rows, err := s.Search(ctx, ftsWhere, []any{`"datesheet"`})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// Updating the row re-indexes the new text.
	a.Title = "Midterm schedule withdrawn"
	require.NoError(t, s.Upsert(ctx, a))

	rows, err = s.Search(ctx, ftsWhere, []any{`"datesheet"`})
	require.NoError(t, err)
	require.Empty(t, rows)

	rows, err = s.Search(ctx, ftsWhere, []any{`"withdrawn"`})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	// Retention deletes must remove the mirror entry in the same operation.
	deleted, err := s.Cleanup(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, deleted)

	rows, err = s.Search(ctx, ftsWhere, []any{`"withdrawn"`})
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestListAndCategories(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		a := announcement(i)
		if i%2 == 0 {
			a.Category = "Examination"
		} else {
			a.Category = "Result"
		}
		require.NoError(t, s.Upsert(ctx, a))
	}

	all, err := s.List(ctx, "", 50)
	require.NoError(t, err)
	require.Len(t, all, 4)
	// Newest first.
	require.Greater(t, all[0].ID, all[1].ID)

	exams, err := s.List(ctx, "Examination", 50)
	require.NoError(t, err)
	require.Len(t, exams, 2)

	limited, err := s.List(ctx, "", 3)
	require.NoError(t, err)
	require.Len(t, limited, 3)

	cats, err := s.Categories(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"Examination", "Result"}, cats)
}
