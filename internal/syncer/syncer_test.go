package syncer

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/anacondy/examwatch/internal/models"
	"github.com/anacondy/examwatch/internal/store"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	candidates []models.CandidateLink
	err        error
	block      chan struct{}
}

func (f *stubFetcher) Fetch(ctx context.Context) ([]models.CandidateLink, error) {
	if f.block != nil {
		<-f.block
	}
	return f.candidates, f.err
}

type stubAnalyzer struct {
	results map[string]*models.AnalysisResult
	errs    map[string]error
}

func (a *stubAnalyzer) Analyze(ctx context.Context, url, title string, force bool) (*models.AnalysisResult, error) {
	if err, ok := a.errs[url]; ok {
		return nil, err
	}
	if res, ok := a.results[url]; ok {
		return res, nil
	}
	return &models.AnalysisResult{URL: url}, nil
}

// blockingAnalyzer parks its first call until released, signalling when the
// worker is running.
type blockingAnalyzer struct {
	started chan struct{}
	release chan struct{}
}

func (a *blockingAnalyzer) Analyze(ctx context.Context, url, title string, force bool) (*models.AnalysisResult, error) {
	close(a.started)
	<-a.release
	return &models.AnalysisResult{URL: url}, nil
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func candidate(i int) models.CandidateLink {
	return models.CandidateLink{
		Title:    fmt.Sprintf("Notice %d", i),
		URL:      fmt.Sprintf("https://example.edu/docs/%d.pdf", i),
		DateText: "15-01-2024",
	}
}

func TestRunSyncStoresAnalyzedAndUnanalyzedCandidates(t *testing.T) {
	s := newTestStore(t)

	c1, c2 := candidate(1), candidate(2)
	fetcher := &stubFetcher{candidates: []models.CandidateLink{c1, c2}}
	analyzer := &stubAnalyzer{
		results: map[string]*models.AnalysisResult{
			c1.URL: {
				URL:      c1.URL,
				Summary:  "Examination | Papers: CS101",
				Category: "Examination",
			},
		},
		errs: map[string]error{
			c2.URL: errors.New("download: connection refused"),
		},
	}

	o := New(fetcher, analyzer, s, Options{Workers: 2, MaxAnnouncements: 470})

	stats, err := o.RunSync(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, stats.Processed)
	require.Equal(t, 2, stats.Total)
	require.Equal(t, 470, stats.MaxLimit)

	ctx := context.Background()
	enriched, err := s.GetByURL(ctx, c1.URL)
	require.NoError(t, err)
	require.Equal(t, "Examination", enriched.Category)

	// The failed candidate is still listed, just without enrichment.
	bare, err := s.GetByURL(ctx, c2.URL)
	require.NoError(t, err)
	require.Empty(t, bare.Category)
	require.Empty(t, bare.Summary)
}

func TestRunSyncFetchFailureStillReportsCleanupStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, s.Upsert(ctx, models.Announcement{
			Title: fmt.Sprintf("Old %d", i), URL: fmt.Sprintf("https://example.edu/old/%d", i),
		}))
	}

	fetcher := &stubFetcher{err: errors.New("connect: network unreachable")}
	o := New(fetcher, &stubAnalyzer{}, s, Options{Workers: 2, MaxAnnouncements: 3})

	stats, err := o.RunSync(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, stats.Processed)
	require.Contains(t, stats.Message, "fetch failed")
	require.Equal(t, 2, stats.Deleted)
	require.Equal(t, 3, stats.Total)
}

func TestRunSyncEnforcesRetentionCap(t *testing.T) {
	s := newTestStore(t)

	var links []models.CandidateLink
	for i := 1; i <= 10; i++ {
		links = append(links, candidate(i))
	}
	o := New(&stubFetcher{candidates: links}, &stubAnalyzer{}, s, Options{Workers: 4, MaxAnnouncements: 6})

	stats, err := o.RunSync(context.Background())
	require.NoError(t, err)
	require.Equal(t, 10, stats.Processed)
	require.Equal(t, 4, stats.Deleted)
	require.Equal(t, 6, stats.Total)
}

func TestRunSyncRejectsConcurrentCycle(t *testing.T) {
	s := newTestStore(t)

	block := make(chan struct{})
	fetcher := &stubFetcher{block: block}
	o := New(fetcher, &stubAnalyzer{}, s, Options{Workers: 1, MaxAnnouncements: 470})

	done := make(chan error, 1)
	go func() {
		_, err := o.RunSync(context.Background())
		done <- err
	}()

	// Wait for the first cycle to reach the blocked fetch.
	require.Eventually(t, func() bool {
		_, err := o.RunSync(context.Background())
		return errors.Is(err, ErrSyncInFlight)
	}, time.Second, 5*time.Millisecond)

	close(block)
	require.NoError(t, <-done)

	// With the first cycle finished, a new one is accepted again.
	_, err := o.RunSync(context.Background())
	require.NoError(t, err)
}

func TestAnalyzeAllWaitsForInFlightWorkersOnCancel(t *testing.T) {
	s := newTestStore(t)

	analyzer := &blockingAnalyzer{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	o := New(&stubFetcher{}, analyzer, s, Options{Workers: 1, MaxAnnouncements: 470})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	links := []models.CandidateLink{candidate(1), candidate(2)}

	done := make(chan []analyzed, 1)
	go func() {
		done <- o.analyzeAll(ctx, links)
	}()

	// The single worker is parked inside Analyze; the second dispatch is
	// waiting on the semaphore. Cancelling must not hand the results slice
	// back while that worker can still write to it.
	<-analyzer.started
	cancel()

	select {
	case <-done:
		t.Fatal("analyzeAll returned while a worker was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(analyzer.release)
	results := <-done
	require.Len(t, results, 2)
	require.NotNil(t, results[0].result)
	require.Nil(t, results[1].result)
	require.Equal(t, links[1], results[1].link)
}

func TestRunSyncSkipsAnalysisForKnownURLs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := candidate(1)
	require.NoError(t, s.Upsert(ctx, models.Announcement{
		Title: c.Title, URL: c.URL, DateText: c.DateText,
		Summary: "Examination | Papers: CS101", Category: "Examination",
	}))

	// The analyzer would error for this URL; a known URL must not reach it.
	analyzer := &stubAnalyzer{errs: map[string]error{c.URL: errors.New("must not be called")}}
	o := New(&stubFetcher{candidates: []models.CandidateLink{c}}, analyzer, s, Options{Workers: 1, MaxAnnouncements: 470})

	stats, err := o.RunSync(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Processed)

	got, err := s.GetByURL(ctx, c.URL)
	require.NoError(t, err)
	require.Equal(t, "Examination", got.Category)
}
