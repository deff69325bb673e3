package fetch

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"hashclip/pkg/candidate"
	"hashclip/pkg/errors"
	"hashclip/pkg/logger"
	"hashclip/pkg/media"
	"hashclip/pkg/metadata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newsCandidate() candidate.Candidate {
	return candidate.Candidate{
		ID:          "1790000000000000001",
		URL:         "https://twitter.com/newsdesk/status/1790000000000000001",
		Author:      "newsdesk",
		Likes:       15,
		CreatedAt:   time.Date(2025, 5, 12, 18, 30, 0, 0, time.UTC),
		TextExcerpt: "breaking",
	}
}

func batch(n int) []candidate.Candidate {
	out := make([]candidate.Candidate, n)
	for i := range out {
		id := fmt.Sprintf("%d", 500+i)
		out[i] = candidate.Candidate{
			ID:        id,
			URL:       "https://twitter.com/author" + id + "/status/" + id,
			Author:    "author" + id,
			Likes:     20 + i,
			CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		}
	}
	return out
}

func newOrchestrator(t *testing.T, backend media.Backend, workers int) (*Orchestrator, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "downloaded_videos")
	return NewOrchestrator(backend, Options{
		OutputDir:       dir,
		Concurrency:     workers,
		ProbeTimeout:    time.Second,
		TransferTimeout: time.Second,
	}, logger.NewNopLogger()), dir
}

func TestRunSkipsLowViews(t *testing.T) {
	c := newsCandidate()
	backend := media.NewMockBackend(map[string]int64{c.URL: 50})
	orch, _ := newOrchestrator(t, backend, 3)

	result, err := orch.Run(context.Background(), []candidate.Candidate{c}, 100)
	require.NoError(t, err)

	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, StatusSkippedLowViews, result.Outcomes[0].Status)
	assert.Equal(t, int64(50), result.Outcomes[0].ViewCount)
	assert.Empty(t, result.Outcomes[0].Path)

	assert.Equal(t, 1, result.Summary.Total)
	assert.Equal(t, 0, result.Summary.Downloaded)
	assert.Equal(t, 1, result.Summary.Skipped())
	assert.Empty(t, backend.Fetches())
}

func TestRunDownloads(t *testing.T) {
	c := newsCandidate()
	backend := media.NewMockBackend(map[string]int64{c.URL: 200})
	backend.WriteFiles = true
	orch, dir := newOrchestrator(t, backend, 3)

	result, err := orch.Run(context.Background(), []candidate.Candidate{c}, 100)
	require.NoError(t, err)

	outcome := result.Outcomes[0]
	require.Equal(t, StatusDownloaded, outcome.Status)
	assert.True(t, outcome.Downloaded())
	assert.Equal(t, int64(200), outcome.ViewCount)
	assert.Equal(t, filepath.Join(dir, "newsdesk_20250512_likes15_views200.mp4"), outcome.Path)
	assert.Regexp(t, regexp.MustCompile(`^newsdesk_\d{8}_likes15_views200\.[a-z0-9]+$`), filepath.Base(outcome.Path))

	_, err = os.Stat(outcome.Path)
	assert.NoError(t, err)

	assert.Equal(t, Summary{Total: 1, Downloaded: 1}, result.Summary)
	abs, _ := filepath.Abs(dir)
	assert.Equal(t, abs, result.OutputDir)
}

func TestRunWritesMetadata(t *testing.T) {
	c := newsCandidate()
	low := batch(1)[0]
	backend := media.NewMockBackend(map[string]int64{c.URL: 300, low.URL: 5})
	backend.WriteFiles = true

	orch := NewOrchestrator(backend, Options{
		OutputDir:     t.TempDir(),
		Concurrency:   2,
		WriteMetadata: true,
		RunID:         "run-42",
	}, logger.NewNopLogger())

	result, err := orch.Run(context.Background(), []candidate.Candidate{c, low}, 100)
	require.NoError(t, err)

	downloaded := result.Outcomes[0]
	require.True(t, downloaded.Downloaded())
	meta, err := metadata.Load(downloaded.Path)
	require.NoError(t, err)
	assert.Equal(t, c.URL, meta.URL)
	assert.Equal(t, int64(300), meta.Views)
	assert.Equal(t, "run-42", meta.RunID)

	assert.Equal(t, StatusSkippedLowViews, result.Outcomes[1].Status)
	entries, err := os.ReadDir(result.OutputDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRunCreatesOutputDirectory(t *testing.T) {
	orch, dir := newOrchestrator(t, media.NewMockBackend(nil), 1)

	_, err := orch.Run(context.Background(), nil, 100)
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestRunDirectoryCreationFailed(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	backend := media.NewMockBackend(nil)
	orch := NewOrchestrator(backend, Options{OutputDir: filepath.Join(blocker, "videos")}, logger.NewNopLogger())

	result, err := orch.Run(context.Background(), batch(3), 0)
	assert.Nil(t, result)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindDirectoryCreationFailed))
	assert.Empty(t, backend.Probes(), "no candidate may be processed")
}

func TestRunFailureIsolation(t *testing.T) {
	candidates := batch(5)
	views := map[string]int64{}
	for i, c := range candidates {
		views[c.URL] = int64(80 + i*10) // 80, 90, 100, 110, 120
	}

	healthy := media.NewMockBackend(views)
	baseline, _ := newOrchestrator(t, healthy, 2)
	want, err := baseline.Run(context.Background(), append(append([]candidate.Candidate{}, candidates[:1]...), candidates[2:]...), 100)
	require.NoError(t, err)

	broken := media.NewMockBackend(views)
	broken.ProbeErrors[candidates[1].URL] = stderrors.New("This tweet is unavailable")
	orch, _ := newOrchestrator(t, broken, 2)

	got, err := orch.Run(context.Background(), candidates, 100)
	require.NoError(t, err)
	require.Len(t, got.Outcomes, 5)

	failed := got.Outcomes[1]
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Contains(t, failed.Reason, "This tweet is unavailable")
	assert.True(t, errors.IsKind(failed.Err, errors.KindProbeFailed))

	others := append(append([]Outcome{}, got.Outcomes[:1]...), got.Outcomes[2:]...)
	require.Len(t, others, len(want.Outcomes))
	for i := range others {
		assert.Equal(t, want.Outcomes[i].Status, others[i].Status)
		assert.Equal(t, want.Outcomes[i].ViewCount, others[i].ViewCount)
		assert.Equal(t, filepath.Base(want.Outcomes[i].Path), filepath.Base(others[i].Path))
	}

	assert.Equal(t, Summary{Total: 5, Downloaded: 3, SkippedLowViews: 1, Failed: 1}, got.Summary)
	assert.Equal(t, 2, got.Summary.Skipped())
}

func TestRunTransferFailure(t *testing.T) {
	candidates := batch(3)
	backend := media.NewMockBackend(map[string]int64{
		candidates[0].URL: 1000, candidates[1].URL: 1000, candidates[2].URL: 1000,
	})
	backend.FetchErrors[candidates[0].URL] = stderrors.New("HTTP Error 404")
	orch, _ := newOrchestrator(t, backend, 1)

	result, err := orch.Run(context.Background(), candidates, 100)
	require.NoError(t, err)

	assert.Equal(t, StatusFailed, result.Outcomes[0].Status)
	assert.True(t, errors.IsKind(result.Outcomes[0].Err, errors.KindTransferFailed))
	assert.Equal(t, StatusDownloaded, result.Outcomes[1].Status)
	assert.Equal(t, StatusDownloaded, result.Outcomes[2].Status)
	assert.Equal(t, 2, result.Summary.Downloaded)
}

func TestRunOutcomesPartitionByViews(t *testing.T) {
	candidates := batch(20)
	views := map[string]int64{}
	backend := media.NewMockBackend(views)
	for i, c := range candidates {
		views[c.URL] = int64(i * 37 % 300)
		if i%7 == 3 {
			backend.ProbeErrors[c.URL] = stderrors.New("gone")
		}
	}
	orch, _ := newOrchestrator(t, backend, 4)

	const minViews = 150
	result, err := orch.Run(context.Background(), candidates, minViews)
	require.NoError(t, err)
	require.Len(t, result.Outcomes, len(candidates))

	for i, o := range result.Outcomes {
		assert.Equal(t, candidates[i], o.Candidate)
		switch o.Status {
		case StatusDownloaded:
			assert.GreaterOrEqual(t, o.ViewCount, int64(minViews))
		case StatusSkippedLowViews:
			assert.Less(t, o.ViewCount, int64(minViews))
		case StatusFailed:
			assert.NotEmpty(t, o.Reason)
		default:
			t.Errorf("unexpected status %q", o.Status)
		}
	}

	s := result.Summary
	assert.Equal(t, s.Total, s.Downloaded+s.SkippedLowViews+s.Failed)
}

func TestRunIdempotentNames(t *testing.T) {
	candidates := batch(4)
	views := map[string]int64{}
	for _, c := range candidates {
		views[c.URL] = 999
	}
	dir := filepath.Join(t.TempDir(), "out")

	names := func() []string {
		backend := media.NewMockBackend(views)
		backend.WriteFiles = true
		orch := NewOrchestrator(backend, Options{OutputDir: dir, Concurrency: 3}, logger.NewNopLogger())
		result, err := orch.Run(context.Background(), candidates, 100)
		require.NoError(t, err)

		var out []string
		for _, o := range result.Outcomes {
			out = append(out, o.Path)
		}
		return out
	}

	first := names()
	second := names()
	assert.Equal(t, first, second)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestRunCollidingPostsKeepTheirNames(t *testing.T) {
	candidates := batch(3)
	for i := range candidates {
		candidates[i].Author = "x"
		candidates[i].Likes = 20
	}
	views := map[string]int64{}
	for _, c := range candidates {
		views[c.URL] = 500
	}

	run := func(slow string) []string {
		backend := media.NewMockBackend(views)
		if slow != "" {
			backend.ProbeDelays[slow] = 50 * time.Millisecond
		}
		orch, _ := newOrchestrator(t, backend, 3)
		result, err := orch.Run(context.Background(), candidates, 100)
		require.NoError(t, err)

		var out []string
		for _, o := range result.Outcomes {
			out = append(out, filepath.Base(o.Path))
		}
		return out
	}

	want := []string{
		"x_20250601_likes20_views500.mp4",
		"x_20250601_likes20_views500_501.mp4",
		"x_20250601_likes20_views500_502.mp4",
	}
	assert.Equal(t, want, run(""))
	assert.Equal(t, want, run(candidates[0].URL))
	assert.Equal(t, want, run(candidates[1].URL))
}

func TestRunReportsEveryOutcome(t *testing.T) {
	candidates := batch(6)
	backend := media.NewMockBackend(nil)
	backend.ProbeErrors[candidates[2].URL] = stderrors.New("boom")

	var mu sync.Mutex
	var reported []Outcome
	log := logger.NewTestLogger()
	orch := NewOrchestrator(backend, Options{
		OutputDir:   t.TempDir(),
		Concurrency: 3,
		Reporter: func(o Outcome) {
			mu.Lock()
			reported = append(reported, o)
			mu.Unlock()
		},
	}, log)

	_, err := orch.Run(context.Background(), candidates, 1)
	require.NoError(t, err)

	assert.Len(t, reported, 6)

	failures := log.GetMessagesByLevel("ERROR")
	require.Len(t, failures, 1)
	assert.Equal(t, "Post failed", failures[0].Message)
	assert.Equal(t, candidates[2].URL, failures[0].Fields["url"])
	assert.Equal(t, candidates[2].Author, failures[0].Fields["author"])
	assert.True(t, log.HasMessage("Fetch finished"))
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Outcome{
		{Status: StatusDownloaded},
		{Status: StatusDownloaded},
		{Status: StatusSkippedLowViews},
		{Status: StatusFailed},
	})
	assert.Equal(t, Summary{Total: 4, Downloaded: 2, SkippedLowViews: 1, Failed: 1}, s)
	assert.Equal(t, 2, s.Skipped())
	assert.Equal(t, Summary{}, Summarize(nil))
}
