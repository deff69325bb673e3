package ui

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hashclip/pkg/candidate"
	"hashclip/pkg/fetch"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Output
	Output = &buf
	t.Cleanup(func() { Output = prev })
	return &buf
}

func TestPrintOutcome(t *testing.T) {
	c := candidate.Candidate{ID: "1", URL: "https://twitter.com/alice/status/1", Author: "alice", Likes: 15}

	tests := []struct {
		name    string
		outcome fetch.Outcome
		want    []string
	}{
		{
			name:    "downloaded",
			outcome: fetch.Outcome{Candidate: c, Status: fetch.StatusDownloaded, ViewCount: 200, Path: "/v/alice.mp4"},
			want:    []string{c.URL, "@alice", "Likes: 15, Views: 200", "/v/alice.mp4"},
		},
		{
			name:    "skipped",
			outcome: fetch.Outcome{Candidate: c, Status: fetch.StatusSkippedLowViews, ViewCount: 50},
			want:    []string{c.URL, "not enough views (50)"},
		},
		{
			name:    "failed",
			outcome: fetch.Outcome{Candidate: c, Status: fetch.StatusFailed, Reason: "probe failed"},
			want:    []string{c.URL, "probe failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureOutput(t)
			PrintOutcome(tt.outcome)
			for _, w := range tt.want {
				assert.Contains(t, buf.String(), w)
			}
		})
	}
}

func TestPrintSummary(t *testing.T) {
	t.Run("with downloads", func(t *testing.T) {
		buf := captureOutput(t)
		dir := t.TempDir()
		PrintSummary(&fetch.Result{
			Summary:   fetch.Summary{Total: 3, Downloaded: 1, SkippedLowViews: 1, Failed: 1},
			OutputDir: dir,
		})

		out := buf.String()
		assert.Contains(t, out, "Total posts found: 3")
		assert.Contains(t, out, "Videos downloaded: 1")
		assert.Contains(t, out, "Videos skipped: 2")
		assert.Contains(t, out, "1 below the view threshold, 1 failed")
		abs, err := filepath.Abs(dir)
		require.NoError(t, err)
		assert.Contains(t, out, abs)
	})

	t.Run("nothing downloaded", func(t *testing.T) {
		buf := captureOutput(t)
		PrintSummary(&fetch.Result{
			Summary:   fetch.Summary{Total: 1, SkippedLowViews: 1},
			OutputDir: "./downloaded_videos",
		})

		out := buf.String()
		assert.Contains(t, out, "Videos skipped: 1")
		assert.NotContains(t, out, "Videos saved to")
		assert.NotContains(t, out, "failed")
	})
}

func TestPrintNoMatchesAndHashtags(t *testing.T) {
	buf := captureOutput(t)
	PrintNoMatches()
	PrintHashtags([]string{"news", "#News", "video"})
	PrintCandidatesFound(2, 10, 100, "./out")

	out := buf.String()
	assert.Contains(t, out, NoMatchesMessage)
	assert.Contains(t, out, "#news, #video")
	assert.Contains(t, out, "at least 10 likes")
	assert.Contains(t, out, "at least 100 views to ./out")
}

type recordingSender struct {
	titles   []string
	messages []string
	err      error
}

func (r *recordingSender) Send(title, message string) error {
	r.titles = append(r.titles, title)
	r.messages = append(r.messages, message)
	return r.err
}

func TestNotifier(t *testing.T) {
	sender := &recordingSender{err: errors.New("no display")}
	n := NewNotifierWithSender(sender)

	n.NotifyRun(fetch.Summary{Total: 4, Downloaded: 2})
	n.NotifyRun(fetch.Summary{})
	n.NotifyError(errors.New("search failed"))

	require.Len(t, sender.messages, 3)
	assert.Equal(t, "2 of 4 videos downloaded", sender.messages[0])
	assert.Equal(t, NoMatchesMessage, sender.messages[1])
	assert.Equal(t, "hashclip run failed", sender.titles[2])

	NewNotifierWithSender(nil).NotifyRun(fetch.Summary{})
}
