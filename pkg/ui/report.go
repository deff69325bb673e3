package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"hashclip/pkg/fetch"
	"hashclip/pkg/query"
)

// NoMatchesMessage is printed when the likes filter leaves nothing to fetch
const NoMatchesMessage = "No posts found matching the criteria."

// PrintHashtags announces the hashtags of a run
func PrintHashtags(tags []string) {
	normalized := query.Hashtags(tags)
	for i, tag := range normalized {
		normalized[i] = "#" + tag
	}
	PrintInfo("Hashtags", strings.Join(normalized, ", "))
}

// PrintCandidatesFound announces how many posts passed the likes filter
func PrintCandidatesFound(n, minLikes int, minViews int64, outputDir string) {
	fmt.Fprintf(Output, "\nFound %s posts with videos and at least %d likes.\n", Green(fmt.Sprintf("%d", n)), minLikes)
	fmt.Fprintf(Output, "Downloading videos with at least %d views to %s\n", minViews, outputDir)
}

// PrintNoMatches reports an empty candidate list
func PrintNoMatches() {
	PrintWarning(NoMatchesMessage)
}

// PrintOutcome prints the result for one post
func PrintOutcome(o fetch.Outcome) {
	c := o.Candidate
	switch o.Status {
	case fetch.StatusDownloaded:
		fmt.Fprintf(Output, "%s %s\n", Green("✓"), c.URL)
		fmt.Fprintf(Output, "  - Author: @%s\n", c.Author)
		fmt.Fprintf(Output, "  - Likes: %d, Views: %d\n", c.Likes, o.ViewCount)
		fmt.Fprintf(Output, "  - Saved: %s\n", Dim(o.Path))
	case fetch.StatusSkippedLowViews:
		fmt.Fprintf(Output, "%s %s %s\n", Yellow("↓"), c.URL, Dim(fmt.Sprintf("not enough views (%d)", o.ViewCount)))
	default:
		fmt.Fprintf(Output, "%s %s %s\n", Red("✗"), c.URL, Red(o.Reason))
	}
}

// PrintSummary prints the run totals, and the absolute output directory when
// at least one video was saved.
func PrintSummary(result *fetch.Result) {
	s := result.Summary

	fmt.Fprintln(Output)
	PrintHighlight("Download summary:")
	fmt.Fprintf(Output, "- Total posts found: %d\n", s.Total)
	fmt.Fprintf(Output, "- Videos downloaded: %d\n", s.Downloaded)
	fmt.Fprintf(Output, "- Videos skipped: %d\n", s.Skipped())
	if s.Failed > 0 {
		fmt.Fprintf(Output, "  (%d below the view threshold, %d failed)\n", s.SkippedLowViews, s.Failed)
	}

	if s.Downloaded > 0 {
		dir := result.OutputDir
		if abs, err := filepath.Abs(dir); err == nil {
			dir = abs
		}
		fmt.Fprintf(Output, "\nVideos saved to: %s\n", Cyan(dir))
	}
}
