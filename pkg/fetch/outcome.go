package fetch

import (
	"hashclip/internal/downloader"
	"hashclip/pkg/candidate"
)

// Status tags an Outcome
type Status = downloader.Status

const (
	StatusDownloaded      = downloader.StatusDownloaded
	StatusSkippedLowViews = downloader.StatusSkippedLowViews
	StatusFailed          = downloader.StatusFailed
)

// Outcome is the result for one candidate. Which fields are set depends on Status:
//
//	downloaded         Path, ViewCount
//	skipped_low_views  ViewCount
//	failed             Reason, Err
type Outcome struct {
	Candidate candidate.Candidate
	Status    Status
	Path      string
	ViewCount int64
	Reason    string
	Err       error
}

// Downloaded reports whether the video was saved
func (o Outcome) Downloaded() bool { return o.Status == StatusDownloaded }

func outcomeFrom(r downloader.DownloadResult) Outcome {
	o := Outcome{
		Candidate: r.Job.Candidate,
		Status:    r.Status,
	}
	switch r.Status {
	case StatusDownloaded:
		o.Path = r.Path
		o.ViewCount = r.ViewCount
	case StatusSkippedLowViews:
		o.ViewCount = r.ViewCount
	default:
		o.Status = StatusFailed
		o.Err = r.Error
		if r.Error != nil {
			o.Reason = r.Error.Error()
		} else {
			o.Reason = "unknown error"
		}
	}
	return o
}

// Summary tallies the outcomes of a run
type Summary struct {
	Total           int
	Downloaded      int
	SkippedLowViews int
	Failed          int
}

// Skipped counts every candidate that was not downloaded
func (s Summary) Skipped() int {
	return s.Total - s.Downloaded
}

// Summarize tallies outcomes
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		switch o.Status {
		case StatusDownloaded:
			s.Downloaded++
		case StatusSkippedLowViews:
			s.SkippedLowViews++
		default:
			s.Failed++
		}
	}
	return s
}

// Result is what a run of the orchestrator returns
type Result struct {
	// Outcomes has one entry per candidate, in candidate order
	Outcomes  []Outcome
	Summary   Summary
	OutputDir string
}
