// Package fetch decides, per candidate, whether to download its video and
// reports one outcome for every candidate.
package fetch

import (
	"context"
	"time"

	"hashclip/internal/downloader"
	"hashclip/pkg/candidate"
	"hashclip/pkg/logger"
	"hashclip/pkg/media"
	"hashclip/pkg/metadata"
	"hashclip/pkg/ratelimit"
	"hashclip/pkg/storage"
)

// Reporter receives each outcome as soon as it is known
type Reporter func(Outcome)

// Options configures an Orchestrator
type Options struct {
	OutputDir       string
	Concurrency     int
	ProbeTimeout    time.Duration
	TransferTimeout time.Duration
	// Limiter paces probe and transfer calls; nil means unlimited
	Limiter  ratelimit.Limiter
	Reporter Reporter
	// WriteMetadata saves a JSON sidecar next to every downloaded video
	WriteMetadata bool
	RunID         string
}

// Orchestrator probes candidates, skips the ones below the view threshold
// and downloads the rest
type Orchestrator struct {
	prober  *media.Prober
	fetcher *media.Fetcher
	opts    Options
	logger  logger.Logger
}

// NewOrchestrator creates an orchestrator over a media backend
func NewOrchestrator(backend media.Backend, opts Options, log logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.GetLogger()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Limiter == nil {
		opts.Limiter = ratelimit.Unlimited{}
	}
	log = log.WithField("component", "orchestrator")

	return &Orchestrator{
		prober:  media.NewProber(backend, opts.ProbeTimeout, opts.Limiter, log),
		fetcher: media.NewFetcher(backend, opts.TransferTimeout, opts.Limiter, log),
		opts:    opts,
		logger:  log,
	}
}

// Run visits every candidate exactly once. The output directory is created
// before any work starts; that is the only error Run returns. Per-candidate
// failures are recorded as Failed outcomes and never stop the batch.
func (o *Orchestrator) Run(ctx context.Context, candidates []candidate.Candidate, minViews int64) (*Result, error) {
	manager, err := storage.NewManager(o.opts.OutputDir)
	if err != nil {
		o.logger.WithError(err).ErrorWithFields("Cannot prepare output directory", map[string]interface{}{
			"output_dir": o.opts.OutputDir,
		})
		return nil, err
	}

	logger.LogComponentStart(o.logger, "orchestrator", map[string]interface{}{
		"candidates":  len(candidates),
		"min_views":   minViews,
		"concurrency": o.opts.Concurrency,
		"output_dir":  manager.GetOutputDir(),
	})

	pool := downloader.NewWorkerPool(o.opts.Concurrency, minViews, o.prober, o.fetcher, manager, o.logger)

	results := pool.Run(ctx, candidates, func(r downloader.DownloadResult) {
		outcome := outcomeFrom(r)
		logger.LogOutcome(o.logger, outcome.Candidate.URL, outcome.Candidate.Author, string(outcome.Status), outcome.ViewCount, outcome.Err)
		if outcome.Downloaded() && o.opts.WriteMetadata {
			o.writeMetadata(outcome)
		}
		if o.opts.Reporter != nil {
			o.opts.Reporter(outcome)
		}
	})

	outcomes := make([]Outcome, len(results))
	for i, r := range results {
		outcomes[i] = outcomeFrom(r)
	}

	summary := Summarize(outcomes)
	o.logger.InfoWithFields("Fetch finished", map[string]interface{}{
		"total":             summary.Total,
		"downloaded":        summary.Downloaded,
		"skipped_low_views": summary.SkippedLowViews,
		"failed":            summary.Failed,
	})

	return &Result{
		Outcomes:  outcomes,
		Summary:   summary,
		OutputDir: manager.AbsOutputDir(),
	}, nil
}

// writeMetadata saves the sidecar of a downloaded video. A failure is logged
// and leaves the outcome untouched.
func (o *Orchestrator) writeMetadata(outcome Outcome) {
	meta := metadata.New(outcome.Candidate, outcome.ViewCount, outcome.Path)
	meta.RunID = o.opts.RunID
	if err := meta.Save(outcome.Path); err != nil {
		o.logger.WithError(err).WarnWithFields("Failed to write metadata", map[string]interface{}{
			"path": outcome.Path,
		})
	}
}
