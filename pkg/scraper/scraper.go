package scraper

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"

	"hashclip/pkg/candidate"
	"hashclip/pkg/config"
	"hashclip/pkg/fetch"
	"hashclip/pkg/logger"
	"hashclip/pkg/media"
	"hashclip/pkg/query"
	"hashclip/pkg/ratelimit"
	"hashclip/pkg/twitter"
)

// ErrMissingToken is returned when no bearer token was configured
var ErrMissingToken = stderrors.New("bearer token is required")

// Events lets callers follow a run as it progresses. Every hook is optional.
type Events struct {
	OnQuery      func(query string)
	OnCandidates func(candidates []candidate.Candidate)
	OnOutcome    fetch.Reporter
}

// Report describes one run
type Report struct {
	RunID      string
	Query      string
	Candidates []candidate.Candidate
	// Result is nil when no candidate matched and nothing was fetched
	Result *fetch.Result
}

// NoMatches reports whether the search produced no candidates
func (r *Report) NoMatches() bool {
	return len(r.Candidates) == 0
}

// Scraper runs the search, extract and fetch stages for one configuration
type Scraper struct {
	searcher candidate.Searcher
	backend  media.Backend
	config   *config.Config
	logger   logger.Logger
	events   Events
}

// New creates a Scraper talking to the X API and yt-dlp
func New(cfg *config.Config) (*Scraper, error) {
	if cfg.Twitter.BearerToken == "" {
		return nil, ErrMissingToken
	}

	log := logger.GetLogger()
	client := twitter.NewClient(cfg.Twitter, log)
	backend := media.NewYtDlp(cfg.Download.Format, log)
	if cfg.Download.Executable != "" {
		backend.SetExecutable(cfg.Download.Executable)
	}

	return NewWithDeps(cfg, client, backend, log), nil
}

// NewWithDeps creates a Scraper over the given search client and media backend
func NewWithDeps(cfg *config.Config, searcher candidate.Searcher, backend media.Backend, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Scraper{
		searcher: searcher,
		backend:  backend,
		config:   cfg,
		logger:   log,
	}
}

// SetEvents installs progress hooks
func (s *Scraper) SetEvents(events Events) {
	s.events = events
}

// Run performs one search and downloads the qualifying videos. A failed
// search or an unusable output directory abort the run; individual
// candidates never do.
func (s *Scraper) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	log := s.logger.WithField("run_id", report.RunID)

	q, err := query.Build(s.config.Search.Hashtags)
	if err != nil {
		return report, err
	}
	report.Query = q
	if s.events.OnQuery != nil {
		s.events.OnQuery(q)
	}

	log.InfoWithFields("Run started", map[string]interface{}{
		"query":     q,
		"min_likes": s.config.Filter.MinLikes,
		"min_views": s.config.Filter.MinViews,
	})

	extractor := candidate.NewExtractor(s.searcher, s.config.Search.MaxResults, log)
	candidates, err := extractor.Extract(ctx, q, s.config.Filter.MinLikes)
	if err != nil {
		log.WithError(err).Error("Search failed")
		return report, err
	}
	report.Candidates = candidates
	if s.events.OnCandidates != nil {
		s.events.OnCandidates(candidates)
	}

	if len(candidates) == 0 {
		log.Info("No posts matched the criteria")
		return report, nil
	}

	if s.config.Download.InstallBackend {
		if installer, ok := s.backend.(BackendInstaller); ok {
			if err := installer.Install(ctx); err != nil {
				return report, fmt.Errorf("failed to prepare media backend: %w", err)
			}
		}
	}

	orchestrator := fetch.NewOrchestrator(s.backend, fetch.Options{
		OutputDir:       s.config.Output.Directory,
		Concurrency:     s.config.Download.Concurrency,
		ProbeTimeout:    s.config.Download.ProbeTimeout,
		TransferTimeout: s.config.Download.TransferTimeout,
		Limiter:         ratelimit.New(s.config.RateLimit.RequestsPerMinute, s.config.RateLimit.Burst),
		Reporter:        s.events.OnOutcome,
		WriteMetadata:   s.config.Output.WriteMetadata,
		RunID:           report.RunID,
	}, log)

	result, err := orchestrator.Run(ctx, candidates, s.config.Filter.MinViews)
	if err != nil {
		return report, err
	}
	report.Result = result

	return report, nil
}
