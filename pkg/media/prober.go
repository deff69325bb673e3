package media

import (
	"context"
	"time"

	"hashclip/pkg/errors"
	"hashclip/pkg/logger"
	"hashclip/pkg/ratelimit"
	"hashclip/pkg/storage"
)

// Prober resolves view counts without transferring media
type Prober struct {
	backend Backend
	timeout time.Duration
	limiter ratelimit.Limiter
	logger  logger.Logger
}

// NewProber creates a prober; a zero timeout leaves calls bounded only by ctx
func NewProber(backend Backend, timeout time.Duration, limiter ratelimit.Limiter, log logger.Logger) *Prober {
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Prober{backend: backend, timeout: timeout, limiter: limiter, logger: log}
}

// Probe returns the media metadata for url. An unknown view count is 0 and
// an unknown extension is storage.DefaultExt. Any backend failure is
// returned as a ProbeFailed error.
func (p *Prober) Probe(ctx context.Context, url string) (Metadata, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return Metadata{}, errors.ProbeFailed(url, err)
	}

	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	meta, err := p.backend.Probe(ctx, url)
	if err != nil {
		return Metadata{}, errors.ProbeFailed(url, err)
	}

	meta.Path = ""
	meta.Ext = storage.NormalizeExt(meta.Ext)
	if meta.ViewCount < 0 {
		meta.ViewCount = 0
	}

	p.logger.DebugWithFields("probe completed", map[string]interface{}{
		"url":      url,
		"views":    meta.ViewCount,
		"ext":      meta.Ext,
		"duration": time.Since(start),
	})
	return meta, nil
}

// Fetcher downloads media to a prepared output base
type Fetcher struct {
	backend Backend
	timeout time.Duration
	limiter ratelimit.Limiter
	logger  logger.Logger
}

// NewFetcher creates a fetcher; a zero timeout leaves calls bounded only by ctx
func NewFetcher(backend Backend, timeout time.Duration, limiter ratelimit.Limiter, log logger.Logger) *Fetcher {
	if limiter == nil {
		limiter = ratelimit.Unlimited{}
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Fetcher{backend: backend, timeout: timeout, limiter: limiter, logger: log}
}

// Fetch downloads url to base plus the backend's extension. The returned
// metadata always carries the final path. Failures are TransferFailed errors.
func (f *Fetcher) Fetch(ctx context.Context, url, base string) (Metadata, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return Metadata{}, errors.TransferFailed(url, err)
	}

	ctx, cancel := withTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	meta, err := f.backend.Fetch(ctx, url, storage.Template(base))
	if err != nil {
		return Metadata{}, errors.TransferFailed(url, err)
	}

	meta.Ext = storage.NormalizeExt(meta.Ext)
	if meta.Path == "" {
		meta.Path = storage.PathFor(base, meta.Ext)
	}

	f.logger.DebugWithFields("transfer completed", map[string]interface{}{
		"url":      url,
		"path":     meta.Path,
		"duration": time.Since(start),
	})
	return meta, nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
