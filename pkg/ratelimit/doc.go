// Package ratelimit paces calls to the media backend.
//
// TokenBucket wraps golang.org/x/time/rate and refills at
// requestsPerMinute spread evenly over the minute. Unlimited is used when
// pacing is turned off (requests_per_minute: 0).
//
// Usage:
//
//	limiter := ratelimit.New(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
//
//	if err := limiter.Wait(ctx); err != nil {
//	    return err // context cancelled while waiting
//	}
//	// Proceed with request
//
// Pacing never retries: a failed call is reported, not repeated.
package ratelimit
