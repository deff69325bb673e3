// Package scraper runs one hashtag-to-archive pass.
//
// A run builds the search query from the configured hashtags, fetches one
// page of recent posts with video, keeps the posts with enough likes, probes
// each survivor for its view count and downloads the ones with enough
// views.
//
// Usage:
//
//	s, err := scraper.New(cfg)
//	if err != nil {
//	    return err
//	}
//	s.SetEvents(scraper.Events{OnOutcome: ui.PrintOutcome})
//
//	report, err := s.Run(ctx)
//	if err != nil {
//	    return err // search failed or output directory unusable
//	}
//	if report.NoMatches() {
//	    fmt.Println("No posts found matching the criteria.")
//	}
//
// Each run is tagged with a run_id in every log line it produces.
package scraper
