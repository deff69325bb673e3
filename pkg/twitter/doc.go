// Package twitter provides a minimal client for the X API v2 recent-search endpoint.
//
// The client authenticates with an app-only bearer token and classifies
// failures into *Error values:
//
//	client := twitter.NewClient(cfg.Twitter, log)
//	resp, err := client.SearchRecent(ctx, twitter.NewSearchParams(q, 100))
//	if err != nil {
//	    var apiErr *twitter.Error
//	    if errors.As(err, &apiErr) && apiErr.Type == twitter.ErrorTypeRateLimit {
//	        // wait for the window to reset
//	    }
//	}
//
// Authors and media referenced by results are joined through resp.Includes.
package twitter
