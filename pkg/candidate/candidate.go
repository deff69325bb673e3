// Package candidate runs the hashtag search and reduces its results to
// posts worth probing: enough likes and at least one media attachment.
package candidate

import (
	"context"
	"time"
	"unicode/utf8"

	"hashclip/pkg/errors"
	"hashclip/pkg/logger"
	"hashclip/pkg/twitter"
)

const (
	// UnknownAuthor is used when the author is missing from the response includes
	UnknownAuthor = "unknown"

	// ExcerptLength is the number of characters kept from the post body
	ExcerptLength = 50
)

// Candidate is a post that passed the likes and media filters
type Candidate struct {
	ID          string
	URL         string
	Author      string
	Likes       int
	CreatedAt   time.Time
	TextExcerpt string
}

// Searcher executes a single recent-search request
type Searcher interface {
	SearchRecent(ctx context.Context, params twitter.SearchParams) (*twitter.SearchResponse, error)
}

// Extractor turns search results into candidates
type Extractor struct {
	searcher   Searcher
	maxResults int
	logger     logger.Logger
}

// NewExtractor creates an extractor requesting up to maxResults posts per search
func NewExtractor(searcher Searcher, maxResults int, log logger.Logger) *Extractor {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Extractor{
		searcher:   searcher,
		maxResults: twitter.ClampResults(maxResults),
		logger:     log.WithField("component", "extractor"),
	}
}

// Extract runs query once and returns the posts with at least minLikes likes
// and a media attachment, in response order. No results is not an error.
func (e *Extractor) Extract(ctx context.Context, query string, minLikes int) ([]Candidate, error) {
	e.logger.InfoWithFields("Searching posts", map[string]interface{}{
		"query":       query,
		"max_results": e.maxResults,
	})

	resp, err := e.searcher.SearchRecent(ctx, twitter.NewSearchParams(query, e.maxResults))
	if err != nil {
		return nil, errors.SearchFailed("recent search request failed", err)
	}
	if resp == nil || len(resp.Data) == 0 {
		e.logger.Info("Search returned no posts")
		return []Candidate{}, nil
	}

	users := resp.Includes.Usernames()
	candidates := make([]Candidate, 0, len(resp.Data))
	var lowLikes, noMedia int

	for _, tweet := range resp.Data {
		likes := tweet.LikeCount()
		if likes < minLikes {
			lowLikes++
			continue
		}
		if !tweet.HasMedia() {
			noMedia++
			continue
		}
		if tweet.ID == "" {
			e.logger.Warn("Skipping result without an id")
			continue
		}

		author, ok := users[tweet.AuthorID]
		if !ok {
			author = UnknownAuthor
		}

		candidates = append(candidates, Candidate{
			ID:          tweet.ID,
			URL:         twitter.StatusURL(author, tweet.ID),
			Author:      author,
			Likes:       likes,
			CreatedAt:   tweet.CreatedAt,
			TextExcerpt: Excerpt(tweet.Text),
		})
	}

	e.logger.InfoWithFields("Candidates extracted", map[string]interface{}{
		"results":    len(resp.Data),
		"candidates": len(candidates),
		"low_likes":  lowLikes,
		"no_media":   noMedia,
		"min_likes":  minLikes,
	})

	return candidates, nil
}

// Excerpt truncates text to ExcerptLength characters followed by "..."
func Excerpt(text string) string {
	if utf8.RuneCountInString(text) <= ExcerptLength {
		return text
	}
	return string([]rune(text)[:ExcerptLength]) + "..."
}
