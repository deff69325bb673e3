package twitter

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	// BaseURL is the X API v2 root
	BaseURL = "https://api.twitter.com/2"

	// RecentSearchEndpoint searches posts from the last seven days
	RecentSearchEndpoint = "/tweets/search/recent"

	// MinResults and MaxResults bound max_results on recent search
	MinResults = 10
	MaxResults = 100
)

var (
	// DefaultTweetFields are requested for every search
	DefaultTweetFields = []string{"id", "text", "created_at", "author_id", "public_metrics", "attachments"}

	// DefaultExpansions join authors and media into includes
	DefaultExpansions = []string{"author_id", "attachments.media_keys"}

	// DefaultMediaFields are requested for expanded media
	DefaultMediaFields = []string{"type", "preview_image_url", "url"}

	// DefaultUserFields are requested for expanded authors
	DefaultUserFields = []string{"username"}
)

// SearchParams describes one recent-search request
type SearchParams struct {
	Query       string
	MaxResults  int
	TweetFields []string
	Expansions  []string
	MediaFields []string
	UserFields  []string
}

// NewSearchParams returns params for query with the default field set
func NewSearchParams(query string, maxResults int) SearchParams {
	return SearchParams{
		Query:       query,
		MaxResults:  maxResults,
		TweetFields: DefaultTweetFields,
		Expansions:  DefaultExpansions,
		MediaFields: DefaultMediaFields,
		UserFields:  DefaultUserFields,
	}
}

// ClampResults keeps n within the range accepted by recent search
func ClampResults(n int) int {
	if n < MinResults {
		return MinResults
	}
	if n > MaxResults {
		return MaxResults
	}
	return n
}

// Values encodes the params as a query string
func (p SearchParams) Values() url.Values {
	v := url.Values{}
	v.Set("query", p.Query)
	v.Set("max_results", strconv.Itoa(ClampResults(p.MaxResults)))
	if len(p.TweetFields) > 0 {
		v.Set("tweet.fields", strings.Join(p.TweetFields, ","))
	}
	if len(p.Expansions) > 0 {
		v.Set("expansions", strings.Join(p.Expansions, ","))
	}
	if len(p.MediaFields) > 0 {
		v.Set("media.fields", strings.Join(p.MediaFields, ","))
	}
	if len(p.UserFields) > 0 {
		v.Set("user.fields", strings.Join(p.UserFields, ","))
	}
	return v
}

// GetSearchURL constructs the recent-search URL under baseURL
func GetSearchURL(baseURL string, p SearchParams) string {
	return strings.TrimRight(baseURL, "/") + RecentSearchEndpoint + "?" + p.Values().Encode()
}

// StatusURL returns the public URL of a post
func StatusURL(author, id string) string {
	return "https://twitter.com/" + url.PathEscape(author) + "/status/" + url.PathEscape(id)
}
