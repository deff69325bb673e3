package twitter

import "time"

// SearchResponse is the body returned by the recent-search endpoint
type SearchResponse struct {
	Data     []Tweet    `json:"data"`
	Includes Includes   `json:"includes"`
	Meta     Meta       `json:"meta"`
	Errors   []APIError `json:"errors,omitempty"`
}

// Tweet is a single search result
type Tweet struct {
	ID            string         `json:"id"`
	Text          string         `json:"text"`
	AuthorID      string         `json:"author_id"`
	CreatedAt     time.Time      `json:"created_at"`
	PublicMetrics *PublicMetrics `json:"public_metrics,omitempty"`
	Attachments   *Attachments   `json:"attachments,omitempty"`
}

// LikeCount returns the like count, or 0 when metrics were not returned
func (t Tweet) LikeCount() int {
	if t.PublicMetrics == nil {
		return 0
	}
	return t.PublicMetrics.LikeCount
}

// HasMedia reports whether the tweet references at least one media item
func (t Tweet) HasMedia() bool {
	return t.Attachments != nil && len(t.Attachments.MediaKeys) > 0
}

// PublicMetrics holds the public engagement counters of a tweet
type PublicMetrics struct {
	LikeCount       int `json:"like_count"`
	RetweetCount    int `json:"retweet_count"`
	ReplyCount      int `json:"reply_count"`
	QuoteCount      int `json:"quote_count"`
	ImpressionCount int `json:"impression_count"`
}

// Attachments lists media keys referenced by a tweet
type Attachments struct {
	MediaKeys []string `json:"media_keys"`
}

// Includes carries objects joined through expansions
type Includes struct {
	Users []User  `json:"users"`
	Media []Media `json:"media"`
}

// Usernames maps user IDs to their handles
func (i Includes) Usernames() map[string]string {
	users := make(map[string]string, len(i.Users))
	for _, u := range i.Users {
		if u.ID != "" && u.Username != "" {
			users[u.ID] = u.Username
		}
	}
	return users
}

// User is an expanded author object
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Media is an expanded media object
type Media struct {
	MediaKey        string `json:"media_key"`
	Type            string `json:"type"`
	URL             string `json:"url,omitempty"`
	PreviewImageURL string `json:"preview_image_url,omitempty"`
}

// Meta describes the returned page
type Meta struct {
	ResultCount int    `json:"result_count"`
	NewestID    string `json:"newest_id,omitempty"`
	OldestID    string `json:"oldest_id,omitempty"`
	NextToken   string `json:"next_token,omitempty"`
}

// APIError is a problem object reported in the response body
type APIError struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
	Type   string `json:"type"`
}
