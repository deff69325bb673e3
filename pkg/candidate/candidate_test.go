package candidate

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"hashclip/pkg/errors"
	"hashclip/pkg/logger"
	"hashclip/pkg/twitter"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	resp   *twitter.SearchResponse
	err    error
	calls  int
	params twitter.SearchParams
}

func (f *fakeSearcher) SearchRecent(ctx context.Context, params twitter.SearchParams) (*twitter.SearchResponse, error) {
	f.calls++
	f.params = params
	return f.resp, f.err
}

func tweet(id, author string, likes int, media bool) twitter.Tweet {
	t := twitter.Tweet{
		ID:            id,
		Text:          "post " + id,
		AuthorID:      author,
		CreatedAt:     time.Date(2025, 5, 12, 18, 30, 0, 0, time.UTC),
		PublicMetrics: &twitter.PublicMetrics{LikeCount: likes},
	}
	if media {
		t.Attachments = &twitter.Attachments{MediaKeys: []string{"3_" + id}}
	}
	return t
}

func TestExtract(t *testing.T) {
	searcher := &fakeSearcher{resp: &twitter.SearchResponse{
		Data: []twitter.Tweet{
			tweet("1", "42", 15, true),
			tweet("2", "42", 9, true),
			tweet("3", "42", 50, false),
			tweet("4", "77", 10, true),
		},
		Includes: twitter.Includes{Users: []twitter.User{{ID: "42", Username: "gopher"}}},
	}}

	extractor := NewExtractor(searcher, 100, logger.NewNopLogger())
	candidates, err := extractor.Extract(context.Background(), "#news has:videos -is:retweet", 10)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, Candidate{
		ID:          "1",
		URL:         "https://twitter.com/gopher/status/1",
		Author:      "gopher",
		Likes:       15,
		CreatedAt:   time.Date(2025, 5, 12, 18, 30, 0, 0, time.UTC),
		TextExcerpt: "post 1",
	}, candidates[0])

	assert.Equal(t, "4", candidates[1].ID)
	assert.Equal(t, UnknownAuthor, candidates[1].Author)
	assert.Equal(t, "https://twitter.com/unknown/status/4", candidates[1].URL)

	assert.Equal(t, 1, searcher.calls)
	assert.Equal(t, "#news has:videos -is:retweet", searcher.params.Query)
	assert.Equal(t, 100, searcher.params.MaxResults)
}

func TestExtractNeverReturnsUnderThreshold(t *testing.T) {
	var data []twitter.Tweet
	for i := 0; i < 40; i++ {
		data = append(data, tweet(strconv.Itoa(i), "1", i, i%3 != 0))
	}
	searcher := &fakeSearcher{resp: &twitter.SearchResponse{Data: data}}
	extractor := NewExtractor(searcher, 100, logger.NewNopLogger())

	for _, minLikes := range []int{0, 1, 10, 25, 39, 40} {
		candidates, err := extractor.Extract(context.Background(), "q", minLikes)
		require.NoError(t, err)
		for _, c := range candidates {
			assert.GreaterOrEqual(t, c.Likes, minLikes)
		}
	}
}

func TestExtractMissingMetricsCountAsZero(t *testing.T) {
	post := tweet("1", "42", 0, true)
	post.PublicMetrics = nil
	searcher := &fakeSearcher{resp: &twitter.SearchResponse{Data: []twitter.Tweet{post}}}
	extractor := NewExtractor(searcher, 10, logger.NewNopLogger())

	candidates, err := extractor.Extract(context.Background(), "q", 1)
	require.NoError(t, err)
	assert.Empty(t, candidates)

	candidates, err = extractor.Extract(context.Background(), "q", 0)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, 0, candidates[0].Likes)
}

func TestExtractNoResults(t *testing.T) {
	for _, resp := range []*twitter.SearchResponse{nil, {}} {
		extractor := NewExtractor(&fakeSearcher{resp: resp}, 10, logger.NewNopLogger())
		candidates, err := extractor.Extract(context.Background(), "q", 10)
		require.NoError(t, err)
		assert.NotNil(t, candidates)
		assert.Empty(t, candidates)
	}
}

func TestExtractSearchFailed(t *testing.T) {
	cause := &twitter.Error{Type: twitter.ErrorTypeAuth, Code: 401, Message: "bearer token rejected"}
	extractor := NewExtractor(&fakeSearcher{err: cause}, 10, logger.NewNopLogger())

	candidates, err := extractor.Extract(context.Background(), "q", 10)
	assert.Nil(t, candidates)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindSearchFailed))

	var apiErr *twitter.Error
	assert.True(t, stderrors.As(err, &apiErr))
}

func TestExtractLogsCounts(t *testing.T) {
	searcher := &fakeSearcher{resp: &twitter.SearchResponse{Data: []twitter.Tweet{
		tweet("1", "42", 15, true),
		tweet("2", "42", 1, true),
		tweet("3", "42", 20, false),
	}}}
	log := logger.NewTestLogger()

	_, err := NewExtractor(searcher, 10, log).Extract(context.Background(), "q", 10)
	require.NoError(t, err)

	var found bool
	for _, msg := range log.GetMessagesByLevel("INFO") {
		if msg.Message == "Candidates extracted" {
			found = true
			assert.Equal(t, 1, msg.Fields["candidates"])
			assert.Equal(t, 1, msg.Fields["low_likes"])
			assert.Equal(t, 1, msg.Fields["no_media"])
		}
	}
	assert.True(t, found)
}

func TestNewExtractorClampsPageSize(t *testing.T) {
	searcher := &fakeSearcher{resp: &twitter.SearchResponse{}}
	_, err := NewExtractor(searcher, 1000, logger.NewNopLogger()).Extract(context.Background(), "q", 0)
	require.NoError(t, err)
	assert.Equal(t, twitter.MaxResults, searcher.params.MaxResults)
}

func TestExcerpt(t *testing.T) {
	short := "short body"
	assert.Equal(t, short, Excerpt(short))

	exact := strings.Repeat("a", ExcerptLength)
	assert.Equal(t, exact, Excerpt(exact))

	long := strings.Repeat("b", ExcerptLength+10)
	assert.Equal(t, strings.Repeat("b", ExcerptLength)+"...", Excerpt(long))

	polish := strings.Repeat("ż", ExcerptLength+1)
	assert.Equal(t, strings.Repeat("ż", ExcerptLength)+"...", Excerpt(polish))
}
