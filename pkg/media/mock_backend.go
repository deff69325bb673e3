package media

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"hashclip/pkg/storage"
)

// MockBackend implements Backend for testing purposes
type MockBackend struct {
	mu sync.Mutex

	// Views per URL; URLs not listed report 0 views
	Views map[string]int64
	// Ext reported for every URL, empty means unknown
	Ext string
	// WriteFiles creates the output file on Fetch
	WriteFiles bool
	// Delay is applied to every call and honours cancellation
	Delay time.Duration
	// ProbeDelays adds a per-URL delay to Probe
	ProbeDelays map[string]time.Duration

	// Error injection for testing
	ProbeErrors map[string]error
	FetchErrors map[string]error

	probes  []string
	fetches []string
}

// NewMockBackend creates a mock backend reporting the given view counts
func NewMockBackend(views map[string]int64) *MockBackend {
	if views == nil {
		views = make(map[string]int64)
	}
	return &MockBackend{
		Views:       views,
		Ext:         "mp4",
		ProbeErrors: make(map[string]error),
		FetchErrors: make(map[string]error),
		ProbeDelays: make(map[string]time.Duration),
	}
}

// Probe reports the configured view count for url
func (m *MockBackend) Probe(ctx context.Context, url string) (Metadata, error) {
	m.mu.Lock()
	m.probes = append(m.probes, url)
	err := m.ProbeErrors[url]
	views := m.Views[url]
	delay := m.Delay + m.ProbeDelays[url]
	m.mu.Unlock()

	if waitErr := sleep(ctx, delay); waitErr != nil {
		return Metadata{}, waitErr
	}
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{ViewCount: views, Ext: m.Ext}, nil
}

// Fetch records the call and optionally writes a placeholder file
func (m *MockBackend) Fetch(ctx context.Context, url, outputTemplate string) (Metadata, error) {
	m.mu.Lock()
	m.fetches = append(m.fetches, url)
	err := m.FetchErrors[url]
	views := m.Views[url]
	m.mu.Unlock()

	if waitErr := m.wait(ctx); waitErr != nil {
		return Metadata{}, waitErr
	}
	if err != nil {
		return Metadata{}, err
	}

	path := storage.PathFor(strings.TrimSuffix(outputTemplate, "."+storage.ExtTemplate), m.Ext)
	if m.WriteFiles {
		if err := os.WriteFile(path, []byte(url), 0644); err != nil {
			return Metadata{}, err
		}
	}
	return Metadata{ViewCount: views, Ext: m.Ext, Path: path}, nil
}

// Probes returns the URLs probed so far
func (m *MockBackend) Probes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.probes...)
}

// Fetches returns the URLs fetched so far
func (m *MockBackend) Fetches() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.fetches...)
}

func (m *MockBackend) wait(ctx context.Context) error {
	return sleep(ctx, m.Delay)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
