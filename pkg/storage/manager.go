package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"hashclip/pkg/candidate"
	"hashclip/pkg/errors"
)

const (
	// DefaultExt is used when the media backend does not report an extension
	DefaultExt = "mp4"

	// ExtTemplate is expanded by the media backend to the real extension
	ExtTemplate = "%(ext)s"
)

// Manager owns the output directory and hands out deterministic file names
type Manager struct {
	outputDir string
	suffixed  map[string]bool
	mu        sync.RWMutex
}

// NewManager creates the output directory if needed. Failure is fatal for
// the run and reported as a DirectoryCreationFailed error.
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, errors.DirectoryCreationFailed(outputDir, err)
	}

	info, err := os.Stat(outputDir)
	if err != nil {
		return nil, errors.DirectoryCreationFailed(outputDir, err)
	}
	if !info.IsDir() {
		return nil, errors.DirectoryCreationFailed(outputDir, fmt.Errorf("not a directory"))
	}

	return &Manager{
		outputDir: outputDir,
		suffixed:  make(map[string]bool),
	}, nil
}

// FileStem returns the name without extension:
// {author}_{YYYYMMDD}_likes{N}_views{M}
func FileStem(author string, createdAt time.Time, likes int, views int64) string {
	date := "00000000"
	if !createdAt.IsZero() {
		date = createdAt.UTC().Format("20060102")
	}
	return fmt.Sprintf("%s_%s_likes%d_views%d", SanitizeName(author), date, likes, views)
}

// FileName returns the full file name for a post, ext as reported by the backend
func FileName(author string, createdAt time.Time, likes int, views int64, ext string) string {
	return FileStem(author, createdAt, likes, views) + "." + NormalizeExt(ext)
}

// Plan decides, before any worker runs, which posts need their id in the
// file name. Posts sharing author, UTC day and likes may end up with the same
// stem; every member of such a group except the first in list order gets
// the suffix, whatever view counts the probes later report.
func (m *Manager) Plan(candidates []candidate.Candidate) {
	groups := make(map[string][]string)
	var order []string
	for _, c := range candidates {
		key := FileStem(c.Author, c.CreatedAt, c.Likes, 0)
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], c.ID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.suffixed = make(map[string]bool)
	for _, key := range order {
		ids := groups[key]
		for _, id := range ids[1:] {
			if id != ids[0] {
				m.suffixed[id] = true
			}
		}
	}
}

// BasePath returns the output base path (directory + stem) of a post, with
// the post id appended when Plan marked it.
func (m *Manager) BasePath(stem, postID string) string {
	m.mu.RLock()
	suffix := m.suffixed[postID]
	m.mu.RUnlock()

	if suffix {
		stem = stem + "_" + SanitizeName(postID)
	}
	return filepath.Join(m.outputDir, stem)
}

// PathFor joins an output base with an extension
func PathFor(base, ext string) string {
	return base + "." + NormalizeExt(ext)
}

// Template returns the output template handed to the media backend for base
func Template(base string) string {
	return base + "." + ExtTemplate
}

// Exists reports whether a regular file is present at path
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// SanitizeName keeps letters, digits, '-', '_' and '.'; anything else becomes '_'.
// An empty result becomes "unknown".
func SanitizeName(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == '.' && b.Len() > 0:
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}

// NormalizeExt lowercases ext and strips a leading dot; empty or unsafe values become DefaultExt
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if ext == "" || len(ext) > 8 {
		return DefaultExt
	}
	for _, r := range ext {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9') {
			return DefaultExt
		}
	}
	return ext
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// AbsOutputDir returns the absolute output directory path
func (m *Manager) AbsOutputDir() string {
	abs, err := filepath.Abs(m.outputDir)
	if err != nil {
		return m.outputDir
	}
	return abs
}
