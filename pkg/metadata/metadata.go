// Package metadata writes JSON sidecar files describing downloaded videos.
package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"hashclip/pkg/candidate"
)

// Extension is appended to a video path to form its sidecar path
const Extension = ".json"

// VideoMetadata describes one downloaded video and the post it came from
type VideoMetadata struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Author      string    `json:"author"`
	Likes       int       `json:"likes"`
	Views       int64     `json:"views"`
	CreatedAt   time.Time `json:"created_at"`
	TextExcerpt string    `json:"text_excerpt,omitempty"`
	File        string    `json:"file"`

	DownloadedAt time.Time `json:"downloaded_at"`
	RunID        string    `json:"run_id,omitempty"`
}

// New builds the metadata of a downloaded candidate
func New(c candidate.Candidate, views int64, path string) *VideoMetadata {
	return &VideoMetadata{
		ID:           c.ID,
		URL:          c.URL,
		Author:       c.Author,
		Likes:        c.Likes,
		Views:        views,
		CreatedAt:    c.CreatedAt,
		TextExcerpt:  c.TextExcerpt,
		File:         path,
		DownloadedAt: time.Now().UTC(),
	}
}

// Path returns the sidecar path of a video
func Path(videoPath string) string {
	return videoPath + Extension
}

// Save writes the metadata next to the video
func (m *VideoMetadata) Save(videoPath string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	if err := os.WriteFile(Path(videoPath), data, 0644); err != nil {
		return fmt.Errorf("failed to write metadata file: %w", err)
	}
	return nil
}

// Load reads the sidecar of a video
func Load(videoPath string) (*VideoMetadata, error) {
	data, err := os.ReadFile(Path(videoPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata file: %w", err)
	}

	var meta VideoMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return &meta, nil
}

// Exists checks if a sidecar exists for a video
func Exists(videoPath string) bool {
	_, err := os.Stat(Path(videoPath))
	return err == nil
}
