// Package media resolves and downloads post videos through yt-dlp.
//
// A Backend has two capabilities: Probe reads metadata without transferring
// any bytes, Fetch downloads the media to an output template. Prober and
// Fetcher wrap a Backend with timeouts, pacing and typed errors.
package media

import (
	"context"
	"encoding/json"
	"fmt"
)

// Metadata is what the backend reports about a post's media
type Metadata struct {
	ViewCount int64
	Ext       string
	Title     string
	// Path is the written file, set by Fetch only
	Path string
}

// Backend is a media-resolution service
type Backend interface {
	// Probe resolves metadata for url without downloading
	Probe(ctx context.Context, url string) (Metadata, error)
	// Fetch downloads the media for url to outputTemplate, a path whose
	// extension part is expanded by the backend
	Fetch(ctx context.Context, url, outputTemplate string) (Metadata, error)
}

// info is the subset of yt-dlp's info JSON the pipeline reads
type info struct {
	ID                 string              `json:"id"`
	Title              string              `json:"title"`
	Ext                string              `json:"ext"`
	ViewCount          *int64              `json:"view_count"`
	Filename           string              `json:"filename"`
	LegacyFilename     string              `json:"_filename"`
	RequestedDownloads []requestedDownload `json:"requested_downloads"`
	Entries            []info              `json:"entries"`
}

type requestedDownload struct {
	Filepath string `json:"filepath"`
	Ext      string `json:"ext"`
}

// parseInfo decodes a --dump-single-json document. Posts with several
// videos come back as a playlist; the first entry with data stands in for
// fields the playlist itself lacks.
func parseInfo(data []byte) (Metadata, error) {
	var doc info
	if err := json.Unmarshal(data, &doc); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse backend output: %w", err)
	}

	meta := doc.metadata()
	for _, entry := range doc.Entries {
		em := entry.metadata()
		if meta.ViewCount == 0 {
			meta.ViewCount = em.ViewCount
		}
		if meta.Ext == "" {
			meta.Ext = em.Ext
		}
		if meta.Path == "" {
			meta.Path = em.Path
		}
		if meta.Title == "" {
			meta.Title = em.Title
		}
	}
	return meta, nil
}

func (i info) metadata() Metadata {
	meta := Metadata{Title: i.Title, Ext: i.Ext}
	if i.ViewCount != nil && *i.ViewCount > 0 {
		meta.ViewCount = *i.ViewCount
	}

	for _, d := range i.RequestedDownloads {
		if d.Filepath != "" {
			meta.Path = d.Filepath
			if d.Ext != "" {
				meta.Ext = d.Ext
			}
			break
		}
	}
	if meta.Path == "" {
		meta.Path = i.Filename
	}
	if meta.Path == "" {
		meta.Path = i.LegacyFilename
	}
	return meta
}
