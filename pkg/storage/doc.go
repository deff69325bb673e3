// Package storage prepares the output directory and names downloaded videos.
//
// File names embed the post's provenance so that re-running with different
// thresholds never overwrites a differently filtered download:
//
//	{author}_{YYYYMMDD}_likes{N}_views{M}.{ext}
//
// The same post with the same counts always maps to the same name. Dates
// are formatted in UTC and the author handle is sanitized for the
// filesystem.
//
// Usage:
//
//	manager, err := storage.NewManager("downloaded_videos")
//	if err != nil {
//	    return err // DirectoryCreationFailed
//	}
//
//	manager.Plan(candidates)
//
//	stem := storage.FileStem(c.Author, c.CreatedAt, c.Likes, views)
//	base := manager.BasePath(stem, c.ID)
//	meta, err := backend.Fetch(ctx, c.URL, storage.Template(base))
package storage
