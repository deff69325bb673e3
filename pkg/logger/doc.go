// Package logger provides the structured logging interface used across hashclip.
//
// It wraps zerolog with a small interface that supports field chaining and
// per-call field maps:
//
//	log := logger.GetLogger().WithField("run_id", runID)
//	log.InfoWithFields("Search completed", map[string]interface{}{
//	    "query":      q,
//	    "candidates": len(candidates),
//	})
//
// Console output goes to stderr with colored levels. When a log file is
// configured, entries are also appended to it as JSON.
//
// Tests can use NewNopLogger to discard output, or NewTestLogger to capture
// messages and assert on them.
package logger
