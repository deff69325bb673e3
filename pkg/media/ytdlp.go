package media

import (
	"context"
	"fmt"
	"strings"

	"github.com/lrstanley/go-ytdlp"

	"hashclip/pkg/logger"
)

// YtDlp is a Backend that shells out to yt-dlp
type YtDlp struct {
	format     string
	executable string
	logger     logger.Logger
}

// NewYtDlp creates a yt-dlp backend downloading with the given format selector
func NewYtDlp(format string, log logger.Logger) *YtDlp {
	if log == nil {
		log = logger.GetLogger()
	}
	if format == "" {
		format = "best"
	}
	return &YtDlp{
		format: format,
		logger: log.WithField("component", "yt-dlp"),
	}
}

// SetExecutable points the backend at a specific yt-dlp binary instead of
// the one found on PATH or in the cache
func (y *YtDlp) SetExecutable(path string) {
	y.executable = path
}

// command starts every invocation with the configured format selector, so the
// probe reports the extension the transfer will produce
func (y *YtDlp) command() *ytdlp.Command {
	cmd := ytdlp.New().Format(y.format).NoWarnings()
	if y.executable != "" {
		cmd = cmd.SetExecutable(y.executable)
	}
	return cmd
}

// Install downloads a yt-dlp binary into the user cache when none is usable
func (y *YtDlp) Install(ctx context.Context) error {
	resolved, err := ytdlp.Install(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to install yt-dlp: %w", err)
	}
	y.logger.InfoWithFields("yt-dlp ready", map[string]interface{}{
		"executable": resolved.Executable,
		"version":    resolved.Version,
	})
	return nil
}

// Probe runs yt-dlp in simulate mode and reads the info JSON
func (y *YtDlp) Probe(ctx context.Context, url string) (Metadata, error) {
	y.logger.DebugWithFields("probing", map[string]interface{}{"url": url})

	result, err := y.command().
		SkipDownload().
		DumpSingleJSON().
		Run(ctx, url)
	if err != nil {
		return Metadata{}, y.runError(err, result)
	}

	return parseInfo([]byte(result.Stdout))
}

// Fetch downloads url to outputTemplate and reports where the file landed
func (y *YtDlp) Fetch(ctx context.Context, url, outputTemplate string) (Metadata, error) {
	y.logger.DebugWithFields("downloading", map[string]interface{}{
		"url":    url,
		"output": outputTemplate,
		"format": y.format,
	})

	result, err := y.command().
		Output(outputTemplate).
		NoSimulate().
		DumpSingleJSON().
		Run(ctx, url)
	if err != nil {
		return Metadata{}, y.runError(err, result)
	}

	return parseInfo([]byte(result.Stdout))
}

// runError attaches the last line yt-dlp wrote to stderr, which carries the reason
func (y *YtDlp) runError(err error, result *ytdlp.Result) error {
	if result == nil {
		return err
	}
	stderr := strings.TrimSpace(result.Stderr)
	if stderr == "" {
		return err
	}
	lines := strings.Split(stderr, "\n")
	return fmt.Errorf("%w: %s", err, strings.TrimSpace(lines[len(lines)-1]))
}
