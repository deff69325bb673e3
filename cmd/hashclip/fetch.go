package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"hashclip/pkg/auth"
	"hashclip/pkg/candidate"
	"hashclip/pkg/config"
	"hashclip/pkg/fetch"
	"hashclip/pkg/logger"
	"hashclip/pkg/query"
	"hashclip/pkg/scraper"
	"hashclip/pkg/ui"
	"hashclip/pkg/ui/tui"
)

var (
	// Fetch command flags
	bearerToken    string
	hashtagList    string
	minLikes       int
	minViews       int64
	outputDir      string
	concurrent     int
	videoFormat    string
	profileName    string
	installBackend bool
	writeMetadata  bool
	useTUI         bool
	notify         bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Search hashtags and download the videos that pass both filters",
	Long: `Search recent X posts for the configured hashtags and download their videos.

A post is kept when it has video, is not a repost and has at least --min-likes
likes. Each kept post's video is then probed with yt-dlp and downloaded only
when it has at least --min-views views. Files are named
{author}_{YYYYMMDD}_likes{N}_views{M}.{ext}.

The bearer token is taken from --token, the configuration, the
HASHCLIP_BEARER_TOKEN environment variable or the credential store
('hashclip auth login'), in that order.`,
	Example: `  # Default hashtags and thresholds
  hashclip fetch

  # Custom hashtags and thresholds
  hashclip fetch --hashtags "golang,gophercon" --min-likes 50 --min-views 1000

  # Download to a specific directory, five at a time, with a live dashboard
  hashclip fetch --output ./clips --concurrent 5 --tui`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	registerFetchFlags(fetchCmd.Flags())
	// The root command runs fetch, so it accepts the same flags
	registerFetchFlags(rootCmd.Flags())
}

func registerFetchFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&bearerToken, "token", "t", "", "X API bearer token")
	fs.StringVar(&hashtagList, "hashtags", "news,video", "comma-separated hashtags to search")
	fs.IntVar(&minLikes, "min-likes", 10, "minimum likes a post needs")
	fs.Int64Var(&minViews, "min-views", 100, "minimum views a video needs to be downloaded")
	fs.StringVarP(&outputDir, "output", "o", "./downloaded_videos", "output directory for videos")
	fs.IntVar(&concurrent, "concurrent", 3, "number of posts processed at once (1-10)")
	fs.StringVar(&videoFormat, "format", "best", "yt-dlp format selector")
	fs.StringVar(&profileName, "profile", "", "stored credential profile to use")
	fs.BoolVar(&installBackend, "install-backend", false, "download a yt-dlp binary if none is available")
	fs.BoolVar(&writeMetadata, "metadata", false, "write a JSON sidecar next to every downloaded video")
	fs.BoolVar(&useTUI, "tui", false, "show a live dashboard while the run is in progress")
	fs.BoolVar(&notify, "notify", false, "send a desktop notification when the run ends")
}

// flagOverrides collects the flags the user actually set, keyed the way
// config.MergeCommandLineFlags expects.
func flagOverrides(fs *pflag.FlagSet) map[string]interface{} {
	flags := make(map[string]interface{})

	if fs.Changed("token") {
		flags["token"] = bearerToken
	}
	if fs.Changed("hashtags") {
		flags["hashtags"] = query.ParseList(hashtagList)
	}
	if fs.Changed("min-likes") {
		flags["min-likes"] = minLikes
	}
	if fs.Changed("min-views") {
		flags["min-views"] = minViews
	}
	if fs.Changed("output") {
		flags["output"] = outputDir
	}
	if fs.Changed("concurrent") {
		flags["concurrent"] = concurrent
	}
	if fs.Changed("metadata") {
		flags["metadata"] = writeMetadata
	}
	if fs.Changed("format") {
		flags["format"] = videoFormat
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}

	return flags
}

// credentialSource is the part of auth.Manager the fetch command needs
type credentialSource interface {
	Retrieve(profile string) (*auth.Credential, error)
	RetrieveDefault() (*auth.Credential, error)
}

// resolveToken fills in the bearer token from the credential store when
// neither flags, the config file nor the environment provided one.
func resolveToken(cfg *config.Config, store credentialSource, profile string) error {
	if cfg.Twitter.BearerToken != "" && profile == "" {
		return nil
	}
	if store == nil {
		if cfg.Twitter.BearerToken != "" {
			return nil
		}
		return scraper.ErrMissingToken
	}

	var (
		cred *auth.Credential
		err  error
	)
	if profile != "" {
		cred, err = store.Retrieve(profile)
		if err != nil {
			return fmt.Errorf("no stored credentials for profile %q: %w", profile, err)
		}
	} else {
		cred, err = store.RetrieveDefault()
		if err != nil {
			return scraper.ErrMissingToken
		}
	}

	cfg.Twitter.BearerToken = cred.BearerToken
	return nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, flagOverrides(cmd.Flags()))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cmd.Flags().Changed("install-backend") {
		cfg.Download.InstallBackend = installBackend
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// the dashboard owns the terminal, so logs go to the log file and
	// warnings are mirrored into the dashboard
	var dash *tui.TUI
	if useTUI {
		dash = tui.New(cancel)
		err = logger.InitializeWithConsole(&cfg.Logging, nil, dash.LogHook())
	} else {
		err = logger.Initialize(&cfg.Logging)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()

	var store credentialSource
	if manager, err := auth.NewManager(); err == nil {
		store = manager
	} else {
		log.WithError(err).Warn("Credential store unavailable")
	}
	if err := resolveToken(cfg, store, profileName); err != nil {
		if errors.Is(err, scraper.ErrMissingToken) {
			fmt.Println("\nProvide a bearer token with --token, HASHCLIP_BEARER_TOKEN,")
			fmt.Println("or store one with:")
			fmt.Println("  hashclip auth login")
		}
		return err
	}

	s, err := scraper.New(cfg)
	if err != nil {
		return err
	}

	var report *scraper.Report
	if dash != nil {
		report, err = runWithDashboard(ctx, cancel, s, dash)
	} else {
		report, err = runWithReport(ctx, s, cfg)
	}

	var notifier *ui.Notifier
	if notify {
		notifier = ui.NewNotifier()
	}

	if err != nil {
		log.WithError(err).Error("Run failed")
		if notifier != nil {
			notifier.NotifyError(err)
		}
		return err
	}

	if report.NoMatches() {
		ui.PrintNoMatches()
	} else {
		ui.PrintSummary(report.Result)
	}
	if notifier != nil {
		notifier.NotifyRun(summaryOf(report))
	}

	return nil
}

func runWithReport(ctx context.Context, s *scraper.Scraper, cfg *config.Config) (*scraper.Report, error) {
	ui.PrintHashtags(cfg.Search.Hashtags)

	s.SetEvents(scraper.Events{
		OnQuery: func(q string) {
			ui.PrintInfo("Query", q)
		},
		OnCandidates: func(candidates []candidate.Candidate) {
			if len(candidates) > 0 {
				ui.PrintCandidatesFound(len(candidates), cfg.Filter.MinLikes, cfg.Filter.MinViews, cfg.Output.Directory)
			}
		},
		OnOutcome: ui.PrintOutcome,
	})

	return s.Run(ctx)
}

func summaryOf(report *scraper.Report) fetch.Summary {
	if report == nil || report.Result == nil {
		return fetch.Summary{}
	}
	return report.Result.Summary
}

type runResult struct {
	report *scraper.Report
	err    error
}

// runWithDashboard runs the fetch in the background while the dashboard owns
// the terminal. Quitting the dashboard cancels the run.
func runWithDashboard(ctx context.Context, cancel context.CancelFunc, s *scraper.Scraper, dash *tui.TUI) (*scraper.Report, error) {
	s.SetEvents(scraper.Events{
		OnQuery:      dash.Query,
		OnCandidates: dash.Candidates,
		OnOutcome:    dash.Outcome,
	})

	done := make(chan runResult, 1)
	go func() {
		report, err := s.Run(ctx)
		dash.Finish(err)
		done <- runResult{report: report, err: err}
	}()

	if err := dash.Run(); err != nil {
		logger.WithError(err).Warn("Dashboard stopped")
		cancel()
	}

	res := <-done
	return res.report, res.err
}
