package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"hashclip/pkg/ui"
)

var (
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	noLogo     bool
)

var rootCmd = &cobra.Command{
	Use:   "hashclip",
	Short: "Download popular X videos for a set of hashtags",
	Long: `hashclip searches recent X posts for one or more hashtags, keeps the
posts with video that have enough likes, checks each video's view count and
downloads the ones that clear the view threshold.

Running hashclip without a subcommand is the same as 'hashclip fetch'.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noLogo {
			return
		}
		switch cmd.Name() {
		case "version", "help", "show", "status":
		default:
			ui.PrintLogo()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFetch(cmd, args)
	},
}

// Execute runs the root command and exits 1 on error
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("Error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default: .hashclip.yaml, ~/.config/hashclip/config.yaml or ~/.hashclip.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error, disabled)")
	rootCmd.PersistentFlags().BoolVar(&noLogo, "no-logo", false, "do not print the banner")

	rootCmd.SetVersionTemplate(`hashclip {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
