package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"hashclip/pkg/auth"
	"hashclip/pkg/config"
	"hashclip/pkg/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage hashclip configuration files.

Configuration is merged from (highest priority first):
  - Command line flags
  - Environment variables (HASHCLIP_*, also read from .env)
  - Configuration file
  - Default values`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file with the default values",
	Long: `Create a configuration file holding every option at its default value.

The file is created as '.hashclip.yaml' in the current directory unless a
different path is given with --config.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Show the configuration after merging all sources. The bearer token is masked.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

const configHeader = `# hashclip configuration
#
# Every option can also be set with a HASHCLIP_* environment variable, e.g.
# HASHCLIP_BEARER_TOKEN, HASHCLIP_HASHTAGS=news,video or HASHCLIP_MIN_VIEWS.
# Prefer 'hashclip auth login' over putting the bearer token in this file.

`

// exampleConfig renders the default configuration as commented YAML
func exampleConfig() ([]byte, error) {
	data, err := yaml.Marshal(config.DefaultConfig())
	if err != nil {
		return nil, err
	}
	return append([]byte(configHeader), data...), nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configFile
	if path == "" {
		path = ".hashclip.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", path)
		return fmt.Errorf("configuration file already exists: %s", path)
	}

	data, err := exampleConfig()
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	ui.PrintSuccess("Configuration file created: " + path)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the hashtags and thresholds")
	fmt.Println("2. Run 'hashclip auth login' to store your bearer token")
	fmt.Println("3. Run 'hashclip config validate' to check the file")
	fmt.Println("4. Start downloading with 'hashclip fetch'")
	return nil
}

// maskedYAML renders cfg with the bearer token masked
func maskedYAML(cfg *config.Config) ([]byte, error) {
	display := *cfg
	if display.Twitter.BearerToken != "" {
		display.Twitter.BearerToken = auth.MaskToken(display.Twitter.BearerToken)
	}
	return yaml.Marshal(&display)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	data, err := maskedYAML(cfg)
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (HASHCLIP_*)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: first found of")
		for _, p := range config.SearchPaths() {
			fmt.Printf("   - %s\n", p)
		}
	}
	fmt.Println("4. Default values")
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	source := configFile
	if source == "" {
		for _, p := range config.SearchPaths() {
			if _, err := os.Stat(p); err == nil {
				source = p
				break
			}
		}
	}
	if source == "" {
		ui.PrintInfo("Validating configuration", "defaults and environment (no file found)")
	} else {
		ui.PrintInfo("Validating configuration", source)
	}

	cfg, err := config.Load(source, nil)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if cfg.Twitter.BearerToken == "" {
		ui.PrintWarning("Configuration warnings:")
		fmt.Println("  - no bearer token configured; 'hashclip fetch' will use the credential store")
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Hashtags: %v\n", cfg.Search.Hashtags)
	fmt.Printf("  Min likes: %d\n", cfg.Filter.MinLikes)
	fmt.Printf("  Min views: %d\n", cfg.Filter.MinViews)
	fmt.Printf("  Output directory: %s\n", cfg.Output.Directory)
	fmt.Printf("  Concurrency: %d\n", cfg.Download.Concurrency)
	fmt.Printf("  Rate limit: %d requests/minute\n", cfg.RateLimit.RequestsPerMinute)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
	return nil
}
