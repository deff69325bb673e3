package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"hashclip/pkg/auth"
	"hashclip/pkg/ui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage X API bearer tokens",
	Long: `Manage stored X API bearer tokens.

Tokens are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - HASHCLIP_BEARER_TOKEN (read only)

Never share your token or config files!`,
}

var loginCmd = &cobra.Command{
	Use:   "login [profile]",
	Short: "Store a bearer token securely",
	Long: `Store an X API bearer token in the system keychain or an encrypted file.

The token is read without echo. Without a profile name the token is stored as
the "default" profile, which 'hashclip fetch' uses automatically.`,
	Example: `  # Interactive login
  hashclip auth login

  # Store a second token under its own profile
  hashclip auth login work`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout [profile]",
	Short: "Remove a stored bearer token",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List stored tokens",
	Long:  `List stored bearer tokens with the token value masked.`,
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

var guideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Explain how to obtain a bearer token",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		auth.ShowTokenGuide(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
	authCmd.AddCommand(guideCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	profile := auth.DefaultProfile
	if len(args) > 0 {
		profile = args[0]
	}

	reader := bufio.NewReader(os.Stdin)

	auth.ShowQuickTokenGuide(os.Stdout)
	fmt.Print("\nReady to enter your bearer token? (Y/n/help): ")
	ready, _ := reader.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(ready)) {
	case "n":
		fmt.Println("\nRun 'hashclip auth login' when you're ready.")
		return nil
	case "help", "h", "?":
		auth.ShowTokenGuide(os.Stdout)
	}

	if existing, _ := manager.Retrieve(profile); existing != nil {
		fmt.Printf("\n⚠️  Profile '%s' already has a token. Replace it? (y/N): ", profile)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return nil
		}
	}

	var token string
	for {
		fmt.Print("\n🔐 Bearer token (hidden): ")
		token, err = readSecret(reader)
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}

		if err := checkToken(token); err != nil {
			fmt.Printf("\n❌ %v\n", err)
			fmt.Print("Try again? (Y/n): ")
			retry, _ := reader.ReadString('\n')
			if strings.ToLower(strings.TrimSpace(retry)) == "n" {
				return err
			}
			continue
		}
		break
	}

	fmt.Println("\n💾 Storing token securely...")
	if err := manager.Store(&auth.Credential{Profile: profile, BearerToken: token}); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	ui.PrintSuccess(fmt.Sprintf("Token saved for profile: %s (%s)", profile, auth.MaskToken(token)))
	fmt.Println("\n📖 Next:")
	if profile == auth.DefaultProfile {
		fmt.Println("   $ hashclip fetch --hashtags news,video")
	} else {
		fmt.Printf("   $ hashclip fetch --profile %s --hashtags news,video\n", profile)
	}
	return nil
}

// checkToken rejects input that cannot be a bearer token
func checkToken(token string) error {
	switch {
	case token == "":
		return errors.New("the token is empty")
	case strings.ContainsAny(token, " \t"):
		return errors.New("the token must not contain spaces")
	case strings.HasPrefix(strings.ToLower(token), "bearer"):
		return errors.New("paste the token without the 'Bearer' prefix")
	case len(token) < 20:
		return errors.New("that is too short to be a bearer token")
	}
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	profile := auth.DefaultProfile
	if len(args) > 0 {
		profile = args[0]
	}

	if err := manager.Delete(profile); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	ui.PrintSuccess("Token removed for profile: " + profile)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	creds, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list tokens: %w", err)
	}

	if len(creds) == 0 {
		ui.PrintInfo("No stored tokens", "Use 'hashclip auth login' to add one")
		return nil
	}

	ui.PrintHighlight("Stored Tokens")
	fmt.Println()
	for i, cred := range creds {
		masked := auth.Sanitize(cred)
		fmt.Printf("%d. Profile: %s\n", i+1, masked.Profile)
		fmt.Printf("   Token: %s\n", masked.BearerToken)
		fmt.Printf("   Last Modified: %s\n", masked.LastModified.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}

	if os.Getenv(auth.TokenEnvVar) != "" {
		ui.PrintWarning(auth.TokenEnvVar + " is set and takes precedence over stored tokens")
	}
	return nil
}

// readSecret reads a line without echo when stdin is a terminal
func readSecret(reader *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}

	input, err := reader.ReadString('\n')
	if err != nil && input == "" {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
