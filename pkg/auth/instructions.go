package auth

import (
	"fmt"
	"io"
	"strings"
)

// ShowTokenGuide writes step-by-step instructions for obtaining an X API
// bearer token.
func ShowTokenGuide(w io.Writer) {
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w, "📚 X API BEARER TOKEN GUIDE")
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "This tool searches posts through the X API v2 recent search endpoint,")
	fmt.Fprintln(w, "which requires an app-only bearer token.")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "🌐 STEP 1: Open the developer portal")
	fmt.Fprintln(w, "   - Go to https://developer.x.com/en/portal/dashboard")
	fmt.Fprintln(w, "   - Sign in and accept the developer agreement if asked")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "📦 STEP 2: Create a project and an app")
	fmt.Fprintln(w, "   - Recent search needs at least the Basic access tier")
	fmt.Fprintln(w, "   - Attach the app to the project")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "🔑 STEP 3: Generate the bearer token")
	fmt.Fprintln(w, "   - Open the app's 'Keys and tokens' tab")
	fmt.Fprintln(w, "   - Under 'Bearer Token' click Generate (or Regenerate)")
	fmt.Fprintln(w, "   - The token starts with AAAAAAAAAAAAAAAAAAAAA and is shown only once")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "💾 STEP 4: Give it to hashclip")
	fmt.Fprintln(w, "   • hashclip auth login            (stored in the system keychain)")
	fmt.Fprintln(w, "   • export "+TokenEnvVar+"=...")
	fmt.Fprintln(w, "   • hashclip fetch --token ...")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "⚠️  SECURITY WARNING:")
	fmt.Fprintln(w, "   • The token spends your app's monthly post quota")
	fmt.Fprintln(w, "   • NEVER commit it to a repository")
	fmt.Fprintln(w, "   • Regenerate it in the portal if it leaks")
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w)
}

// ShowQuickTokenGuide shows a condensed version for experienced users
func ShowQuickTokenGuide(w io.Writer) {
	fmt.Fprintln(w, "\n🔑 Quick Guide: developer.x.com → Projects & Apps → your app → Keys and tokens → Bearer Token")
	fmt.Fprintln(w, "   Type 'help' for detailed instructions")
}
