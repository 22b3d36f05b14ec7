package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/docfiler/internal/google"
)

func newAuthCmd() *cobra.Command {
	var account string
	var code string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize access to a Google account",
		Long: `Obtain and cache an OAuth token for a Google account.

Run without --code to print the authorization URL. Open it in a browser,
approve access, then run the command again with --code set to the
authorization code Google returns.

The OAuth client is configured via the DOCFILER_GOOGLE_CLIENT_ID and
DOCFILER_GOOGLE_CLIENT_SECRET environment variables. Tokens are stored
per account, so multiple accounts can be authorized side by side.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if code == "" {
				fmt.Printf("Open the following URL in a browser, approve access, then re-run\nwith --code:\n\n%s\n", google.GetAuthURL())
				return nil
			}

			if err := google.SaveTokenForAccount(cmd.Context(), account, code); err != nil {
				return fmt.Errorf("failed to save token for account %s: %w", account, err)
			}
			fmt.Printf("Token for account %q saved.\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "default", "Account name to store the token under")
	cmd.Flags().StringVar(&code, "code", "", "Authorization code from the consent page")

	return cmd
}
