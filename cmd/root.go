package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the docfiler application
var rootCmd = &cobra.Command{
	Use:   "docfiler",
	Short: "Files production documents from Gmail into Google Drive",
	Long: `docfiler scans a Gmail inbox for unread messages with PDF attachments,
classifies each attachment by document type (call sheet, unit list, shooting
schedule, crew list, movement order) and maintains a "latest version" file
per type in a Google Drive folder, archiving superseded versions with a
timestamp.

It can run as:
  - A one-shot filing pass (default)
  - A long-running service with a schedule and a filename resolution endpoint`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "docfiler version %s\n" .Version}}`)

	// If no subcommand is provided, run a single filing pass by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "run")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}
