package main

import (
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Configure GitHub credentials",
	Long: `Prompt for a GitHub username and API token and write them to the
credentials file (CREDENTIALS_FILE, .env by default). Other keys already in
the file are kept.`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func runSetup(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	return a.setupCredentials()
}
