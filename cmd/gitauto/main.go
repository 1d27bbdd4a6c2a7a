package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gitauto",
	Short: "Git & GitHub automation CLI",
	Long: `gitauto drives local git repositories and the GitHub API from the command line.

Every command shares the git, GitHub and tool-chaining code used by the
git automation server. Credentials are read from .env (GITHUB_USERNAME and
GITHUB_TOKEN); run "gitauto setup" to create it.

Examples:
  # Create a repository on GitHub, initialize it locally and push
  gitauto create my-project --private --gitignore go

  # Everyday git
  gitauto add-file ./my-project main.go "package main" --commit
  gitauto merge ./my-project feature main --push

  # Natural language requests and workflows
  gitauto run "check status" --param repo_path=./my-project
  gitauto workflow feature_development --param repo_path=./my-project --param branch_name=feature/login \
    --param 'files:=[{"path":"login.go","content":"package login"}]' --param commit_message="Add login"`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loadEnvFiles()
		if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(branchCmd)
	rootCmd.AddCommand(branchesCmd)
	rootCmd.AddCommand(currentBranchCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(addFileCmd)
	rootCmd.AddCommand(addFilesCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(gitignoreCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(workflowCmd)
	rootCmd.AddCommand(toolsCmd)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
}

func loadEnvFiles() {
	for _, path := range []string{".env", "../.env"} {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
