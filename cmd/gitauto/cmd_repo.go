package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/janhq/git-automation-server/internal/infrastructure/gitignore"
)

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a GitHub repository and initialize it locally",
	Long: `Create the repository on GitHub, initialize ./<name> with an origin remote
and a main branch, add a README and a .gitignore, then commit and push.

Without --gitignore the .gitignore is generated from the detected project
type; with it the GitHub template for TYPE is downloaded.`,
	Args: cobra.ExactArgs(1),
	RunE: runCreate,
}

var initCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Initialize a local repository with a main branch",
	Args:  cobra.ExactArgs(1),
	RunE:  runInit,
}

var gitignoreCmd = &cobra.Command{
	Use:   "gitignore <path>",
	Short: "Generate a .gitignore for the repository",
	Args:  cobra.ExactArgs(1),
	RunE:  runGitignore,
}

func init() {
	createCmd.Flags().Bool("private", false, "Create a private repository")
	createCmd.Flags().String("description", "", "Repository description")
	createCmd.Flags().Bool("readme", true, "Add a README.md")
	createCmd.Flags().String("gitignore", "", "Download the GitHub .gitignore template for TYPE")

	initCmd.Flags().Bool("gitignore", false, "Generate a .gitignore file")

	gitignoreCmd.Flags().String("type", "", "Project type (detected when empty)")
	gitignoreCmd.Flags().Bool("from-github", false, "Download the template from GitHub")
}

func runCreate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := a.ensureCredentials(); err != nil {
		return err
	}
	ctx := cmd.Context()
	name := args[0]
	private, _ := cmd.Flags().GetBool("private")
	description, _ := cmd.Flags().GetString("description")
	readme, _ := cmd.Flags().GetBool("readme")
	template, _ := cmd.Flags().GetString("gitignore")

	repo, err := a.github().CreateRepository(ctx, name, private, description)
	if err != nil {
		return err
	}
	a.println(a.out.Success(fmt.Sprintf("GitHub repository created: %s", repo.HTMLURL)))

	path := filepath.Join(".", name)
	if err := a.git.Init(ctx, path); err != nil {
		return err
	}
	origin := fmt.Sprintf("https://github.com/%s/%s.git", a.store.Get().Username, name)
	if err := a.git.SetRemote(ctx, path, "origin", origin); err != nil {
		return err
	}
	if readme {
		if description == "" {
			description = "A new project"
		}
		content := fmt.Sprintf("# %s\n\n%s", name, description)
		if err := os.WriteFile(filepath.Join(path, "README.md"), []byte(content), 0o644); err != nil {
			return fmt.Errorf("write README: %w", err)
		}
	}
	if err := a.git.EnsureMainBranch(ctx, path); err != nil {
		return err
	}

	if template != "" {
		if _, _, err := a.downloader().Download(ctx, path, template); err != nil {
			return err
		}
	} else if _, err := gitignore.Generate(path, ""); err != nil {
		return err
	}

	if _, err := a.git.Commit(ctx, path, "Initial commit"); err != nil {
		return err
	}
	if _, err := a.git.Push(ctx, path, "origin", "main"); err != nil {
		return err
	}
	a.println(a.out.Success(fmt.Sprintf("Repository '%s' created & pushed: %s", name, repo.HTMLURL)))
	return nil
}

func runInit(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	path := args[0]
	if err := a.git.Init(ctx, path); err != nil {
		return err
	}
	if err := a.git.EnsureMainBranch(ctx, path); err != nil {
		return err
	}
	if generate, _ := cmd.Flags().GetBool("gitignore"); generate {
		if _, err := gitignore.Generate(path, ""); err != nil {
			return err
		}
	}
	a.println(a.out.Success(fmt.Sprintf("Git initialized at %s with 'main' branch", path)))
	return nil
}

func runGitignore(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return err
	}
	projectType, _ := cmd.Flags().GetString("type")

	if fromGitHub, _ := cmd.Flags().GetBool("from-github"); fromGitHub {
		written, source, err := a.downloader().Download(cmd.Context(), path, projectType)
		if err != nil {
			return err
		}
		a.println(a.out.Success(fmt.Sprintf("Wrote %s from %s", written, source)))
		return nil
	}
	written, err := gitignore.Generate(path, projectType)
	if err != nil {
		return err
	}
	a.println(a.out.Success(fmt.Sprintf("Generated %s", written)))
	return nil
}
