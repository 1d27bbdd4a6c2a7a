package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/janhq/git-automation-server/internal/infrastructure/gitcli"
)

var addFileCmd = &cobra.Command{
	Use:   "add-file <path> <file> <content>",
	Short: "Create a file with the given content",
	Args:  cobra.ExactArgs(3),
	RunE:  runAddFile,
}

var addFilesCmd = &cobra.Command{
	Use:   "add-files <path>",
	Short: "Create several files at once",
	Long: `Create several files from 'path:content' pairs.

Examples:
  gitauto add-files ./repo -f "src/main.go:package main" -f "README.md:# My Project"
  gitauto add-files ./repo -i files.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runAddFiles,
}

var listCmd = &cobra.Command{
	Use:   "list <path>",
	Short: "List the contents of a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runList,
}

var readCmd = &cobra.Command{
	Use:   "read <path> <file>",
	Short: "Print the contents of a file",
	Args:  cobra.ExactArgs(2),
	RunE:  runRead,
}

func init() {
	addFileCmd.Flags().Bool("commit", false, "Commit the file after creating it")
	addFileCmd.Flags().StringP("message", "m", "", "Commit message (default: Add <file>)")

	addFilesCmd.Flags().StringArrayP("files", "f", nil, "File as 'path:content', repeatable")
	addFilesCmd.Flags().StringP("input-file", "i", "", "Text file with one 'path:content' per line")

	listCmd.Flags().String("pattern", "", "Glob pattern such as **/*.go")
}

func runAddFile(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	path, file, content := args[0], args[1], args[2]
	written, err := a.git.AddFile(path, file, content)
	if err != nil {
		return err
	}
	a.println(a.out.Success(fmt.Sprintf("File '%s' created at %s", file, written)))

	if commit, _ := cmd.Flags().GetBool("commit"); commit {
		message, _ := cmd.Flags().GetString("message")
		if message == "" {
			message = "Add " + file
		}
		if _, err := a.git.Commit(cmd.Context(), path, message); err != nil {
			return err
		}
		a.println(a.out.Success(fmt.Sprintf("Changes committed with message: '%s'", message)))
	}
	return nil
}

func runAddFiles(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	pairs, _ := cmd.Flags().GetStringArray("files")
	inputFile, _ := cmd.Flags().GetString("input-file")

	specs, skipped := parseFileSpecs(pairs)
	if inputFile != "" {
		lines, err := readLines(inputFile)
		if err != nil {
			return err
		}
		fromFile, skippedLines := parseFileSpecs(lines)
		specs = append(specs, fromFile...)
		skipped = append(skipped, skippedLines...)
	}
	for _, s := range skipped {
		a.println(a.out.Warn(fmt.Sprintf("skipping malformed entry %q, use 'path:content'", s)))
	}
	if len(specs) == 0 {
		return fmt.Errorf("no valid files provided to add")
	}

	result := a.git.AddFiles(args[0], specs)
	if !result.Success {
		for _, e := range result.Errors {
			a.println(a.out.Failure(e))
		}
		return fmt.Errorf("%s", result.Message)
	}
	a.println(a.out.Success(result.Message))
	return nil
}

// parseFileSpecs splits 'path:content' entries on the first colon. Blank
// entries are ignored and entries without a colon are returned as skipped.
func parseFileSpecs(entries []string) ([]gitcli.FileSpec, []string) {
	specs := []gitcli.FileSpec{}
	skipped := []string{}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		path, content, ok := strings.Cut(entry, ":")
		if !ok {
			skipped = append(skipped, entry)
			continue
		}
		specs = append(specs, gitcli.FileSpec{Path: strings.TrimSpace(path), Content: strings.TrimSpace(content)})
	}
	return specs, skipped
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	pattern, _ := cmd.Flags().GetString("pattern")
	entries, err := gitcli.ListFiles(args[0], pattern)
	if err != nil {
		return err
	}
	a.println(a.out.Listing(args[0], entries))
	return nil
}

func runRead(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	contents, err := gitcli.ReadFile(args[0], args[1])
	if err != nil {
		return err
	}
	a.println(fmt.Sprintf("Contents of '%s':\n%s", contents.FileName, contents.Contents))
	return nil
}
