package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var branchCmd = &cobra.Command{
	Use:   "branch <path> <name>",
	Short: "Create a branch and check it out",
	Args:  cobra.ExactArgs(2),
	RunE:  runBranch,
}

var branchesCmd = &cobra.Command{
	Use:   "branches <path>",
	Short: "List branches",
	Args:  cobra.ExactArgs(1),
	RunE:  runBranches,
}

var currentBranchCmd = &cobra.Command{
	Use:   "current-branch <path>",
	Short: "Show the checked out branch",
	Args:  cobra.ExactArgs(1),
	RunE:  runCurrentBranch,
}

var checkoutCmd = &cobra.Command{
	Use:   "checkout <path> <name>",
	Short: "Switch branches, tracking origin/<name> when there is no local branch",
	Args:  cobra.ExactArgs(2),
	RunE:  runCheckout,
}

var commitCmd = &cobra.Command{
	Use:   "commit <path>",
	Short: "Stage and commit all changes",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommit,
}

var pushCmd = &cobra.Command{
	Use:   "push <path>",
	Short: "Push commits to a remote",
	Args:  cobra.ExactArgs(1),
	RunE:  runPush,
}

var mergeCmd = &cobra.Command{
	Use:   "merge <path> <source> [target]",
	Short: "Merge source into target (main by default)",
	Args:  cobra.RangeArgs(2, 3),
	RunE:  runMerge,
}

var statusCmd = &cobra.Command{
	Use:   "status <path>",
	Short: "Show the repository status",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	branchesCmd.Flags().Bool("all", false, "Include remote tracking branches")

	commitCmd.Flags().StringP("message", "m", "", "Commit message")
	_ = commitCmd.MarkFlagRequired("message")
	commitCmd.Flags().Bool("push", false, "Push the current branch after committing")

	pushCmd.Flags().String("remote", "origin", "Remote name")
	pushCmd.Flags().String("branch", "", "Branch to push (current branch when empty)")

	mergeCmd.Flags().Bool("push", false, "Push the target branch after merging")
}

func runBranch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := a.git.CreateBranch(cmd.Context(), args[0], args[1]); err != nil {
		return err
	}
	a.println(a.out.Success(fmt.Sprintf("Branch '%s' created in %s", args[1], args[0])))
	return nil
}

func runBranches(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	all, _ := cmd.Flags().GetBool("all")
	branches, err := a.git.Branches(cmd.Context(), args[0], all)
	if err != nil {
		return err
	}
	a.println(a.out.Branches(branches))
	return nil
}

func runCurrentBranch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	branch, err := a.git.CurrentBranch(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	a.println(fmt.Sprintf("Current branch: %s", branch))
	return nil
}

func runCheckout(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if err := a.git.Checkout(cmd.Context(), args[0], args[1]); err != nil {
		return fmt.Errorf("branch '%s' not found: %w", args[1], err)
	}
	a.println(a.out.Success(fmt.Sprintf("Switched to branch '%s'", args[1])))
	return nil
}

func runCommit(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	message, _ := cmd.Flags().GetString("message")
	committed, err := a.git.Commit(ctx, args[0], message)
	if err != nil {
		return err
	}
	if !committed {
		a.println(a.out.Warn("No changes to commit"))
		return nil
	}
	a.println(a.out.Success(fmt.Sprintf("Changes committed with message: '%s'", message)))

	if push, _ := cmd.Flags().GetBool("push"); push {
		branch, err := a.git.Push(ctx, args[0], "origin", "")
		if err != nil {
			return err
		}
		a.println(a.out.Success(fmt.Sprintf("Changes pushed to origin/%s", branch)))
	}
	return nil
}

func runPush(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	remote, _ := cmd.Flags().GetString("remote")
	branch, _ := cmd.Flags().GetString("branch")
	pushed, err := a.git.Push(cmd.Context(), args[0], remote, branch)
	if err != nil {
		return err
	}
	a.println(a.out.Success(fmt.Sprintf("Pushed %s to %s", pushed, remote)))
	return nil
}

func runMerge(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	path, source, target := args[0], args[1], "main"
	if len(args) == 3 {
		target = args[2]
	}

	merged, err := a.git.Merge(ctx, path, source, target)
	if err != nil {
		return err
	}
	if !merged {
		return fmt.Errorf("merge conflict between '%s' and '%s'; the merge was aborted", source, target)
	}
	a.println(a.out.Success(fmt.Sprintf("Merged '%s' into '%s'", source, target)))

	if push, _ := cmd.Flags().GetBool("push"); push {
		if _, err := a.git.Push(ctx, path, "origin", target); err != nil {
			return err
		}
		a.println(a.out.Success(fmt.Sprintf("Merged changes pushed to origin/%s", target)))
	}
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	status, err := a.git.Status(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprint(a.stdout, status)
	return nil
}
