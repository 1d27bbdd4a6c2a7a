package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/janhq/git-automation-server/internal/domain/toolchain"
)

var runCmd = &cobra.Command{
	Use:   `run "<request>"`,
	Short: "Classify a request, run the matching tool and follow its suggestions",
	Long: `Classify a natural language request, run the matching tool and chain the
tools it suggests.

Parameters are given as key=value (string) or key:=value (JSON, for booleans,
numbers and lists). With --remote the tools run on a git automation server
instead of in this process.

Examples:
  gitauto run "commit my changes" --param repo_path=./demo --param commit_message="Fix typo"
  gitauto run "create a repository" --param repo_name=demo --param private:=false --interactive`,
	Args: cobra.ExactArgs(1),
	RunE: runRequest,
}

var workflowCmd = &cobra.Command{
	Use:   "workflow <name>",
	Short: "Run a named workflow",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkflow,
}

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the registered tools and workflows",
	Args:  cobra.NoArgs,
	RunE:  runTools,
}

func init() {
	for _, cmd := range []*cobra.Command{runCmd, workflowCmd} {
		cmd.Flags().StringArrayP("param", "p", nil, "Tool parameter as key=value or key:=json, repeatable")
		cmd.Flags().String("remote", "", "Base URL of a git automation server to run the tools on")
		cmd.Flags().String("token", "", "Bearer token for --remote")
		cmd.Flags().String("user", "", "User id recorded on the results")
		cmd.Flags().Bool("json", false, "Print the raw JSON result")
	}
	runCmd.Flags().String("strategy", "sequential", "Chain strategy: sequential, parallel, conditional or interactive")
	runCmd.Flags().Bool("interactive", false, "Confirm each suggested tool before it runs")
}

func runRequest(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	params, err := parseParams(mustStringArray(cmd, "param"))
	if err != nil {
		return err
	}
	rawStrategy, _ := cmd.Flags().GetString("strategy")
	if interactive, _ := cmd.Flags().GetBool("interactive"); interactive {
		rawStrategy = string(toolchain.StrategyInteractive)
	}
	strategy, err := toolchain.ParseStrategy(rawStrategy)
	if err != nil {
		return err
	}

	orchestrator, err := a.orchestrator(mustString(cmd, "remote"), mustString(cmd, "token"))
	if err != nil {
		return err
	}
	req := toolchain.Request{
		Query:      args[0],
		UserID:     mustString(cmd, "user"),
		Parameters: params,
		Strategy:   strategy,
	}
	if strategy == toolchain.StrategyInteractive {
		req.Confirm = a.confirmer()
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.ExecutionTimeout)
	defer cancel()
	envelope := orchestrator.ExecuteRequest(ctx, req)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if err := a.printJSON(envelope); err != nil {
			return err
		}
	} else {
		a.println(a.out.Envelope(envelope))
	}
	if envelope.Status == toolchain.StatusFailed {
		return errors.New(envelope.Error)
	}
	return nil
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	params, err := parseParams(mustStringArray(cmd, "param"))
	if err != nil {
		return err
	}
	orchestrator, err := a.orchestrator(mustString(cmd, "remote"), mustString(cmd, "token"))
	if err != nil {
		return err
	}

	missing := toolchain.UnregisteredSteps(orchestrator.Workflows().Workflows(), orchestrator.Registry())
	if tools := missing[args[0]]; len(tools) > 0 {
		a.println(a.out.Warn(fmt.Sprintf("workflow %s uses unregistered tools: %s", args[0], strings.Join(tools, ", "))))
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.ExecutionTimeout)
	defer cancel()
	report, err := orchestrator.ExecuteWorkflow(ctx, args[0], params, mustString(cmd, "user"), "")
	if errors.Is(err, toolchain.ErrUnknownWorkflow) {
		names := toolchain.WorkflowNames(orchestrator.Workflows().Workflows())
		return fmt.Errorf("%w; available: %s", err, strings.Join(names, ", "))
	}
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		if err := a.printJSON(report); err != nil {
			return err
		}
	} else {
		a.println(a.out.Report(report))
	}
	if report.Status == toolchain.WorkflowStatusFailed {
		return fmt.Errorf("workflow %s failed at %s", report.Workflow, report.FailedStep)
	}
	return nil
}

func runTools(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	orchestrator, err := a.orchestrator("", "")
	if err != nil {
		return err
	}
	a.println(a.out.Tools(orchestrator.Registry().Contracts()))
	a.println("")
	a.println("Workflows: " + strings.Join(toolchain.WorkflowNames(orchestrator.Workflows().Workflows()), ", "))
	return nil
}

// parseParams reads key=value pairs as strings and key:=value pairs as JSON.
func parseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		if key, raw, ok := strings.Cut(pair, ":="); ok && !strings.Contains(key, "=") {
			if strings.TrimSpace(key) == "" {
				return nil, fmt.Errorf("invalid parameter %q, use key:=json", pair)
			}
			var value any
			if err := json.Unmarshal([]byte(raw), &value); err != nil {
				return nil, fmt.Errorf("parameter %s: invalid JSON %q", key, raw)
			}
			params[strings.TrimSpace(key)] = value
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid parameter %q, use key=value", pair)
		}
		params[strings.TrimSpace(key)] = value
	}
	return params, nil
}

func (a *app) printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	a.println(string(out))
	return nil
}

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func mustStringArray(cmd *cobra.Command, name string) []string {
	v, _ := cmd.Flags().GetStringArray(name)
	return v
}
