package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/janhq/git-automation-server/internal/domain/toolchain"
	"github.com/janhq/git-automation-server/internal/infrastructure/gitcli"
)

// Renderer formats command output for the terminal.
type Renderer struct {
	pretty bool
}

// NewRenderer creates a renderer. Without pretty, output is plain text.
func NewRenderer(pretty bool) *Renderer {
	return &Renderer{pretty: pretty}
}

func (r *Renderer) Success(msg string) string {
	if !r.pretty {
		return msg
	}
	return color.GreenString("✓ ") + msg
}

func (r *Renderer) Warn(msg string) string {
	if !r.pretty {
		return "warning: " + msg
	}
	return color.YellowString("! ") + msg
}

func (r *Renderer) Failure(msg string) string {
	if !r.pretty {
		return "error: " + msg
	}
	return color.RedString("✗ ") + msg
}

func (r *Renderer) heading(sb *strings.Builder, title string) {
	if r.pretty {
		sb.WriteString(color.CyanString(title) + "\n")
		sb.WriteString(strings.Repeat("─", 60) + "\n")
		return
	}
	sb.WriteString(title + "\n")
}

// Branches lists branches, marking the current one.
func (r *Renderer) Branches(branches []gitcli.Branch) string {
	if len(branches) == 0 {
		return "No branches found"
	}
	var sb strings.Builder
	for _, b := range branches {
		switch {
		case b.Current && r.pretty:
			fmt.Fprintf(&sb, "* %s\n", color.GreenString(b.Name))
		case b.Current:
			fmt.Fprintf(&sb, "* %s\n", b.Name)
		case b.Remote && r.pretty:
			fmt.Fprintf(&sb, "  %s\n", color.RedString("remotes/"+b.Name))
		case b.Remote:
			fmt.Fprintf(&sb, "  remotes/%s\n", b.Name)
		default:
			fmt.Fprintf(&sb, "  %s\n", b.Name)
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// Listing renders the entries of a directory.
func (r *Renderer) Listing(path string, entries []string) string {
	var sb strings.Builder
	r.heading(&sb, fmt.Sprintf("Contents of '%s':", path))
	for _, e := range entries {
		fmt.Fprintf(&sb, "  - %s\n", e)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// Tools renders the registry grouped in registration order.
func (r *Renderer) Tools(contracts []toolchain.ToolContract) string {
	var sb strings.Builder
	r.heading(&sb, fmt.Sprintf("Registered tools (%d)", len(contracts)))
	for _, c := range contracts {
		route := fmt.Sprintf("%s %s", c.Method, c.Endpoint)
		if r.pretty {
			fmt.Fprintf(&sb, "%-24s %s\n", color.YellowString(c.Name), color.HiBlackString(route))
		} else {
			fmt.Fprintf(&sb, "%-24s %s\n", c.Name, route)
		}
		fmt.Fprintf(&sb, "    %s\n", c.Description)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// Envelope renders the outcome of an orchestrated request.
func (r *Renderer) Envelope(env *toolchain.Envelope) string {
	var sb strings.Builder
	if env.Status == toolchain.StatusFailed {
		sb.WriteString(r.Failure(env.Error) + "\n")
		if len(env.Suggestions) > 0 {
			fmt.Fprintf(&sb, "Available tools: %s\n", strings.Join(env.Suggestions, ", "))
		}
		if env.Context != nil {
			r.summary(&sb, env.Context)
		}
		return strings.TrimSuffix(sb.String(), "\n")
	}

	sb.WriteString(r.Success(fmt.Sprintf("%s completed (%d tools)", env.InitialTool, env.TotalTools)) + "\n")
	if env.ExecutionSummary != nil {
		r.summary(&sb, env.ExecutionSummary)
	}
	if env.FinalResult != nil {
		fmt.Fprintf(&sb, "Result: %s\n", env.FinalResult.Metadata.Description)
		if payload := r.payload(env.FinalResult); payload != "" {
			sb.WriteString(payload + "\n")
		}
		for _, s := range env.FinalResult.Metadata.SuggestedTools {
			if s.HasHint() {
				fmt.Fprintf(&sb, "  next: %s (%s)\n", s.ToolNameHint, s.Reason)
			}
		}
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

// payload renders a string payload as is and anything else as indented JSON.
func (r *Renderer) payload(result *toolchain.ToolResult) string {
	var v any
	if err := result.DecodePayload(&v); err != nil || v == nil {
		return ""
	}
	switch v := v.(type) {
	case string:
		return strings.TrimSuffix(v, "\n")
	case map[string]any:
		if len(v) == 0 {
			return ""
		}
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(out)
}

func (r *Renderer) summary(sb *strings.Builder, s *toolchain.Summary) {
	chain := strings.Join(s.ToolChain, " → ")
	if !r.pretty {
		chain = strings.Join(s.ToolChain, " -> ")
	}
	fmt.Fprintf(sb, "Chain: %s\n", chain)
	errs := fmt.Sprintf("%d", s.Errors)
	if r.pretty && s.Errors > 0 {
		errs = color.RedString(errs)
	}
	fmt.Fprintf(sb, "Executed %d tools in %.2fs, errors: %s\n", s.TotalToolsExecuted, s.Duration, errs)
}

// Report renders a workflow report.
func (r *Renderer) Report(report *toolchain.WorkflowReport) string {
	var sb strings.Builder
	if report.Status == toolchain.WorkflowStatusFailed {
		sb.WriteString(r.Failure(fmt.Sprintf("workflow %s failed at %s", report.Workflow, report.FailedStep)) + "\n")
		for _, step := range report.CompletedSteps {
			fmt.Fprintf(&sb, "  done: %s\n", step)
		}
		for _, e := range report.Errors {
			fmt.Fprintf(&sb, "  %s: %s\n", e.Tool, e.Error)
		}
		return strings.TrimSuffix(sb.String(), "\n")
	}
	sb.WriteString(r.Success(fmt.Sprintf("workflow %s completed (%d steps)", report.Workflow, report.StepsExecuted)) + "\n")
	for _, result := range report.Results {
		fmt.Fprintf(&sb, "  %s: %s\n", result.ToolName, result.Metadata.Description)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}
