package toolchain

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// WorkflowStep is one tool call in a workflow.
type WorkflowStep struct {
	Tool     string         `json:"tool" yaml:"tool"`
	Required bool           `json:"required" yaml:"required"`
	Params   map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// UnmarshalYAML defaults Required to true when the key is absent.
func (s *WorkflowStep) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Tool     string         `yaml:"tool"`
		Required *bool          `yaml:"required"`
		Params   map[string]any `yaml:"params"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	s.Tool = raw.Tool
	s.Required = raw.Required == nil || *raw.Required
	s.Params = raw.Params
	return nil
}

// Workflow is a named ordered list of steps.
type Workflow struct {
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Steps       []WorkflowStep `json:"steps" yaml:"steps"`
}

// WorkflowStatus is the terminal state of a workflow run.
type WorkflowStatus string

const (
	WorkflowStatusCompleted WorkflowStatus = "completed"
	WorkflowStatusFailed    WorkflowStatus = "failed"
)

// WorkflowReport is returned by ExecuteWorkflow.
type WorkflowReport struct {
	Workflow       string         `json:"workflow"`
	Status         WorkflowStatus `json:"status"`
	FailedStep     string         `json:"failed_step"`
	CompletedSteps []string       `json:"completed_steps"`
	Errors         []ErrorRecord  `json:"errors"`
	StepsExecuted  int            `json:"steps_executed"`
	Results        []*ToolResult  `json:"results"`
	Summary        *Summary       `json:"summary"`
}

// MarshalJSON writes the keys of the report's status. Lists are never null.
func (r WorkflowReport) MarshalJSON() ([]byte, error) {
	out := map[string]any{"workflow": r.Workflow, "status": r.Status}
	if r.Status == WorkflowStatusFailed {
		out["failed_step"] = r.FailedStep
		out["completed_steps"] = nonNil(r.CompletedSteps)
		out["errors"] = nonNil(r.Errors)
		return json.Marshal(out)
	}
	out["steps_executed"] = r.StepsExecuted
	out["results"] = nonNil(r.Results)
	out["summary"] = r.Summary
	return json.Marshal(out)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

// DefaultWorkflows returns the built-in workflows.
func DefaultWorkflows() []Workflow {
	return []Workflow{
		{
			Name:        "create_and_setup_repo",
			Description: "Create a GitHub repository, initialize it locally and publish a first commit",
			Steps: []WorkflowStep{
				{Tool: "create_repository", Required: true},
				{Tool: "initialize_repository", Required: true},
				{Tool: "generate_gitignore", Required: false},
				{Tool: "add_file", Required: false, Params: map[string]any{"file_name": "README.md"}},
				{Tool: "commit_changes", Required: true},
				{Tool: "push_changes", Required: true},
			},
		},
		{
			Name:        "feature_development",
			Description: "Branch, add files, commit, push and open a pull request",
			Steps: []WorkflowStep{
				{Tool: "create_branch", Required: true},
				{Tool: "add_multiple_files", Required: true},
				{Tool: "commit_changes", Required: true},
				{Tool: "push_changes", Required: true},
				{Tool: "create_pull_request", Required: true},
			},
		},
		{
			Name:        "code_review",
			Description: "Review, approve and merge an open pull request. Runs stop at review_changes until review tools are registered",
			Steps: []WorkflowStep{
				{Tool: "list_pull_requests", Required: true},
				{Tool: "review_changes", Required: true},
				{Tool: "add_comments", Required: false},
				{Tool: "approve_pr", Required: true},
				{Tool: "merge_branches", Required: true},
			},
		},
	}
}

type workflowFile struct {
	Workflows []Workflow `yaml:"workflows"`
}

// LoadWorkflows reads workflow definitions from a YAML file of the form
// `workflows: [{name, description, steps: [{tool, required, params}]}]`.
func LoadWorkflows(path string) ([]Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workflows file: %w", err)
	}
	return ParseWorkflows(data)
}

// ParseWorkflows decodes YAML workflow definitions.
func ParseWorkflows(data []byte) ([]Workflow, error) {
	var file workflowFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode workflows: %w", err)
	}
	for i, wf := range file.Workflows {
		if wf.Name == "" {
			return nil, fmt.Errorf("workflow %d has no name", i)
		}
		if len(wf.Steps) == 0 {
			return nil, fmt.Errorf("workflow %s has no steps", wf.Name)
		}
		for j, step := range wf.Steps {
			if step.Tool == "" {
				return nil, fmt.Errorf("workflow %s step %d has no tool", wf.Name, j)
			}
		}
	}
	return file.Workflows, nil
}

// MergeWorkflows returns base with overrides applied. An override with the
// same name replaces the base entry in place; new names are appended.
func MergeWorkflows(base, overrides []Workflow) []Workflow {
	out := make([]Workflow, 0, len(base)+len(overrides))
	index := make(map[string]int, len(base))
	for _, wf := range base {
		index[wf.Name] = len(out)
		out = append(out, wf)
	}
	for _, wf := range overrides {
		if pos, ok := index[wf.Name]; ok {
			out[pos] = wf
			continue
		}
		index[wf.Name] = len(out)
		out = append(out, wf)
	}
	return out
}

// UnregisteredSteps reports, per workflow, the step tools missing from registry.
func UnregisteredSteps(workflows []Workflow, registry *Registry) map[string][]string {
	missing := map[string][]string{}
	for _, wf := range workflows {
		for _, step := range wf.Steps {
			if !registry.Has(step.Tool) {
				missing[wf.Name] = append(missing[wf.Name], step.Tool)
			}
		}
	}
	return missing
}

// WorkflowEngine runs named workflows against a ToolExecutor.
type WorkflowEngine struct {
	tools     ToolExecutor
	order     []string
	workflows map[string]Workflow
	observer  Observer
	log       zerolog.Logger
}

// NewWorkflowEngine indexes workflows by name. Later duplicates win.
func NewWorkflowEngine(tools ToolExecutor, workflows []Workflow, log zerolog.Logger) *WorkflowEngine {
	e := &WorkflowEngine{
		tools:     tools,
		workflows: make(map[string]Workflow, len(workflows)),
		observer:  nopObserver{},
		log:       log.With().Str("component", "workflow-engine").Logger(),
	}
	for _, wf := range workflows {
		if _, exists := e.workflows[wf.Name]; !exists {
			e.order = append(e.order, wf.Name)
		}
		e.workflows[wf.Name] = wf
	}
	return e
}

// WithObserver attaches an outcome observer.
func (e *WorkflowEngine) WithObserver(observer Observer) *WorkflowEngine {
	if observer != nil {
		e.observer = observer
	}
	return e
}

// Workflows lists registered workflows in registration order.
func (e *WorkflowEngine) Workflows() []Workflow {
	out := make([]Workflow, 0, len(e.order))
	for _, name := range e.order {
		out = append(out, e.workflows[name])
	}
	return out
}

// Lookup returns the named workflow.
func (e *WorkflowEngine) Lookup(name string) (Workflow, bool) {
	wf, ok := e.workflows[name]
	return wf, ok
}

// ExecuteWorkflow runs each step in order, threading object payloads forward
// as parameters for the following steps.
func (e *WorkflowEngine) ExecuteWorkflow(ctx context.Context, name string, initialParams map[string]any, ec *ExecutionContext) (*WorkflowReport, error) {
	wf, ok := e.workflows[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownWorkflow, name)
	}

	params := copyParams(initialParams)
	var results []*ToolResult

	for idx, step := range wf.Steps {
		stepParams := copyParams(params)
		for k, v := range step.Params {
			stepParams[k] = v
		}

		result := e.tools.Execute(ctx, step.Tool, stepParams, ec)
		if result == nil {
			if step.Required {
				e.log.Error().Str("workflow", name).Str("step", step.Tool).Int("index", idx).Msg("required workflow step failed")
				completed := make([]string, 0, len(results))
				for _, r := range results {
					completed = append(completed, r.ToolName)
				}
				e.observer.WorkflowCompleted(name, string(WorkflowStatusFailed))
				return &WorkflowReport{
					Workflow:       name,
					Status:         WorkflowStatusFailed,
					FailedStep:     step.Tool,
					CompletedSteps: completed,
					Errors:         ec.Errors(),
				}, nil
			}
			e.log.Warn().Str("workflow", name).Str("step", step.Tool).Int("index", idx).Msg("optional workflow step failed")
			continue
		}

		results = append(results, result)
		if payload, ok := result.PayloadObject(); ok {
			for k, v := range payload {
				params[k] = v
			}
		} else {
			e.log.Warn().Str("workflow", name).Str("step", step.Tool).Msg("step payload is not an object, parameters not updated")
		}
	}

	summary := ec.Summary()
	e.observer.WorkflowCompleted(name, string(WorkflowStatusCompleted))
	return &WorkflowReport{
		Workflow:      name,
		Status:        WorkflowStatusCompleted,
		StepsExecuted: len(results),
		Results:       results,
		Summary:       &summary,
	}, nil
}

// WorkflowNames returns the sorted names of workflows.
func WorkflowNames(workflows []Workflow) []string {
	names := make([]string, 0, len(workflows))
	for _, wf := range workflows {
		names = append(names, wf.Name)
	}
	sort.Strings(names)
	return names
}
