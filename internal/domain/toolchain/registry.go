package toolchain

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
)

// Category groups tools by the area they operate on.
type Category string

const (
	CategoryRepositoryManagement Category = "repository_management"
	CategoryBranchOperations     Category = "branch_operations"
	CategoryFileOperations       Category = "file_operations"
	CategoryCommitOperations     Category = "commit_operations"
	CategoryGitHubAPIOperations  Category = "github_api_operations"
	CategoryConfiguration        Category = "configuration"
	CategoryQuery                Category = "query"
)

// ParamSpec describes one parameter accepted by a tool.
type ParamSpec struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
	Default  any    `json:"default,omitempty"`
}

// ToolContract is the registered description of a tool endpoint.
type ToolContract struct {
	Name               string                   `json:"name"`
	Category           Category                 `json:"category"`
	ToolType           ToolType                 `json:"tool_type"`
	Description        string                   `json:"description"`
	Method             string                   `json:"method"`
	Endpoint           string                   `json:"endpoint"`
	Parameters         []ParamSpec              `json:"parameters"`
	RequiresAuth       bool                     `json:"requires_auth"`
	SuggestedNextTools []SuggestedToolReference `json:"suggested_next_tools,omitempty"`
	Examples           []string                 `json:"examples,omitempty"`
}

// ParameterNames lists the parameter names in declaration order.
func (c ToolContract) ParameterNames() []string {
	names := make([]string, 0, len(c.Parameters))
	for _, p := range c.Parameters {
		names = append(names, p.Name)
	}
	return names
}

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Placeholders lists the {name} segments of the endpoint template.
func (c ToolContract) Placeholders() []string {
	matches := placeholderPattern.FindAllStringSubmatch(c.Endpoint, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}

// Expand fills the endpoint placeholders from params. Consumed params are
// removed from the returned remainder; params itself is left untouched.
func (c ToolContract) Expand(params map[string]any) (string, map[string]any, error) {
	rest := make(map[string]any, len(params))
	for k, v := range params {
		rest[k] = v
	}

	var missing []string
	path := placeholderPattern.ReplaceAllStringFunc(c.Endpoint, func(token string) string {
		name := token[1 : len(token)-1]
		value, ok := rest[name]
		if !ok || value == nil || fmt.Sprint(value) == "" {
			missing = append(missing, name)
			return token
		}
		delete(rest, name)
		return url.PathEscape(fmt.Sprint(value))
	})
	if len(missing) > 0 {
		return "", nil, fmt.Errorf("%w: %s", ErrMissingPathParam, strings.Join(missing, ", "))
	}
	return path, rest, nil
}

func (c ToolContract) clone() ToolContract {
	c.Parameters = slices.Clone(c.Parameters)
	c.SuggestedNextTools = slices.Clone(c.SuggestedNextTools)
	c.Examples = slices.Clone(c.Examples)
	return c
}

// Registry is an immutable set of tool contracts.
type Registry struct {
	order []string
	tools map[string]ToolContract
}

// NewRegistry validates the contracts and indexes them by name.
func NewRegistry(contracts ...ToolContract) (*Registry, error) {
	r := &Registry{
		order: make([]string, 0, len(contracts)),
		tools: make(map[string]ToolContract, len(contracts)),
	}
	for _, contract := range contracts {
		name := strings.TrimSpace(contract.Name)
		if name == "" {
			return nil, fmt.Errorf("tool contract without name")
		}
		if contract.Endpoint == "" {
			return nil, fmt.Errorf("tool %s has no endpoint", name)
		}
		if !contract.ToolType.Valid() {
			return nil, fmt.Errorf("tool %s has invalid type %d", name, int(contract.ToolType))
		}
		if _, exists := r.tools[name]; exists {
			return nil, fmt.Errorf("duplicate tool %s", name)
		}
		if contract.Method == "" {
			contract.Method = "POST"
		}
		contract.Method = strings.ToUpper(contract.Method)
		contract.Name = name
		r.tools[name] = contract.clone()
		r.order = append(r.order, name)
	}
	return r, nil
}

// MustNewRegistry is NewRegistry for static catalogs.
func MustNewRegistry(contracts ...ToolContract) *Registry {
	r, err := NewRegistry(contracts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the contract registered under name.
func (r *Registry) Lookup(name string) (ToolContract, bool) {
	contract, ok := r.tools[name]
	if !ok {
		return ToolContract{}, false
	}
	return contract.clone(), true
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.tools[name]
	return ok
}

// Names returns tool names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Contracts returns every contract in registration order.
func (r *Registry) Contracts() []ToolContract {
	out := make([]ToolContract, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name].clone())
	}
	return out
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.order)
}
