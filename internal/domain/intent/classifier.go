// Package intent maps free-text requests to registered tool names.
package intent

import "strings"

// Rule matches when every keyword occurs in the lower-cased query.
type Rule struct {
	Keywords []string
	Tool     string
}

// Matches reports whether all keywords of the rule are present in query.
func (r Rule) Matches(query string) bool {
	if len(r.Keywords) == 0 {
		return false
	}
	for _, keyword := range r.Keywords {
		if !strings.Contains(query, keyword) {
			return false
		}
	}
	return true
}

func rule(tool string, keywords ...string) Rule {
	return Rule{Keywords: keywords, Tool: tool}
}

// DefaultRules is the ordered keyword table. The first matching rule wins.
func DefaultRules() []Rule {
	return []Rule{
		rule("create_repository", "create", "repository", "repo"),
		rule("create_repository", "create", "github", "repo"),
		rule("initialize_repository", "initialize", "git"),
		rule("initialize_repository", "init", "repo"),
		rule("clone_repository", "clone", "repository"),
		rule("clone_repository", "clone", "github"),

		rule("create_branch", "create", "branch"),
		rule("create_branch", "new", "branch"),
		rule("list_branches", "list", "branch"),
		rule("list_branches", "show", "branch"),
		rule("merge_branches", "merge", "branch"),
		rule("merge_branches", "merge", "into"),

		rule("add_file", "add", "file"),
		rule("add_file", "create", "file"),
		rule("add_multiple_files", "add", "multiple", "files"),
		rule("add_multiple_files", "add", "files"),
		rule("list_files", "list", "files"),
		rule("list_files", "show", "files"),
		rule("read_file", "read", "file"),
		rule("read_file", "show", "content"),
		rule("generate_gitignore", "gitignore"),

		rule("commit_changes", "commit", "change"),
		rule("commit_changes", "commit", "message"),
		rule("push_changes", "push", "change"),
		rule("push_changes", "push", "github"),
		rule("stage_all_changes", "stage", "all"),
		rule("stage_all_changes", "add", "all"),

		rule("create_issue", "create", "issue"),
		rule("create_issue", "open", "issue"),
		rule("create_pull_request", "create", "pull", "request"),
		rule("create_pull_request", "create", "pr"),
		rule("list_repositories", "list", "repo"),
		rule("list_repositories", "show", "repo"),

		rule("setup_credentials", "setup", "credential"),
		rule("setup_credentials", "configure", "github"),
		rule("setup_credentials", "set", "credential"),

		rule("check_status", "status"),
		rule("check_status", "git", "status"),
	}
}

// KeywordClassifier is a first-match-wins keyword matcher.
type KeywordClassifier struct {
	rules []Rule
}

// NewKeywordClassifier uses DefaultRules when no rules are given.
func NewKeywordClassifier(rules ...Rule) *KeywordClassifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	normalized := make([]Rule, 0, len(rules))
	for _, r := range rules {
		keywords := make([]string, 0, len(r.Keywords))
		for _, k := range r.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				keywords = append(keywords, k)
			}
		}
		normalized = append(normalized, Rule{Keywords: keywords, Tool: r.Tool})
	}
	return &KeywordClassifier{rules: normalized}
}

// Classify returns the tool of the first rule matching query.
func (c *KeywordClassifier) Classify(query string) (string, bool) {
	lowered := strings.ToLower(query)
	for _, r := range c.rules {
		if r.Matches(lowered) {
			return r.Tool, true
		}
	}
	return "", false
}

// Rules returns the ordered rule table.
func (c *KeywordClassifier) Rules() []Rule {
	return append([]Rule(nil), c.rules...)
}
