// Package gitignore detects project types and produces .gitignore files, either
// generated locally or downloaded from the github/gitignore template catalogue.
package gitignore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

const (
	FileName    = ".gitignore"
	TypeGeneral = "general"
)

var templates = map[string]string{
	"python":  "Python",
	"node":    "Node",
	"react":   "Node",
	"java":    "Java",
	"csharp":  "VisualStudio",
	"cpp":     "C++",
	"go":      "Go",
	"rust":    "Rust",
	"ruby":    "Ruby",
	"php":     "Laravel",
	"general": "Global/macOS",
}

// TemplateName maps a project type to its github/gitignore template. Unknown
// types fall back to Python.
func TemplateName(projectType string) string {
	if name, ok := templates[strings.ToLower(strings.TrimSpace(projectType))]; ok {
		return name
	}
	return "Python"
}

// DetectProjectType inspects the top level of repoPath for well known
// manifests. It always returns at least one type.
func DetectProjectType(repoPath string) []string {
	entries, err := os.ReadDir(repoPath)
	if err != nil {
		return []string{TypeGeneral}
	}
	files := map[string]bool{}
	hasDotnet := false
	for _, e := range entries {
		files[e.Name()] = true
		if strings.HasSuffix(e.Name(), ".csproj") || strings.HasSuffix(e.Name(), ".sln") {
			hasDotnet = true
		}
	}
	anyOf := func(names ...string) bool {
		for _, n := range names {
			if files[n] {
				return true
			}
		}
		return false
	}

	types := []string{}
	if anyOf("requirements.txt", "setup.py", "Pipfile", "pyproject.toml") {
		types = append(types, "python")
	}
	if files["package.json"] {
		types = append(types, "node")
		if data, err := os.ReadFile(filepath.Join(repoPath, "package.json")); err == nil && strings.Contains(string(data), "react") {
			types = append(types, "react")
		}
	}
	if anyOf("pom.xml", "build.gradle") {
		types = append(types, "java")
	}
	if hasDotnet {
		types = append(types, "csharp")
	}
	if files["go.mod"] {
		types = append(types, "go")
	}
	if files["Cargo.toml"] {
		types = append(types, "rust")
	}
	if files["Gemfile"] {
		types = append(types, "ruby")
	}
	if files["composer.json"] {
		types = append(types, "php")
	}

	if len(types) == 0 {
		types = append(types, TypeGeneral)
	}
	return types
}

type section struct {
	title    string
	patterns []string
	when     func(map[string]bool) bool
}

var sections = []section{
	{
		title:    "General",
		patterns: []string{".DS_Store", "*.log", "*.tmp", "*.temp", ".env", ".env.*", "!.env.example"},
	},
	{
		title: "Python",
		patterns: []string{
			"__pycache__/", "*.py[cod]", "*$py.class", "*.so", ".Python", "venv/", "env/", "ENV/", ".venv/",
			"pip-log.txt", "pip-delete-this-directory.txt", ".pytest_cache/", ".coverage", "*.egg-info/", "dist/", "build/",
		},
		when: func(t map[string]bool) bool { return t["python"] },
	},
	{
		title:    "Node.js",
		patterns: []string{"node_modules/", "npm-debug.log*", "yarn-debug.log*", "yarn-error.log*", ".npm", ".yarn-integrity"},
		when:     func(t map[string]bool) bool { return t["node"] || t["react"] },
	},
	{
		title:    "Java",
		patterns: []string{"*.class", "*.jar", "*.war", "*.ear", "target/", ".classpath", ".project", ".settings/"},
		when:     func(t map[string]bool) bool { return t["java"] },
	},
	{
		title:    "IDEs",
		patterns: []string{".vscode/", ".idea/", "*.iml", "*.sublime-*"},
	},
}

// Content renders a .gitignore for the given project types.
func Content(projectTypes []string) string {
	set := map[string]bool{}
	for _, t := range projectTypes {
		set[strings.ToLower(t)] = true
	}
	var lines []string
	for _, s := range sections {
		if s.when != nil && !s.when(set) {
			continue
		}
		lines = append(lines, "# "+s.title)
		lines = append(lines, s.patterns...)
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// Generate writes a .gitignore into repoPath. An empty projectType triggers
// detection. It returns the written path.
func Generate(repoPath, projectType string) (string, error) {
	types := DetectProjectType(repoPath)
	if strings.TrimSpace(projectType) != "" {
		types = []string{projectType}
	}
	path := filepath.Join(repoPath, FileName)
	if err := os.WriteFile(path, []byte(Content(types)), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", FileName, err)
	}
	return path, nil
}

// Downloader fetches templates over HTTP and falls back to Generate.
type Downloader struct {
	client *resty.Client
	log    zerolog.Logger
}

// NewDownloader creates a downloader against baseURL, typically
// https://raw.githubusercontent.com/github/gitignore/main.
func NewDownloader(baseURL string, timeout time.Duration, log zerolog.Logger) *Downloader {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout)
	return &Downloader{
		client: client,
		log:    log.With().Str("component", "gitignore-downloader").Logger(),
	}
}

// Download writes the template for projectType into repoPath. An empty
// projectType uses the first detected type. Any download failure falls back to
// a generated file. The returned source is the template name, or "generated".
func (d *Downloader) Download(ctx context.Context, repoPath, projectType string) (path string, source string, err error) {
	if strings.TrimSpace(projectType) == "" {
		projectType = DetectProjectType(repoPath)[0]
	}
	template := TemplateName(projectType)

	resp, reqErr := d.client.R().
		SetContext(ctx).
		Get("/" + template + FileName)
	switch {
	case reqErr != nil:
		d.log.Warn().Err(reqErr).Str("template", template).Msg("template download failed, generating .gitignore")
	case resp.StatusCode() != 200:
		d.log.Warn().Int("status", resp.StatusCode()).Str("template", template).Msg("template not available, generating .gitignore")
	default:
		path = filepath.Join(repoPath, FileName)
		if err := os.WriteFile(path, resp.Body(), 0o644); err != nil {
			return "", "", fmt.Errorf("write %s: %w", FileName, err)
		}
		d.log.Info().Str("template", template).Msg("downloaded .gitignore template")
		return path, template, nil
	}

	path, err = Generate(repoPath, "")
	if err != nil {
		return "", "", err
	}
	return path, "generated", nil
}
