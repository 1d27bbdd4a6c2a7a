package gitignore_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/git-automation-server/internal/infrastructure/gitignore"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func TestDetectProjectType(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		want  []string
	}{
		{"empty", nil, []string{"general"}},
		{"python", map[string]string{"pyproject.toml": ""}, []string{"python"}},
		{"react", map[string]string{"package.json": `{"dependencies":{"react":"18"}}`}, []string{"node", "react"}},
		{"node only", map[string]string{"package.json": `{}`}, []string{"node"}},
		{"polyglot", map[string]string{"go.mod": "", "Cargo.toml": "", "App.csproj": ""}, []string{"csharp", "go", "rust"}},
		{"ruby and php", map[string]string{"Gemfile": "", "composer.json": ""}, []string{"ruby", "php"}},
		{"java", map[string]string{"build.gradle": ""}, []string{"java"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tt.files)
			assert.Equal(t, tt.want, gitignore.DetectProjectType(dir))
		})
	}

	assert.Equal(t, []string{"general"}, gitignore.DetectProjectType(filepath.Join(t.TempDir(), "missing")))
}

func TestContent(t *testing.T) {
	content := gitignore.Content([]string{"python", "react"})
	assert.True(t, strings.HasPrefix(content, "# General\n.DS_Store\n"))
	assert.Contains(t, content, "# Python\n__pycache__/")
	assert.Contains(t, content, "# Node.js\nnode_modules/")
	assert.NotContains(t, content, "# Java")
	assert.True(t, strings.HasSuffix(content, "# IDEs\n.vscode/\n.idea/\n*.iml\n*.sublime-*\n"))

	general := gitignore.Content([]string{"general"})
	assert.Equal(t, 2, strings.Count(general, "# "))
}

func TestTemplateName(t *testing.T) {
	assert.Equal(t, "Node", gitignore.TemplateName("React"))
	assert.Equal(t, "C++", gitignore.TemplateName("cpp"))
	assert.Equal(t, "Global/macOS", gitignore.TemplateName("general"))
	assert.Equal(t, "Python", gitignore.TemplateName("cobol"))
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"pom.xml": ""})

	path, err := gitignore.Generate(dir, "")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Java")

	path, err = gitignore.Generate(dir, "python")
	require.NoError(t, err)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Python")
	assert.NotContains(t, string(data), "# Java")
}

func TestDownloader(t *testing.T) {
	var requested []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
		if r.URL.Path == "/Go.gitignore" {
			_, _ = w.Write([]byte("/bin\n*.test\n"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	downloader := gitignore.NewDownloader(server.URL+"/", 5*time.Second, zerolog.Nop())

	t.Run("template found", func(t *testing.T) {
		dir := t.TempDir()
		path, source, err := downloader.Download(context.Background(), dir, "go")
		require.NoError(t, err)
		assert.Equal(t, "Go", source)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "/bin\n*.test\n", string(data))
	})

	t.Run("auto detected and missing falls back", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"Gemfile": ""})
		path, source, err := downloader.Download(context.Background(), dir, "")
		require.NoError(t, err)
		assert.Equal(t, "generated", source)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "# General")
		assert.Equal(t, "/Ruby.gitignore", requested[len(requested)-1])
	})
}
