package gitcli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"
)

// resolve joins name onto repoPath and rejects results outside of it.
func resolve(repoPath, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrEmptyPath
	}
	full := filepath.Join(repoPath, name)
	rel, err := filepath.Rel(repoPath, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("'%s': %w", name, ErrPathEscapesRepo)
	}
	return full, nil
}

// AddFile writes content to fileName inside repoPath, creating parent
// directories. It returns the written path.
func (c *Client) AddFile(repoPath, fileName, content string) (string, error) {
	full, err := resolve(repoPath, fileName)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create directory for %s: %w", fileName, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", fileName, err)
	}
	c.log.Info().Str("file_path", full).Msg("created file")
	return full, nil
}

// FileSpec is one file for AddFiles.
type FileSpec struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// AddFilesResult reports which files were written and which failed.
type AddFilesResult struct {
	Success      bool     `json:"success"`
	CreatedFiles []string `json:"created_files"`
	Errors       []string `json:"errors"`
	Message      string   `json:"message"`
}

// AddFiles writes every file, collecting per-file failures instead of stopping.
func (c *Client) AddFiles(repoPath string, files []FileSpec) *AddFilesResult {
	result := &AddFilesResult{CreatedFiles: []string{}, Errors: []string{}}
	for _, f := range files {
		if strings.TrimSpace(f.Path) == "" {
			result.Errors = append(result.Errors, "File path is required")
			continue
		}
		if _, err := c.AddFile(repoPath, f.Path, f.Content); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Error creating %s: %v", f.Path, err))
			continue
		}
		result.CreatedFiles = append(result.CreatedFiles, f.Path)
	}

	result.Success = len(result.Errors) == 0
	if result.Success {
		result.Message = fmt.Sprintf("Created %d files", len(result.CreatedFiles))
	} else {
		result.Message = fmt.Sprintf("Created %d files with %d errors", len(result.CreatedFiles), len(result.Errors))
	}
	return result
}

// ListFiles returns the entry names of repoPath. With a pattern it returns
// the doublestar matches relative to repoPath instead.
func ListFiles(repoPath, pattern string) ([]string, error) {
	if pattern != "" {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		matches, err := doublestar.Glob(os.DirFS(repoPath), pattern)
		if err != nil {
			return nil, fmt.Errorf("match %q in %s: %w", pattern, repoPath, err)
		}
		sort.Strings(matches)
		return matches, nil
	}

	entries, err := os.ReadDir(repoPath)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", repoPath, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// FileContents is the result of ReadFile.
type FileContents struct {
	FileName string `json:"file_name"`
	Contents string `json:"contents"`
	Size     int    `json:"size"`
	MIMEType string `json:"mime_type"`
}

// ReadFile reads fileName from repoPath and detects its content type.
func ReadFile(repoPath, fileName string) (*FileContents, error) {
	full, err := resolve(repoPath, fileName)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fileName, err)
	}
	return &FileContents{
		FileName: fileName,
		Contents: string(data),
		Size:     len(data),
		MIMEType: mimetype.Detect(data).String(),
	}, nil
}
