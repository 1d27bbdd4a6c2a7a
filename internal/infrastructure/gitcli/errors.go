package gitcli

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrBranchExists    = errors.New("branch already exists")
	ErrPathExists      = errors.New("target path already exists")
	ErrPathEscapesRepo = errors.New("path escapes repository")
	ErrEmptyPath       = errors.New("file path is required")
)

// CommandError describes a git invocation that exited unsuccessfully.
type CommandError struct {
	Args     []string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *CommandError) Error() string {
	detail := strings.TrimSpace(e.Stderr)
	if detail == "" {
		detail = strings.TrimSpace(e.Stdout)
	}
	if detail == "" && e.Err != nil {
		detail = e.Err.Error()
	}
	return fmt.Sprintf("git %s (exit %d): %s", strings.Join(e.Args, " "), e.ExitCode, detail)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Output returns stdout and stderr joined, for matching on git messages.
func (e *CommandError) Output() string {
	return e.Stdout + "\n" + e.Stderr
}
