package deps

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

var (
	ErrNotConfigured = errors.New("command not configured")
	ErrNotFound      = errors.New("binary not found")
	ErrNotExecutable = errors.New("binary is not executable")
)

// Resolve returns the absolute path of command. Bare names are looked up
// through PATH; anything containing a separator is checked in place.
func Resolve(command string) (string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return "", ErrNotConfigured
	}
	resolved, err := exec.LookPath(command)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %q", ErrNotFound, command)
		}
		return "", fmt.Errorf("%w: %q: %w", ErrNotExecutable, command, err)
	}
	if abs, absErr := filepath.Abs(resolved); absErr == nil {
		resolved = abs
	}
	info, err := os.Stat(resolved)
	if err != nil || !isExecutable(info) {
		return "", fmt.Errorf("%w: %s", ErrNotExecutable, resolved)
	}
	return resolved, nil
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
