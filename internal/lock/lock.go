// Package lock keeps two generation runs from patching the same project at once.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/schemasmith/schemasmith/internal/config"
)

const DefaultDir = "~/.schemasmith/locks"

// HeldError reports a lock owned by another running process.
type HeldError struct {
	Project string
	PID     int
}

func (e *HeldError) Error() string {
	return fmt.Sprintf("another schemasmith run for project %q is in progress (PID %d)", e.Project, e.PID)
}

// Path returns the lock file of project inside dir.
func Path(dir, project string) string {
	if dir == "" {
		dir = DefaultDir
	}
	return filepath.Join(config.ExpandHome(dir), project+".lock")
}

// Acquire creates the lock file with the current process PID. A lock left behind
// by a dead process is taken over.
func Acquire(dir, project string) error {
	path := Path(dir, project)

	held, pid, err := isHeld(path)
	if err != nil {
		return err
	}
	if held && pid != os.Getpid() {
		return &HeldError{Project: project, PID: pid}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating lock directory: %w", err)
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

// Release removes the lock file.
func Release(dir, project string) error {
	err := os.Remove(Path(dir, project))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// IsHeld checks if the project lock is currently held by a running process.
func IsHeld(dir, project string) (bool, int, error) {
	return isHeld(Path(dir, project))
}

func isHeld(path string) (bool, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, 0, nil
		}
		return false, 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return false, 0, nil
	}
	return isProcessRunning(pid), pid, nil
}

func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	return err == nil
}
