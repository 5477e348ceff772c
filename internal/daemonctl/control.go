// Package daemonctl supervises the capa server process through the
// process-id file and a single-instance lock in the state directory.
// Path derivation stays in the paths package; this package owns the pid
// file's contents.
package daemonctl

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"capa/internal/paths"
)

const lockFileName = "capa.lock"

// ErrNotRunning indicates no live server process was found.
var ErrNotRunning = errors.New("server not running")

// WritePIDFile records the current process id at the pid file location.
func WritePIDFile() (string, error) {
	if _, err := paths.EnsureStateDir(); err != nil {
		return "", err
	}
	path, err := paths.PIDFilePath()
	if err != nil {
		return "", err
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	if err := os.WriteFile(path, []byte(value), 0o644); err != nil {
		return "", fmt.Errorf("write pid file: %w", err)
	}
	return path, nil
}

// RemovePIDFile deletes the pid file; a missing file is not an error.
func RemovePIDFile() error {
	path, err := paths.PIDFilePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove pid file: %w", err)
	}
	return nil
}

// ReadPID returns the process id recorded in the pid file.
// ErrNotRunning is returned when the file is absent.
func ReadPID() (int, error) {
	path, err := paths.PIDFilePath()
	if err != nil {
		return 0, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, ErrNotRunning
		}
		return 0, fmt.Errorf("read pid file %q: %w", path, err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("pid file %q contains invalid pid %q", path, strings.TrimSpace(string(data)))
	}
	return pid, nil
}

// ProcessRunning reports whether a process with the given pid is alive.
func ProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Signal 0 performs the existence check without delivering anything.
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

// Status returns the recorded pid and whether that process is alive. A
// pid file pointing at a dead process is reported as not running so
// callers can clean up after a crash.
func Status() (int, bool, error) {
	pid, err := ReadPID()
	if err != nil {
		if errors.Is(err, ErrNotRunning) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return pid, ProcessRunning(pid), nil
}

// Stop sends SIGTERM to the recorded process and waits up to gracePeriod
// for it to exit, removing the pid file once it is gone.
func Stop(gracePeriod time.Duration) (int, error) {
	pid, err := ReadPID()
	if err != nil {
		return 0, err
	}
	if pid == os.Getpid() {
		return 0, fmt.Errorf("refusing to stop current process (pid %d)", pid)
	}
	if !ProcessRunning(pid) {
		// Stale pid file from a crashed server.
		_ = RemovePIDFile()
		return 0, ErrNotRunning
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, fmt.Errorf("locate server process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return 0, fmt.Errorf("signal server process %d: %w", pid, err)
	}

	deadline := time.Now().Add(gracePeriod)
	for time.Now().Before(deadline) {
		if !ProcessRunning(pid) {
			_ = RemovePIDFile()
			return pid, nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return pid, fmt.Errorf("server process %d did not exit within %s", pid, gracePeriod)
}

// Lock is the single-instance server lock.
type Lock struct {
	path string
	lock *flock.Flock
}

// NewLock creates the lock handle inside the state directory.
func NewLock() (*Lock, error) {
	dir, err := paths.EnsureStateDir()
	if err != nil {
		return nil, err
	}
	path := filepath.Join(dir, lockFileName)
	return &Lock{path: path, lock: flock.New(path)}, nil
}

// Acquire takes the lock, failing fast when another server holds it.
func (l *Lock) Acquire() error {
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another capa server instance is already running")
	}
	return nil
}

// Release gives up the lock.
func (l *Lock) Release() error {
	return l.lock.Unlock()
}

// Path returns the lock file location.
func (l *Lock) Path() string {
	return l.path
}
