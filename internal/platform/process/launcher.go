// Package process launches and tears down the applications a run works on.
package process

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Launcher starts processes and remembers them so a run can close
// everything it opened.
type Launcher struct {
	mu     sync.Mutex
	procs  map[string][]*exec.Cmd
	order  []string
	logger *zap.Logger
}

// NewLauncher returns an empty Launcher.
func NewLauncher(logger *zap.Logger) *Launcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Launcher{
		procs:  make(map[string][]*exec.Cmd),
		logger: logger.Named("launcher"),
	}
}

// Launch starts target. A target naming an existing file is executed as-is,
// otherwise it is split on whitespace into a command line.
func (l *Launcher) Launch(target string) (int, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return 0, fmt.Errorf("empty launch target")
	}

	var cmd *exec.Cmd
	if _, err := os.Stat(target); err == nil {
		cmd = exec.Command(target)
	} else {
		fields := strings.Fields(target)
		cmd = exec.Command(fields[0], fields[1:]...)
	}
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("launch %s: %w", target, err)
	}

	l.mu.Lock()
	if _, ok := l.procs[target]; !ok {
		l.order = append(l.order, target)
	}
	l.procs[target] = append(l.procs[target], cmd)
	l.mu.Unlock()

	l.logger.Info("Launched application", zap.String("target", target), zap.Int("pid", cmd.Process.Pid))
	return cmd.Process.Pid, nil
}

// Close kills every process started from target.
func (l *Launcher) Close(target string) error {
	target = strings.TrimSpace(target)
	l.mu.Lock()
	cmds, ok := l.procs[target]
	delete(l.procs, target)
	l.mu.Unlock()
	if !ok {
		return fmt.Errorf("application %q was not launched by this run", target)
	}
	return l.kill(target, cmds)
}

// CloseAll kills every process this Launcher started, newest target first.
func (l *Launcher) CloseAll() error {
	l.mu.Lock()
	order := l.order
	procs := l.procs
	l.order = nil
	l.procs = make(map[string][]*exec.Cmd)
	l.mu.Unlock()

	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		if cmds, ok := procs[order[i]]; ok {
			if err := l.kill(order[i], cmds); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Running returns the number of tracked processes.
func (l *Launcher) Running() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, cmds := range l.procs {
		n += len(cmds)
	}
	return n
}

func (l *Launcher) kill(target string, cmds []*exec.Cmd) error {
	var errs []error
	for _, cmd := range cmds {
		if cmd.ProcessState != nil {
			continue
		}
		if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			errs = append(errs, fmt.Errorf("close %s (pid %d): %w", target, cmd.Process.Pid, err))
			continue
		}
		_ = cmd.Wait()
		l.logger.Info("Closed application", zap.String("target", target), zap.Int("pid", cmd.Process.Pid))
	}
	return errors.Join(errs...)
}

// OpenURL opens url with the desktop's default handler.
func (l *Launcher) OpenURL(url string) error {
	name, args := openCommand(runtime.GOOS, url)
	if err := exec.Command(name, args...).Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	l.logger.Info("Opened URL", zap.String("url", url))
	return nil
}

func openCommand(goos, url string) (string, []string) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}
	case "darwin":
		return "open", []string{url}
	default:
		return "xdg-open", []string{url}
	}
}
