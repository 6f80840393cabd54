package adapter

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
)

// Opener opens photo URLs in an external viewer
type Opener struct {
	command string   // configured viewer command, empty for system default
	args    []string // additional arguments for the viewer
	logger  *slog.Logger

	// start launches a process without waiting for it
	start func(name string, args ...string) error
}

// NewOpener creates an Opener for the configured viewer command
func NewOpener(command string, args []string, logger *slog.Logger) *Opener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Opener{
		command: command,
		args:    args,
		logger:  logger,
		start:   startCommand,
	}
}

// Open opens url in the configured viewer or the system default handler
func (o *Opener) Open(url string) error {
	if url == "" {
		return fmt.Errorf("nothing to open")
	}

	if o.command != "" {
		args := append(append([]string{}, o.args...), url)
		o.logger.Info("opening with configured viewer", "command", o.command, "url", url)
		return o.start(o.command, args...)
	}

	name, args := defaultOpenCommand(runtime.GOOS, url)
	o.logger.Info("opening with system default", "os", runtime.GOOS, "url", url)
	return o.start(name, args...)
}

// defaultOpenCommand returns the system handler invocation for goos
func defaultOpenCommand(goos, url string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "cmd", []string{"/c", "start", "", url}
	default:
		// Linux and other Unix-like systems
		return "xdg-open", []string{url}
	}
}

func startCommand(name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("viewer not found: %w", err)
	}
	return exec.Command(name, args...).Start() // Start async, don't wait
}
