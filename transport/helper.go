package transport

import (
	"fmt"
	"io"
	"net"
	"os/exec"
	"sync"

	"github.com/hashicorp/go-hclog"
)

// HelperProcess is the single dedicated child-process manager used by every
// Spawner for external process creation. The design notes call for this
// even where (as in Go) there is no fork-after-threads hazard to sidestep:
// serializing every os/exec launch through one mutex keeps process creation
// and fd handoff from racing against whatever else the runtime's threads
// are doing.
type HelperProcess struct {
	log hclog.Logger

	mu      sync.Mutex
	running []*exec.Cmd
}

// NewHelperProcess returns a HelperProcess that logs through log.
func NewHelperProcess(log hclog.Logger) *HelperProcess {
	return &HelperProcess{log: log.Named("helper")}
}

// Launch starts argv[0] with the given arguments and environment
// (inheriting the current environment when env is nil), wiring its
// stdin/stdout as the pipe pair the resulting connection communicates
// over. All launches are serialized through the helper's mutex.
func (h *HelperProcess) Launch(argv []string, env []string) (net.Conn, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("transport: helper: empty argv")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	cmd := exec.Command(argv[0], argv[1:]...)
	if env != nil {
		cmd.Env = env
	}

	toChild, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("transport: helper: stdin pipe: %w", err)
	}
	fromChild, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("transport: helper: stdout pipe: %w", err)
	}
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("transport: helper: start %s: %w", argv[0], err)
	}
	h.running = append(h.running, cmd)
	h.log.Debug("launched child", "argv", argv, "pid", cmd.Process.Pid)

	return newPipeConn(fromChild, toChild, fmt.Sprintf("pid-%d", cmd.Process.Pid)), nil
}

// Shutdown terminates every child the helper has launched. It is the atexit
// hook's implementation: process exit is the only MP-level termination
// signal, and this ensures no orphaned children survive it.
func (h *HelperProcess) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, cmd := range h.running {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
	}
}

var _ io.Closer = (*pipeConn)(nil)
