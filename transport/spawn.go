package transport

import (
	"fmt"
	"net"
	"os"

	"github.com/hashicorp/go-hclog"
)

// Method names the three ways a slave can be brought up, matching the three
// create_slave methods.
type Method int

const (
	Thread Method = iota
	Local
	Remote
)

func (m Method) String() string {
	switch m {
	case Thread:
		return "thread"
	case Local:
		return "local"
	case Remote:
		return "remote"
	default:
		return "unknown"
	}
}

// SentinelArg and the slave id that follows it are injected at argv
// positions 1 and 2 of a spawned child's argument list.
const SentinelArg = "-vemp_slave"

// Spawner is the capability-set interface behind the three create_slave
// methods: the plain-function "virtual dispatch" the design calls for,
// expressed as a Go interface rather than a record of function pointers.
type Spawner interface {
	Spawn(id uint32, node string, argv []string) (*Conn, error)
}

// threadSpawner starts a new goroutine sharing the process's memory,
// connected to the master over an in-process pipe. It is the only method
// that does not go through the helper process, since no new OS process is
// created.
type threadSpawner struct {
	log    hclog.Logger
	boot   func(conn *Conn) // starts the slave's own MP reception loop.
}

// NewThreadSpawner returns a Spawner that launches slaves as goroutines.
// boot is invoked on the slave side of the pipe and is expected to run the
// slave's own reception loop until the connection closes.
func NewThreadSpawner(log hclog.Logger, boot func(conn *Conn)) Spawner {
	return &threadSpawner{log: log, boot: boot}
}

func (s *threadSpawner) Spawn(id uint32, node string, argv []string) (*Conn, error) {
	masterSide, slaveSide := net.Pipe()
	masterConn := NewConn(s.log.Named(fmt.Sprintf("slave.%d", id)), masterSide, true)
	slaveConn := NewConn(s.log.Named(fmt.Sprintf("thread.%d", id)), slaveSide, true)
	if s.boot != nil {
		go s.boot(slaveConn)
	}
	return masterConn, nil
}

// localSpawner forks+execs this binary with the sentinel and id injected,
// communicating over a pipe pair. All actual process creation is delegated
// to a shared HelperProcess to sidestep fork/thread interaction, per the
// design notes -- Go has no such hazard, but the structure is kept so the
// coordinator never calls os/exec directly.
type localSpawner struct {
	log    hclog.Logger
	helper *HelperProcess
}

// NewLocalSpawner returns a Spawner that forks local child processes
// through helper.
func NewLocalSpawner(log hclog.Logger, helper *HelperProcess) Spawner {
	return &localSpawner{log: log, helper: helper}
}

func (s *localSpawner) Spawn(id uint32, node string, argv []string) (*Conn, error) {
	childArgv := injectSentinel(argv, id)
	conn, err := s.helper.Launch(childArgv, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: local spawn: %w", err)
	}
	return NewConn(s.log.Named(fmt.Sprintf("local.%d", id)), conn, true), nil
}

// remoteSpawner runs a remote shell command that exports selected
// environment variables, cds to the master's working directory, and execs
// the binary on the remote host.
type remoteSpawner struct {
	log    hclog.Logger
	helper *HelperProcess
	shell  string   // VERSH, defaults to "ssh".
	env    []string // reserved env vars forwarded to the remote process.
}

// VERSHEnv is the process-wide environment variable overriding the default
// remote shell binary ("ssh").
const VERSHEnv = "VERSH"

// NewRemoteSpawner returns a Spawner that shells out to ssh (or VERSH) to
// launch the binary on a remote host. forwardEnv lists the reserved
// environment variable names propagated to the remote process (display,
// library path, installation roots, render-driver tuning, debug selector).
func NewRemoteSpawner(log hclog.Logger, helper *HelperProcess, forwardEnv []string) Spawner {
	shell := os.Getenv(VERSHEnv)
	if shell == "" {
		shell = "ssh"
	}
	return &remoteSpawner{log: log, helper: helper, shell: shell, env: forwardEnv}
}

func (s *remoteSpawner) Spawn(id uint32, node string, argv []string) (*Conn, error) {
	if node == "" || node == "auto" {
		return nil, fmt.Errorf("transport: remote spawn requires an explicit node")
	}
	childArgv := injectSentinel(argv, id)
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("transport: remote spawn: %w", err)
	}
	remoteCmd := buildRemoteCommand(wd, s.env, childArgv)
	conn, err := s.helper.Launch([]string{s.shell, node, remoteCmd}, nil)
	if err != nil {
		return nil, fmt.Errorf("transport: remote spawn via %s: %w", s.shell, err)
	}
	return NewConn(s.log.Named(fmt.Sprintf("remote.%d", id)), conn, true), nil
}

// buildRemoteCommand renders the single shell command string executed on
// the remote host: export the forwarded variables, cd to wd, exec argv.
func buildRemoteCommand(wd string, forwardEnv []string, argv []string) string {
	cmd := ""
	for _, name := range forwardEnv {
		if v, ok := os.LookupEnv(name); ok {
			cmd += fmt.Sprintf("export %s=%q; ", name, v)
		}
	}
	cmd += fmt.Sprintf("cd %q && exec", wd)
	for _, a := range argv {
		cmd += fmt.Sprintf(" %q", a)
	}
	return cmd
}

// injectSentinel returns a copy of argv with the sentinel token and decimal
// slave id placed at positions 1 and 2, per the boot-argument contract.
func injectSentinel(argv []string, id uint32) []string {
	out := make([]string, 0, len(argv)+2)
	if len(argv) > 0 {
		out = append(out, argv[0])
	}
	out = append(out, SentinelArg, fmt.Sprintf("%d", id))
	if len(argv) > 1 {
		out = append(out, argv[1:]...)
	}
	return out
}
