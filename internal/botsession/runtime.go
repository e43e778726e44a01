package botsession

import (
	"context"
	"fmt"
	"io"
	"os/exec"
)

// ContainerRuntime starts a bot process and returns a duplex stream
// for its stdio. The real engine runs bots inside containers; this
// interface exists so the match driver never depends on a concrete
// process-launch mechanism, only on "give me a stream and a way to
// stop it".
type ContainerRuntime interface {
	Start(ctx context.Context, image string) (io.ReadWriteCloser, error)
}

// ExecRuntime launches a bot as a local subprocess, wiring its stdin
// and stdout into a single ReadWriteCloser. It stands in for the
// actual container runtime (image pull, namespace isolation, resource
// limits) that a deployed match runner would use; that isolation layer
// is out of scope here, but the interface it must satisfy is not.
type ExecRuntime struct {
	// Args, if set, are appended after the image name when launching
	// the command (e.g. ["--flag"]). Most bots need none.
	Args []string
}

func (r *ExecRuntime) Start(ctx context.Context, image string) (io.ReadWriteCloser, error) {
	cmd := exec.CommandContext(ctx, image, r.Args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("botsession: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("botsession: stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("botsession: start %q: %w", image, err)
	}

	return &procStream{cmd: cmd, stdin: stdin, stdout: stdout}, nil
}

// procStream adapts a running *exec.Cmd's stdin/stdout pipes into a
// single ReadWriteCloser, waiting on the process at Close.
type procStream struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
}

func (p *procStream) Read(b []byte) (int, error)  { return p.stdout.Read(b) }
func (p *procStream) Write(b []byte) (int, error) { return p.stdin.Write(b) }

func (p *procStream) Close() error {
	stdinErr := p.stdin.Close()
	_ = p.cmd.Wait()
	return stdinErr
}
