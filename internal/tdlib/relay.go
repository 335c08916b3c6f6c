package tdlib

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
)

// Relay is a child process that owns the TDLib instance and exposes its JSON
// interface on stdin and stdout, one object per line. Its stderr carries the
// TDLib log.
type Relay struct {
	cmd    *exec.Cmd
	Stdin  io.WriteCloser
	Stdout io.ReadCloser
	done   chan struct{}
}

// StartRelay launches command and forwards its stderr to logger at the level
// matching each line's TDLib verbosity. The process is killed when ctx is done.
func StartRelay(ctx context.Context, command []string, logger *slog.Logger) (*Relay, error) {
	if len(command) == 0 {
		return nil, errors.New("relay command is empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "tdlib")

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("relay stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("relay stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("relay stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start relay %q: %w", command[0], err)
	}
	logger.Info("TDLib relay started", "command", command[0], "pid", cmd.Process.Pid)

	r := &Relay{cmd: cmd, Stdin: stdin, Stdout: stdout, done: make(chan struct{})}
	go func() {
		defer close(r.done)
		ForwardLog(ctx, stderr, logger)
	}()
	return r, nil
}

// Wait blocks until the relay exits and its log has been drained. Wait closes
// Stdout, so the reader must be done with it first.
func (r *Relay) Wait() error {
	<-r.done
	return r.cmd.Wait()
}

// Kill stops the relay process. It is safe to call after the process exited.
func (r *Relay) Kill() error {
	if err := r.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill relay: %w", err)
	}
	return nil
}

// ForwardLog copies TDLib log lines from src to logger until src is exhausted.
func ForwardLog(ctx context.Context, src io.Reader, logger *slog.Logger) {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		verbosity := ParseLogLine(line)
		logger.Log(ctx, LogLevel(verbosity), line, "verbosity", verbosity)
	}
}
