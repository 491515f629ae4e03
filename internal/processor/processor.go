package processor

import (
	"context"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"time"

	"github.com/ZacxDev/ffcmd/pkg/types"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Invocation is one external tool run: a resolved executable and its
// argument vector. Arguments are passed to the OS as-is, never through a shell.
type Invocation struct {
	Path string
	Args []string

	// CheckExists verifies Path before spawning. Packaged builds set it;
	// in development the OS lookup is trusted to fail by itself.
	CheckExists bool
}

// Runner spawns tool processes and streams their output
type Runner struct {
	logger zerolog.Logger

	// terminateGrace is how long a cancelled process gets between the
	// termination signal and a hard kill
	terminateGrace time.Duration
}

// NewRunner creates a new process runner
func NewRunner(logger zerolog.Logger, terminateGrace time.Duration) *Runner {
	return &Runner{
		logger:         logger,
		terminateGrace: terminateGrace,
	}
}

// Start spawns the invocation and returns immediately. Output arrives on
// the handle's Events channel; the terminal outcome comes from Wait. Start
// never fails: problems before the process runs resolve as a SpawnError.
//
// Cancelling ctx sends the process a termination signal, escalating to a
// kill after the grace period, and resolves Cancelled.
func (r *Runner) Start(ctx context.Context, inv Invocation) *Handle {
	h := newHandle(uuid.NewString())
	logger := r.logger.With().Str("run_id", h.runID).Str("path", inv.Path).Logger()

	if inv.CheckExists {
		if _, err := os.Stat(inv.Path); err != nil {
			logger.Warn().Err(err).Msg("tool binary is missing")
			h.finishEarly(spawnError(inv.Path, err))
			return h
		}
	}

	cmd := exec.CommandContext(ctx, inv.Path, inv.Args...)
	if r.terminateGrace > 0 {
		cmd.Cancel = func() error { return terminate(cmd) }
		cmd.WaitDelay = r.terminateGrace
	}

	// The runner owns the pipes so it can stop reading once the process is
	// gone, even if a leftover child still holds the write ends.
	stdout, stdoutW, err := os.Pipe()
	if err != nil {
		h.finishEarly(spawnError(inv.Path, errors.Wrap(err, "failed to pipe stdout")))
		return h
	}
	stderr, stderrW, err := os.Pipe()
	if err != nil {
		closeAll(stdout, stdoutW)
		h.finishEarly(spawnError(inv.Path, errors.Wrap(err, "failed to pipe stderr")))
		return h
	}
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	logger.Debug().Strs("args", inv.Args).Msg("spawning tool")
	err = cmd.Start()
	closeAll(stdoutW, stderrW)
	if err != nil {
		closeAll(stdout, stderr)
		if ctx.Err() != nil {
			h.finishEarly(Cancelled{})
			return h
		}
		logger.Warn().Err(err).Msg("tool failed to start")
		h.finishEarly(spawnError(inv.Path, err))
		return h
	}

	go h.monitor(ctx, cmd, stdout, stderr, r.terminateGrace, logger)
	return h
}

// Execute runs the invocation to completion, handing every output chunk to
// onOutput in arrival order from the calling goroutine.
func (r *Runner) Execute(ctx context.Context, inv Invocation, onOutput func(types.OutputEvent)) Outcome {
	h := r.Start(ctx, inv)
	for ev := range h.Events() {
		if onOutput != nil {
			onOutput(ev)
		}
	}
	return h.Wait()
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

func spawnError(path string, err error) SpawnError {
	kind := SpawnOther
	switch {
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		kind = SpawnNotFound
	case errors.Is(err, fs.ErrPermission):
		kind = SpawnPermission
	}
	return SpawnError{
		Kind:          kind,
		Reason:        err.Error(),
		AttemptedPath: path,
	}
}

// pump copies r into acc and onto events chunk by chunk until EOF. Once ctx
// is done, chunks nobody is receiving are only accumulated.
func pump(ctx context.Context, channel types.Channel, r io.Reader, acc io.StringWriter, events chan<- types.OutputEvent) error {
	buf := make([]byte, 32*1024)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := string(buf[:n])
			_, _ = acc.WriteString(chunk)
			select {
			case events <- types.OutputEvent{Channel: channel, Chunk: chunk}:
			case <-ctx.Done():
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return errors.Wrapf(err, "failed to read %s", channel)
		}
	}
}
