package processor

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ZacxDev/ffcmd/pkg/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Handle is a running or finished invocation
type Handle struct {
	runID   string
	events  chan types.OutputEvent
	done    chan struct{}
	outcome Outcome
}

func newHandle(runID string) *Handle {
	return &Handle{
		runID:  runID,
		events: make(chan types.OutputEvent),
		done:   make(chan struct{}),
	}
}

// RunID identifies the run in logs
func (h *Handle) RunID() string {
	return h.runID
}

// Events delivers output chunks as they are read. Chunks of one channel
// arrive in the order the process wrote them; stdout and stderr are only
// interleaved by arrival. The channel is closed before the outcome is set.
//
// Until the run is cancelled the readers block on each chunk, so callers
// either drain Events or call Wait, which discards whatever was not consumed.
func (h *Handle) Events() <-chan types.OutputEvent {
	return h.events
}

// Done is closed once the outcome is available
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the run finishes and returns its outcome
func (h *Handle) Wait() Outcome {
	for range h.events {
	}
	<-h.done
	return h.outcome
}

func (h *Handle) finishEarly(o Outcome) {
	close(h.events)
	h.outcome = o
	close(h.done)
}

func (h *Handle) monitor(ctx context.Context, cmd *exec.Cmd, stdout, stderr *os.File, drainGrace time.Duration, logger zerolog.Logger) {
	started := time.Now()
	defer closeAll(stdout, stderr)

	var stdoutBuf, stderrBuf strings.Builder
	var g errgroup.Group
	g.Go(func() error { return pump(ctx, types.ChannelStdout, stdout, &stdoutBuf, h.events) })
	g.Go(func() error { return pump(ctx, types.ChannelStderr, stderr, &stderrBuf, h.events) })

	pumped := make(chan error, 1)
	waitErr := cmd.Wait()
	go func() { pumped <- g.Wait() }()

	err := h.drain(pumped, drainGrace, stdout, stderr, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("output stream ended early")
	}
	close(h.events)

	h.outcome = resolve(ctx, cmd, waitErr, stdoutBuf.String(), stderrBuf.String())

	event := logger.Info()
	if _, ok := h.outcome.(Success); !ok {
		event = logger.Warn().Err(h.outcome.Err())
	}
	event.Dur("elapsed", time.Since(started)).Msg("tool finished")

	close(h.done)
}

// drain waits for the readers after the process has exited. Output still
// open once grace has passed belongs to a leftover child; the read ends are
// closed so the run can resolve. A zero grace waits for EOF.
func (h *Handle) drain(pumped <-chan error, grace time.Duration, stdout, stderr *os.File, logger zerolog.Logger) error {
	if grace <= 0 {
		return <-pumped
	}
	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case err := <-pumped:
		return err
	case <-timer.C:
		logger.Warn().Dur("grace", grace).Msg("output still open after the tool exited, closing it")
		closeAll(stdout, stderr)
		return <-pumped
	}
}

func resolve(ctx context.Context, cmd *exec.Cmd, waitErr error, stdout, stderr string) Outcome {
	if waitErr == nil {
		return Success{Stdout: stdout, Stderr: stderr}
	}
	if ctx.Err() != nil {
		return Cancelled{Stdout: stdout, Stderr: stderr}
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		exitCode = exitErr.ExitCode()
	} else if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	return Failure{ExitCode: exitCode, Stdout: stdout, Stderr: stderr}
}
