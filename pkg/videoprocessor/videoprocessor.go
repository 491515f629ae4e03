// Package videoprocessor is the application context a shell drives: it
// previews tool command lines, picks output paths and runs the tools.
package videoprocessor

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ZacxDev/ffcmd/internal/cmdline"
	"github.com/ZacxDev/ffcmd/internal/config"
	"github.com/ZacxDev/ffcmd/internal/ffmpeg"
	"github.com/ZacxDev/ffcmd/internal/platform"
	"github.com/ZacxDev/ffcmd/internal/processor"
	"github.com/ZacxDev/ffcmd/pkg/types"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	// ErrSameAsInput is returned when an output path would overwrite the input
	ErrSameAsInput = errors.New("output path is the same as the input")

	// ErrUnsupportedProgram is returned for a command line naming a program
	// other than the media tools
	ErrUnsupportedProgram = errors.New("only ffmpeg and ffprobe can be run")
)

// App holds everything a shell needs to preview and run tool invocations
type App struct {
	cfg     *config.Config
	logger  zerolog.Logger
	locator *platform.Locator
	runner  *processor.Runner
	exists  processor.ExistsFunc

	// runs started by RunTool are cancelled by Close
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an App from a validated config. A nil cfg uses the defaults.
func New(cfg *config.Config, logger zerolog.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	mode, err := platform.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	locator := platform.NewLocator(mode, cfg.ResourcesDir)
	logger.Debug().
		Str("mode", string(mode)).
		Str("platform", locator.Platform.GetName()).
		Str("resources_dir", locator.ResourcesDir).
		Msg("locating tools")

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		cfg:     cfg,
		logger:  logger,
		locator: locator,
		runner:  processor.NewRunner(logger.With().Str("component", "runner").Logger(), cfg.TerminateGrace),
		exists:  processor.OSExists,
		ctx:     ctx,
		cancel:  cancel,
	}, nil
}

// Close cancels runs still in flight and waits for them to resolve
func (a *App) Close() error {
	a.cancel()
	a.wg.Wait()
	return nil
}

// Locator exposes how tool names are resolved
func (a *App) Locator() *platform.Locator {
	return a.locator
}

// BuildCommand returns the command line for op without running anything
func (a *App) BuildCommand(op types.Operation, input, output string) (cmdline.CommandLine, error) {
	return ffmpeg.Build(op, input, output)
}

// PrepareOutput derives the default output path for op and moves it to the
// first free candidate. The input itself always counts as taken, so the
// result never overwrites it. Probe produces no output and returns "".
func (a *App) PrepareOutput(ctx context.Context, op types.Operation, input string) (string, error) {
	if !types.ProducesOutput(op) {
		return "", nil
	}
	base := ffmpeg.DefaultOutputPath(op, input)
	if base == "" {
		return "", errors.Errorf("no default output for %s", op.Kind())
	}

	exists := func(ctx context.Context, path string) (bool, error) {
		if samePath(path, input) {
			return true, nil
		}
		return a.exists(ctx, path)
	}
	out, err := processor.EnsureUnique(ctx, base, exists)
	if err != nil {
		return "", err
	}
	a.logger.Debug().Str("input", input).Str("output", out).Msg("prepared output path")
	return out, nil
}

// CheckOutput rejects an explicitly chosen output that is the input
func (a *App) CheckOutput(input, output string) error {
	if samePath(input, output) {
		return errors.Wrap(ErrSameAsInput, output)
	}
	return nil
}

// PathExists reports whether path is taken on the local filesystem
func (a *App) PathExists(ctx context.Context, path string) (bool, error) {
	return a.exists(ctx, path)
}

// RunTool tokenizes a free-text command line and runs it. The first token
// must name ffmpeg or ffprobe; the locator turns it into the executable and
// the remaining tokens become the argument vector. The line is never handed
// to a shell.
func (a *App) RunTool(ctx context.Context, line string) (*processor.Handle, error) {
	cl, err := cmdline.Parse(line)
	if err != nil {
		return nil, err
	}
	return a.Run(ctx, cl)
}

// Run spawns a command line built by BuildCommand or Parse
func (a *App) Run(ctx context.Context, cl cmdline.CommandLine) (*processor.Handle, error) {
	inv, err := a.invocation(cl)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(a.ctx, cancel)

	h := a.runner.Start(runCtx, inv)

	event := a.logger.Debug()
	if a.cfg.Verbose {
		event = a.logger.Info()
	}
	event.Str("run_id", h.RunID()).Str("path", inv.Path).Str("command", cl.String()).Msg("running tool")

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-h.Done()
		stop()
		cancel()
	}()
	return h, nil
}

// Probe runs the probe tool on input and parses its report. A run that did
// not succeed is returned as the error; it is one of the processor outcomes.
func (a *App) Probe(ctx context.Context, input string) (*ffmpeg.Report, error) {
	cl, err := a.BuildCommand(types.Probe{}, input, "")
	if err != nil {
		return nil, err
	}

	h, err := a.Run(ctx, cl)
	if err != nil {
		return nil, err
	}
	outcome := h.Wait()
	success, ok := outcome.(processor.Success)
	if !ok {
		return nil, outcome.Err()
	}
	return ffmpeg.ParseReport(success.Stdout)
}

func (a *App) invocation(cl cmdline.CommandLine) (processor.Invocation, error) {
	tool := strings.TrimSuffix(strings.ToLower(cl.Program), a.locator.Platform.GetExecutableSuffix())
	if tool != config.FFmpegTool && tool != config.FFprobeTool {
		return processor.Invocation{}, errors.Wrapf(ErrUnsupportedProgram, "got %q", cl.Program)
	}
	return processor.Invocation{
		Path:        a.locator.Resolve(tool),
		Args:        cl.Args,
		CheckExists: a.locator.RequiresExistenceCheck(),
	}, nil
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
