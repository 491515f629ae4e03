package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ZacxDev/ffcmd/internal/config"
	"github.com/ZacxDev/ffcmd/internal/ffmpeg"
	"github.com/ZacxDev/ffcmd/internal/log"
	"github.com/ZacxDev/ffcmd/internal/picker"
	"github.com/ZacxDev/ffcmd/internal/processor"
	"github.com/ZacxDev/ffcmd/pkg/types"
	"github.com/ZacxDev/ffcmd/pkg/videoprocessor"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// exitError carries the process exit code for a run that did not succeed
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

var (
	rootCmd = &cobra.Command{
		Use:   "ffcmd",
		Short: "Preview and run ffmpeg commands for common video tasks",
		Long: `ffcmd builds the ffmpeg command line for a video operation, lets you edit it,
and runs it while streaming the tool's output.

Examples:
  # Preview the command that extracts audio
  ffcmd build extract-audio -i input.mp4

  # Compress with the high quality preset and run it
  ffcmd exec compress -i input.mp4 --quality high

  # Run an edited command line
  ffcmd run 'ffmpeg -i "my movie.mp4" -vn out.mp3'`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	buildCmd = &cobra.Command{
		Use:       "build <operation>",
		Short:     "Print the command line for an operation without running it",
		Long:      fmt.Sprintf("Print the command line for an operation.\n\nOperations:\n%s", formatOperationKinds()),
		Args:      cobra.ExactArgs(1),
		ValidArgs: operationKindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			op, input, output, err := resolveRequest(cmd, app, args[0])
			if err != nil {
				return err
			}
			cl, err := app.BuildCommand(op, input, output)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cl.String())
			return nil
		},
	}

	execCmd = &cobra.Command{
		Use:       "exec <operation>",
		Short:     "Build the command line for an operation and run it",
		Args:      cobra.ExactArgs(1),
		ValidArgs: operationKindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			op, input, output, err := resolveRequest(cmd, app, args[0])
			if err != nil {
				return err
			}
			cl, err := app.BuildCommand(op, input, output)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), cl.String())

			h, err := app.Run(cmd.Context(), cl)
			if err != nil {
				return err
			}
			if err := stream(cmd, h); err != nil {
				return err
			}
			if output != "" {
				fmt.Fprintln(cmd.OutOrStdout(), output)
			}
			return nil
		},
	}

	runCmd = &cobra.Command{
		Use:   "run <command line>",
		Short: "Run a free-text command line, streaming the tool's output",
		Long: `Run a command line as printed by build, optionally edited. Arguments are
joined with spaces and split again with double or single quotes grouping; the
line is never passed to a shell. The program must be ffmpeg or ffprobe and is
resolved the same way as for exec.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			h, err := app.RunTool(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return stream(cmd, h)
		},
	}

	probeCmd = &cobra.Command{
		Use:   "probe",
		Short: "Inspect a media file with ffprobe",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			input, err := inputPath(cmd)
			if err != nil {
				return err
			}
			report, err := app.Probe(cmd.Context(), input)
			if err != nil {
				return outcomeError(err)
			}
			asJSON, _ := cmd.Flags().GetBool("json")
			if asJSON {
				return printJSON(cmd, report)
			}
			for _, line := range report.Summary() {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	uniqueCmd = &cobra.Command{
		Use:   "unique <path>",
		Short: "Print the first free path derived from path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			path, err := processor.EnsureUnique(cmd.Context(), args[0], app.PathExists)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	pickCmd = &cobra.Command{
		Use:   "pick [dir]",
		Short: "Choose an input video in a terminal file browser",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			path, err := picker.SelectInputFile(cmd.Context(), dir)
			if err != nil {
				return err
			}
			if path == "" {
				return &exitError{code: 1, err: errors.New("no file selected")}
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
)

func operationKindNames() []string {
	kinds := types.OperationKinds()
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, string(k))
	}
	return names
}

func formatOperationKinds() string {
	var sb strings.Builder
	for _, k := range operationKindNames() {
		sb.WriteString(fmt.Sprintf("- %s\n", k))
	}
	return sb.String()
}

func newApp(cmd *cobra.Command) (*videoprocessor.App, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("mode") {
		cfg.Mode, _ = cmd.Flags().GetString("mode")
	}
	if cmd.Flags().Changed("resources-dir") {
		cfg.ResourcesDir, _ = cmd.Flags().GetString("resources-dir")
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Configure(log.Config{Level: cfg.LogLevel})
	return videoprocessor.New(cfg, log.WithComponent("app"))
}

// inputPath reads --input, falling back to the file picker when it is unset
func inputPath(cmd *cobra.Command) (string, error) {
	input, _ := cmd.Flags().GetString("input")
	if input != "" {
		return input, nil
	}
	input, err := picker.SelectInputFile(cmd.Context(), "")
	if err != nil {
		return "", err
	}
	if input == "" {
		return "", &exitError{code: 1, err: errors.New("no input file selected")}
	}
	return input, nil
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return errors.WithStack(enc.Encode(v))
}

func resolveRequest(cmd *cobra.Command, app *videoprocessor.App, kind string) (types.Operation, string, string, error) {
	op, err := types.ParseOperation(types.OperationKind(kind), operationFields(cmd))
	if err != nil {
		return nil, "", "", err
	}
	input, err := inputPath(cmd)
	if err != nil {
		return nil, "", "", err
	}

	output, _ := cmd.Flags().GetString("output")
	switch {
	case !types.ProducesOutput(op):
		output = ""
	case output != "":
		if err := app.CheckOutput(input, output); err != nil {
			return nil, "", "", err
		}
	default:
		if output, err = app.PrepareOutput(cmd.Context(), op, input); err != nil {
			return nil, "", "", err
		}
	}
	return op, input, output, nil
}

func operationFields(cmd *cobra.Command) types.OperationFields {
	get := func(name string) string {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return types.OperationFields{
		Quality:         get("quality"),
		TargetFormat:    get("format"),
		StartTime:       get("start"),
		EndTime:         get("end"),
		Resolution:      get("resolution"),
		VideoCodec:      get("vcodec"),
		AudioCodec:      get("acodec"),
		ContainerFormat: get("container"),
		Bitrate:         get("bitrate"),
		CRF:             get("crf"),
	}
}

// stream copies a run's output to the terminal and maps its outcome to an error
func stream(cmd *cobra.Command, h *processor.Handle) error {
	for ev := range h.Events() {
		w := cmd.OutOrStdout()
		if ev.Channel == types.ChannelStderr {
			w = cmd.ErrOrStderr()
		}
		fmt.Fprint(w, ev.Chunk)
	}
	return outcomeError(h.Wait().Err())
}

// outcomeError picks the exit code for a run that did not succeed
func outcomeError(err error) error {
	if err == nil {
		return nil
	}
	var (
		failure   processor.Failure
		spawn     processor.SpawnError
		cancelled processor.Cancelled
	)
	switch {
	case errors.As(err, &failure):
		code := failure.ExitCode
		if code <= 0 {
			code = 1
		}
		return &exitError{code: code, err: err}
	case errors.As(err, &spawn):
		switch spawn.Kind {
		case processor.SpawnNotFound:
			return &exitError{code: 127, err: err}
		case processor.SpawnPermission:
			return &exitError{code: 126, err: err}
		}
		return &exitError{code: 125, err: err}
	case errors.As(err, &cancelled):
		return &exitError{code: 130, err: err}
	}
	return err
}

func addOperationFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("input", "i", "", "Input video file (opens the file picker when omitted)")
	cmd.Flags().StringP("output", "o", "", "Output path (derived from the input when omitted)")
	cmd.Flags().String("quality", "", "Compress quality (high, medium, low)")
	cmd.Flags().String("format", "", "Convert target format (e.g. mkv)")
	cmd.Flags().String("start", "", "Clip start time (e.g. 00:00:10)")
	cmd.Flags().String("end", "", "Clip end time (e.g. 00:00:20)")
	cmd.Flags().String("resolution", "", "Resize target height (1080, 720, 480, 360)")
	cmd.Flags().String("vcodec", "", "Transcode video codec (copy to pass through)")
	cmd.Flags().String("acodec", "", "Transcode audio codec (copy to pass through)")
	cmd.Flags().String("container", "", fmt.Sprintf("Transcode container (%s)", strings.Join(ffmpeg.SupportedContainers(), ", ")))
	cmd.Flags().String("bitrate", "", "Transcode video bitrate (e.g. 2M)")
	cmd.Flags().String("crf", "", "Transcode constant rate factor")
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().String("mode", "", "Tool location mode (development or packaged)")
	rootCmd.PersistentFlags().String("resources-dir", "", "Resources directory holding bin/ in packaged mode")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every tool command line that is run")

	addOperationFlags(buildCmd)
	addOperationFlags(execCmd)

	probeCmd.Flags().StringP("input", "i", "", "Input media file (opens the file picker when omitted)")
	probeCmd.Flags().Bool("json", false, "Print the full report as JSON")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(execCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(probeCmd)
	rootCmd.AddCommand(uniqueCmd)
	rootCmd.AddCommand(pickCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		stop()
		os.Exit(exitErr.code)
	}
	os.Exit(1)
}
