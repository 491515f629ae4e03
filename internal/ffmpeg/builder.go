package ffmpeg

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ZacxDev/ffcmd/internal/cmdline"
	"github.com/ZacxDev/ffcmd/internal/config"
	"github.com/ZacxDev/ffcmd/pkg/types"
	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Build derives the tool invocation for op. It performs no I/O and never
// range-checks user values; ffmpeg validates them when it runs.
//
// output is ignored for Probe and required for every other operation.
func Build(op types.Operation, input, output string) (cmdline.CommandLine, error) {
	if op == nil {
		return cmdline.CommandLine{}, errors.New("no operation selected")
	}
	if input == "" {
		return cmdline.CommandLine{}, errors.New("input path is required")
	}

	if _, ok := op.(types.Probe); ok {
		return buildProbe(input), nil
	}
	if output == "" {
		return cmdline.CommandLine{}, errors.Errorf("%s requires an output path", op.Kind())
	}

	inputKwargs := ffmpeg.KwArgs{}
	outputKwargs := ffmpeg.KwArgs{}
	settings := GetCodecSettings(ContainerOf(output))

	switch o := op.(type) {
	case types.ExtractAudio:
		if filepath.Ext(output) == "" {
			outputKwargs["format"] = strings.TrimPrefix(config.ExtractAudioExt, ".")
		}
		outputKwargs["vn"] = ""
		outputKwargs["acodec"] = config.ExtractAudioCodec
		outputKwargs["q:a"] = config.ExtractAudioQuality

	case types.Compress:
		factor, ok := o.Quality.Factor()
		if !ok {
			return cmdline.CommandLine{}, errors.Errorf("unsupported quality: %s", o.Quality)
		}
		outputKwargs["c:v"] = settings.VideoCodec
		outputKwargs["crf"] = strconv.Itoa(factor)
		outputKwargs["c:a"] = settings.AudioCodec
		outputKwargs["b:a"] = config.CompressAudioBitrate
		for k, v := range settings.EncoderPresets["balanced"] {
			outputKwargs[k] = v
		}

	case types.Convert:
		if o.TargetFormat == "" {
			return cmdline.CommandLine{}, errors.New("convert requires a target format")
		}
		target := GetCodecSettings(o.TargetFormat)
		outputKwargs["format"] = Muxer(o.TargetFormat)
		outputKwargs["c:v"] = target.VideoCodec
		outputKwargs["c:a"] = target.AudioCodec

	case types.Clip:
		// Both bounds are input options so they address absolute input
		// positions whether or not the other one is given.
		if o.StartTime != "" {
			inputKwargs["ss"] = o.StartTime
		}
		if o.EndTime != "" {
			inputKwargs["to"] = o.EndTime
		}
		outputKwargs["c:v"] = settings.VideoCodec
		outputKwargs["c:a"] = settings.AudioCodec

	case types.Resize:
		height, ok := o.Resolution.Height()
		if !ok {
			return cmdline.CommandLine{}, errors.Errorf("unsupported resolution: %s", o.Resolution)
		}
		// -2 keeps the aspect ratio and rounds the width to an even number
		outputKwargs["vf"] = "scale=-2:" + strconv.Itoa(height)
		outputKwargs["c:v"] = settings.VideoCodec
		outputKwargs["crf"] = config.ResizeCRF
		outputKwargs["c:a"] = types.Passthrough

	case types.Transcode:
		if o.ContainerFormat == "" {
			return cmdline.CommandLine{}, errors.New("transcode requires a container format")
		}
		outputKwargs["format"] = Muxer(o.ContainerFormat)
		if strings.EqualFold(o.VideoCodec, types.Passthrough) {
			outputKwargs["c:v"] = types.Passthrough
		} else {
			if o.VideoCodec != "" {
				outputKwargs["c:v"] = o.VideoCodec
			}
			if o.CRF != "" {
				outputKwargs["crf"] = o.CRF
			}
			if o.Bitrate != "" {
				outputKwargs["b:v"] = o.Bitrate
			}
		}
		switch {
		case strings.EqualFold(o.AudioCodec, types.Passthrough):
			outputKwargs["c:a"] = types.Passthrough
		case o.AudioCodec != "":
			outputKwargs["c:a"] = o.AudioCodec
		}

	default:
		return cmdline.CommandLine{}, errors.Errorf("unsupported operation: %T", op)
	}

	// an output without an extension leaves ffmpeg nothing to pick the muxer from
	if _, ok := outputKwargs["format"]; !ok && filepath.Ext(output) == "" {
		outputKwargs["format"] = settings.ContainerFormat
	}

	args := ffmpeg.Input(input, inputKwargs).
		Output(output, outputKwargs).
		OverWriteOutput().
		GetArgs()

	return cmdline.New(config.FFmpegTool, args, input, output), nil
}

// buildProbe asks ffprobe for the container and every stream as JSON
func buildProbe(input string) cmdline.CommandLine {
	args := []string{
		"-v", "error",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		input,
	}
	return cmdline.New(config.FFprobeTool, args, input)
}
