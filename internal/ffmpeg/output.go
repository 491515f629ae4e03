package ffmpeg

import (
	"path/filepath"
	"strings"

	"github.com/ZacxDev/ffcmd/internal/config"
	"github.com/ZacxDev/ffcmd/pkg/types"
)

// DefaultOutputPath derives the destination for op from the input path,
// next to the input. It returns "" for operations that write no file. The
// result may already exist; callers pass it through a uniqueness check.
func DefaultOutputPath(op types.Operation, input string) string {
	dir := filepath.Dir(input)
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(filepath.Base(input), ext)
	if ext == "" {
		ext = "." + DefaultContainer
	}

	var name string
	switch o := op.(type) {
	case types.ExtractAudio:
		name = stem + config.ExtractAudioExt
	case types.Compress:
		name = stem + "_compressed" + ext
	case types.Convert:
		name = EnsureExtension(stem, o.TargetFormat)
	case types.Clip:
		name = stem + "_clip" + ext
	case types.Resize:
		name = stem + "_" + o.Resolution.String() + ext
	case types.Transcode:
		name = EnsureExtension(stem+"_transcoded", o.ContainerFormat)
	default:
		return ""
	}
	return filepath.Join(dir, name)
}

// EnsureExtension appends format as a file extension unless name already ends with it
func EnsureExtension(name, format string) string {
	ext := Extension(format)
	if strings.HasSuffix(strings.ToLower(name), ext) {
		return name
	}
	return name + ext
}
