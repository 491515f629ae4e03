package ffmpeg

import (
	"path/filepath"
	"strings"

	"github.com/ZacxDev/ffcmd/internal/config"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"golang.org/x/exp/slices"
)

type CodecSettings struct {
	VideoCodec      string
	AudioCodec      string
	ContainerFormat string
	FileExtension   string
	EncoderPresets  map[string]ffmpeg.KwArgs
}

var h264Presets = map[string]ffmpeg.KwArgs{
	"balanced": {
		"preset": config.CompressPreset,
	},
}

var codecPresets = map[string]CodecSettings{
	"mp4": {
		VideoCodec:      "libx264",
		AudioCodec:      "aac",
		ContainerFormat: "mp4",
		FileExtension:   ".mp4",
		EncoderPresets:  h264Presets,
	},
	"mov": {
		VideoCodec:      "libx264",
		AudioCodec:      "aac",
		ContainerFormat: "mov",
		FileExtension:   ".mov",
		EncoderPresets:  h264Presets,
	},
	"mkv": {
		VideoCodec:      "libx264",
		AudioCodec:      "aac",
		ContainerFormat: "matroska",
		FileExtension:   ".mkv",
		EncoderPresets:  h264Presets,
	},
	"avi": {
		VideoCodec:      "libx264",
		AudioCodec:      "aac",
		ContainerFormat: "avi",
		FileExtension:   ".avi",
		EncoderPresets:  h264Presets,
	},
	"webm": {
		VideoCodec:      "libvpx-vp9",
		AudioCodec:      "libopus",
		ContainerFormat: "webm",
		FileExtension:   ".webm",
		EncoderPresets: map[string]ffmpeg.KwArgs{
			"balanced": {
				"deadline": "good",
				"cpu-used": "2",
				"row-mt":   "1",
			},
		},
	},
}

// DefaultContainer is used when a path carries no known extension
const DefaultContainer = "mp4"

// GetCodecSettings returns the default codecs for a container name such as
// "mp4" or "webm". Unknown containers get the mp4 defaults.
func GetCodecSettings(container string) CodecSettings {
	container = strings.TrimPrefix(strings.ToLower(container), ".")
	if settings, ok := codecPresets[container]; ok {
		return settings
	}
	return codecPresets[DefaultContainer]
}

// Muxer returns the ffmpeg -f name for a container. Containers without
// presets are assumed to be muxer names already.
func Muxer(container string) string {
	container = strings.TrimPrefix(strings.ToLower(container), ".")
	if settings, ok := codecPresets[container]; ok {
		return settings.ContainerFormat
	}
	return container
}

// Extension returns the file extension, dot included, for a container
func Extension(container string) string {
	container = strings.TrimPrefix(strings.ToLower(container), ".")
	if container == "" {
		container = DefaultContainer
	}
	if settings, ok := codecPresets[container]; ok {
		return settings.FileExtension
	}
	return "." + container
}

// ContainerOf returns the container name implied by a file path's extension
func ContainerOf(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return DefaultContainer
	}
	return ext
}

// SupportedContainers returns the containers with known codec defaults
func SupportedContainers() []string {
	names := make([]string, 0, len(codecPresets))
	for name := range codecPresets {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
