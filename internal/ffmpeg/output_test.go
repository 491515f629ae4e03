package ffmpeg

import (
	"path/filepath"
	"testing"

	"github.com/ZacxDev/ffcmd/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestDefaultOutputPath(t *testing.T) {
	dir := filepath.Join("videos", "in")
	input := filepath.Join(dir, "sample.mov")

	tests := []struct {
		op   types.Operation
		want string
	}{
		{types.ExtractAudio{}, "sample.mp3"},
		{types.Compress{Quality: types.QualityHigh}, "sample_compressed.mov"},
		{types.Convert{TargetFormat: "mp4"}, "sample.mp4"},
		{types.Convert{TargetFormat: "MOV"}, "sample.mov"},
		{types.Clip{EndTime: "30"}, "sample_clip.mov"},
		{types.Resize{Resolution: types.Resolution480p}, "sample_480p.mov"},
		{types.Transcode{ContainerFormat: "mkv"}, "sample_transcoded.mkv"},
	}

	for _, tt := range tests {
		t.Run(string(tt.op.Kind()), func(t *testing.T) {
			assert.Equal(t, filepath.Join(dir, tt.want), DefaultOutputPath(tt.op, input))
		})
	}

	assert.Empty(t, DefaultOutputPath(types.Probe{}, input))
	assert.Empty(t, DefaultOutputPath(nil, input))
}

func TestDefaultOutputPathWithoutExtension(t *testing.T) {
	assert.Equal(t, filepath.Join("v", "clip_clip.mp4"), DefaultOutputPath(types.Clip{}, filepath.Join("v", "clip")))
}

func TestEnsureExtension(t *testing.T) {
	assert.Equal(t, "a.mp4", EnsureExtension("a", "mp4"))
	assert.Equal(t, "a.mp4", EnsureExtension("a", ".mp4"))
	assert.Equal(t, "a.MP4", EnsureExtension("a.MP4", "mp4"))
	assert.Equal(t, "a.mp4", EnsureExtension("a", ""))
}

func TestCodecSettings(t *testing.T) {
	assert.Equal(t, "libvpx-vp9", GetCodecSettings(".WEBM").VideoCodec)
	assert.Equal(t, "libx264", GetCodecSettings("unknown").VideoCodec)
	assert.Equal(t, "webm", ContainerOf("/a/b.WebM"))
	assert.Equal(t, DefaultContainer, ContainerOf("/a/b"))
	assert.Equal(t, []string{"avi", "mkv", "mov", "mp4", "webm"}, SupportedContainers())
	assert.Equal(t, "medium", GetCodecSettings("mp4").EncoderPresets["balanced"]["preset"])
}

func TestMuxerAndExtension(t *testing.T) {
	assert.Equal(t, "matroska", Muxer(".MKV"))
	assert.Equal(t, "webm", Muxer("webm"))
	assert.Equal(t, "flv", Muxer("flv"))

	assert.Equal(t, ".mkv", Extension("mkv"))
	assert.Equal(t, ".flv", Extension(".flv"))
	assert.Equal(t, ".mp4", Extension(""))
}
