package ffmpeg

import (
	"slices"
	"testing"

	"github.com/ZacxDev/ffcmd/internal/cmdline"
	"github.com/ZacxDev/ffcmd/pkg/types"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flagValue returns the argument following the first occurrence of flag
func flagValue(t *testing.T, args []string, flag string) string {
	t.Helper()
	i := slices.Index(args, flag)
	require.NotEqual(t, -1, i, "flag %s missing from %v", flag, args)
	require.Less(t, i+1, len(args), "flag %s has no value in %v", flag, args)
	return args[i+1]
}

func countFlag(args []string, flag string) int {
	n := 0
	for _, a := range args {
		if a == flag {
			n++
		}
	}
	return n
}

func mustBuild(t *testing.T, op types.Operation, input, output string) cmdline.CommandLine {
	t.Helper()
	cl, err := Build(op, input, output)
	require.NoError(t, err)
	return cl
}

func TestBuildExtractAudio(t *testing.T) {
	input := "/videos/sample.mp4"
	output := DefaultOutputPath(types.ExtractAudio{}, input)
	require.Equal(t, "/videos/sample.mp3", output)

	cl := mustBuild(t, types.ExtractAudio{}, input, output)

	assert.Equal(t, "ffmpeg", cl.Program)
	assert.Equal(t, input, flagValue(t, cl.Args, "-i"))
	assert.Contains(t, cl.Args, "-vn")
	assert.Contains(t, cl.Args, "-y")
	assert.Contains(t, cl.Args, output)
	assert.Equal(t, "libmp3lame", flagValue(t, cl.Args, "-acodec"))
	assert.Equal(t, "2", flagValue(t, cl.Args, "-q:a"))
	assert.NotContains(t, cl.Args, "-c:v")
}

func TestBuildCompressQualityFactors(t *testing.T) {
	tests := []struct {
		quality types.Quality
		want    string
	}{
		{types.QualityHigh, "18"},
		{types.QualityMedium, "23"},
		{types.QualityLow, "28"},
	}

	for _, tt := range tests {
		t.Run(tt.quality.String(), func(t *testing.T) {
			cl := mustBuild(t, types.Compress{Quality: tt.quality}, "/v/a.mp4", "/v/a_compressed.mp4")
			assert.Equal(t, tt.want, flagValue(t, cl.Args, "-crf"))
			assert.Equal(t, 1, countFlag(cl.Args, "-crf"))
			assert.Equal(t, "medium", flagValue(t, cl.Args, "-preset"))
			assert.Equal(t, "libx264", flagValue(t, cl.Args, "-c:v"))
			assert.Equal(t, "aac", flagValue(t, cl.Args, "-c:a"))
			assert.Equal(t, "128k", flagValue(t, cl.Args, "-b:a"))
			assert.Contains(t, cl.Args, "-y")
		})
	}

	_, err := Build(types.Compress{}, "/v/a.mp4", "/v/b.mp4")
	assert.Error(t, err, "zero quality is not a supported value")
}

func TestBuildConvertUsesContainerDefaults(t *testing.T) {
	cl := mustBuild(t, types.Convert{TargetFormat: "webm"}, "/v/a.mp4", "/v/a.webm")
	assert.Equal(t, "libvpx-vp9", flagValue(t, cl.Args, "-c:v"))
	assert.Equal(t, "libopus", flagValue(t, cl.Args, "-c:a"))

	cl = mustBuild(t, types.Convert{TargetFormat: "mkv"}, "/v/a.webm", "/v/a.mkv")
	assert.Equal(t, "libx264", flagValue(t, cl.Args, "-c:v"))
	assert.Equal(t, "aac", flagValue(t, cl.Args, "-c:a"))
}

func TestBuildSetsRequestedContainer(t *testing.T) {
	t.Run("convert with mismatched output extension", func(t *testing.T) {
		cl := mustBuild(t, types.Convert{TargetFormat: "webm"}, "/v/a.mp4", "/v/out.mp4")
		assert.Equal(t, "webm", flagValue(t, cl.Args, "-f"))
		assert.Equal(t, "libvpx-vp9", flagValue(t, cl.Args, "-c:v"))
		assert.Less(t, slices.Index(cl.Args, "-f"), slices.Index(cl.Args, "/v/out.mp4"))
	})

	t.Run("convert without output extension", func(t *testing.T) {
		cl := mustBuild(t, types.Convert{TargetFormat: "mkv"}, "/v/a.mp4", "/v/out")
		assert.Equal(t, "matroska", flagValue(t, cl.Args, "-f"))
	})

	t.Run("transcode with mismatched output extension", func(t *testing.T) {
		op := types.Transcode{VideoCodec: "copy", AudioCodec: "copy", ContainerFormat: "webm"}
		cl := mustBuild(t, op, "/v/a.mkv", "/v/out.mp4")
		assert.Equal(t, "webm", flagValue(t, cl.Args, "-f"))
	})

	t.Run("unknown container is used as the muxer name", func(t *testing.T) {
		op := types.Transcode{VideoCodec: "copy", ContainerFormat: "flv"}
		cl := mustBuild(t, op, "/v/a.mkv", "/v/out.flv")
		assert.Equal(t, "flv", flagValue(t, cl.Args, "-f"))
	})

	t.Run("output without extension falls back to its defaults", func(t *testing.T) {
		cl := mustBuild(t, types.Compress{Quality: types.QualityMedium}, "/v/a.mp4", "/v/out")
		assert.Equal(t, "mp4", flagValue(t, cl.Args, "-f"))

		cl = mustBuild(t, types.ExtractAudio{}, "/v/a.mp4", "/v/out")
		assert.Equal(t, "mp3", flagValue(t, cl.Args, "-f"))
	})

	t.Run("extension decides when nothing is requested", func(t *testing.T) {
		cl := mustBuild(t, types.Compress{Quality: types.QualityMedium}, "/v/a.mp4", "/v/a_compressed.mp4")
		assert.NotContains(t, cl.Args, "-f")
	})

	t.Run("blank container is rejected", func(t *testing.T) {
		_, err := Build(types.Convert{}, "/v/a.mp4", "/v/out.mp4")
		assert.Error(t, err)
		_, err = Build(types.Transcode{VideoCodec: "copy"}, "/v/a.mp4", "/v/out.mp4")
		assert.Error(t, err)
	})
}

func TestBuildClip(t *testing.T) {
	t.Run("end only", func(t *testing.T) {
		cl := mustBuild(t, types.Clip{EndTime: "30"}, "/v/a.mp4", "/v/a_clip.mp4")
		assert.Equal(t, "30", flagValue(t, cl.Args, "-to"))
		assert.NotContains(t, cl.Args, "-ss")
	})

	t.Run("start only", func(t *testing.T) {
		cl := mustBuild(t, types.Clip{StartTime: "00:01:00"}, "/v/a.mp4", "/v/a_clip.mp4")
		assert.Equal(t, "00:01:00", flagValue(t, cl.Args, "-ss"))
		assert.NotContains(t, cl.Args, "-to")
	})

	t.Run("both bounds precede the input", func(t *testing.T) {
		cl := mustBuild(t, types.Clip{StartTime: "10", EndTime: "30"}, "/v/a.mp4", "/v/a_clip.mp4")
		input := slices.Index(cl.Args, "-i")
		assert.Less(t, slices.Index(cl.Args, "-ss"), input)
		assert.Less(t, slices.Index(cl.Args, "-to"), input)
		assert.Equal(t, "libx264", flagValue(t, cl.Args, "-c:v"))
		assert.Equal(t, "aac", flagValue(t, cl.Args, "-c:a"))
	})

	t.Run("no bounds", func(t *testing.T) {
		cl := mustBuild(t, types.Clip{}, "/v/a.mp4", "/v/a_clip.mp4")
		assert.NotContains(t, cl.Args, "-ss")
		assert.NotContains(t, cl.Args, "-to")
	})
}

func TestBuildResize(t *testing.T) {
	cl := mustBuild(t, types.Resize{Resolution: types.Resolution720p}, "/videos/a.mov", "/videos/a_720p.mov")
	assert.Equal(t, "scale=-2:720", flagValue(t, cl.Args, "-vf"))
	assert.Equal(t, "23", flagValue(t, cl.Args, "-crf"))
	assert.Equal(t, "libx264", flagValue(t, cl.Args, "-c:v"))

	_, err := Build(types.Resize{Resolution: 1234}, "/videos/a.mov", "/videos/b.mov")
	assert.Error(t, err)
}

func TestBuildTranscode(t *testing.T) {
	t.Run("video passthrough drops quality flags", func(t *testing.T) {
		op := types.Transcode{VideoCodec: "copy", AudioCodec: "aac", ContainerFormat: "mkv", Bitrate: "4M", CRF: "20"}
		cl := mustBuild(t, op, "/v/a.mp4", "/v/a.mkv")
		assert.Equal(t, "copy", flagValue(t, cl.Args, "-c:v"))
		assert.Equal(t, "aac", flagValue(t, cl.Args, "-c:a"))
		assert.NotContains(t, cl.Args, "-crf")
		assert.NotContains(t, cl.Args, "-b:v")
	})

	t.Run("encode video, copy audio", func(t *testing.T) {
		op := types.Transcode{VideoCodec: "libx265", AudioCodec: "COPY", ContainerFormat: "mp4", CRF: "26", Bitrate: "2M"}
		cl := mustBuild(t, op, "/v/a.mkv", "/v/a.mp4")
		assert.Equal(t, "libx265", flagValue(t, cl.Args, "-c:v"))
		assert.Equal(t, "copy", flagValue(t, cl.Args, "-c:a"))
		assert.Equal(t, 1, countFlag(cl.Args, "-crf"))
		assert.Equal(t, "26", flagValue(t, cl.Args, "-crf"))
		assert.Equal(t, "2M", flagValue(t, cl.Args, "-b:v"))
	})

	t.Run("copy both", func(t *testing.T) {
		op := types.Transcode{VideoCodec: "copy", AudioCodec: "copy", ContainerFormat: "mkv"}
		cl := mustBuild(t, op, "/v/a.mp4", "/v/a.mkv")
		assert.Equal(t, "copy", flagValue(t, cl.Args, "-c:v"))
		assert.Equal(t, "copy", flagValue(t, cl.Args, "-c:a"))
	})

	t.Run("blank fields are omitted", func(t *testing.T) {
		op := types.Transcode{VideoCodec: "libx264", ContainerFormat: "mp4"}
		cl := mustBuild(t, op, "/v/a.mkv", "/v/a.mp4")
		assert.NotContains(t, cl.Args, "-crf")
		assert.NotContains(t, cl.Args, "-b:v")
		assert.NotContains(t, cl.Args, "-c:a")
		assert.NotContains(t, cl.Args, "")
	})

	t.Run("values pass through unvalidated", func(t *testing.T) {
		op := types.Transcode{VideoCodec: "libx264", ContainerFormat: "mp4", CRF: "99"}
		cl := mustBuild(t, op, "/v/a.mkv", "/v/a.mp4")
		assert.Equal(t, "99", flagValue(t, cl.Args, "-crf"))
	})
}

func TestBuildProbe(t *testing.T) {
	cl := mustBuild(t, types.Probe{}, "/v/a.mp4", "/v/ignored.mp4")
	assert.Equal(t, "ffprobe", cl.Program)
	assert.Equal(t, "json", flagValue(t, cl.Args, "-print_format"))
	assert.Contains(t, cl.Args, "-show_format")
	assert.Contains(t, cl.Args, "-show_streams")
	assert.Equal(t, "/v/a.mp4", cl.Args[len(cl.Args)-1])
	assert.NotContains(t, cl.Args, "/v/ignored.mp4")
	assert.NotContains(t, cl.Args, "-y")
}

func TestBuildErrors(t *testing.T) {
	_, err := Build(nil, "/v/a.mp4", "/v/b.mp4")
	assert.Error(t, err)

	_, err = Build(types.ExtractAudio{}, "", "/v/b.mp3")
	assert.Error(t, err)

	_, err = Build(types.ExtractAudio{}, "/v/a.mp4", "")
	assert.ErrorContains(t, err, "extract-audio requires an output path")
}

func TestBuildRoundTrip(t *testing.T) {
	input := "/home/me/My Videos/day 'one'.mp4"
	ops := []types.Operation{
		types.ExtractAudio{},
		types.Compress{Quality: types.QualityLow},
		types.Convert{TargetFormat: "webm"},
		types.Clip{StartTime: "5"},
		types.Clip{EndTime: "00:00:30.5"},
		types.Clip{StartTime: "00:00 10"},
		types.Resize{Resolution: types.Resolution360p},
		types.Transcode{VideoCodec: "copy", AudioCodec: "libopus", ContainerFormat: "mkv"},
		types.Transcode{VideoCodec: "libx265", AudioCodec: "copy", ContainerFormat: "mp4", CRF: "28", Bitrate: "1500k"},
		types.Probe{},
	}

	for _, op := range ops {
		t.Run(string(op.Kind()), func(t *testing.T) {
			cl := mustBuild(t, op, input, DefaultOutputPath(op, input))
			if diff := cmp.Diff(cl.Argv(), cmdline.Tokenize(cl.String())); diff != "" {
				t.Errorf("round trip mismatch for %q (-want +got):\n%s", cl.String(), diff)
			}
		})
	}
}
