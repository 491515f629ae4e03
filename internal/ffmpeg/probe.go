package ffmpeg

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Report is the JSON document ffprobe prints for -show_format -show_streams
type Report struct {
	Format  Format   `json:"format"`
	Streams []Stream `json:"streams"`
}

type Format struct {
	Filename       string            `json:"filename"`
	NbStreams      int               `json:"nb_streams"`
	FormatName     string            `json:"format_name"`
	FormatLongName string            `json:"format_long_name"`
	Duration       string            `json:"duration"`
	Size           string            `json:"size"`
	BitRate        string            `json:"bit_rate"`
	Tags           map[string]string `json:"tags,omitempty"`
}

type Stream struct {
	Index         int    `json:"index"`
	CodecName     string `json:"codec_name"`
	CodecLongName string `json:"codec_long_name"`
	CodecType     string `json:"codec_type"`
	Width         int    `json:"width,omitempty"`
	Height        int    `json:"height,omitempty"`
	PixFmt        string `json:"pix_fmt,omitempty"`
	RFrameRate    string `json:"r_frame_rate,omitempty"`
	NbFrames      string `json:"nb_frames,omitempty"`
	SampleRate    string `json:"sample_rate,omitempty"`
	Channels      int    `json:"channels,omitempty"`
	Duration      string `json:"duration,omitempty"`
	BitRate       string `json:"bit_rate,omitempty"`
}

// ParseReport decodes ffprobe's JSON output
func ParseReport(data string) (*Report, error) {
	var report Report
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, errors.Wrap(err, "failed to parse ffprobe output")
	}
	if len(report.Streams) == 0 && report.Format.FormatName == "" {
		return nil, errors.New("ffprobe output holds no format or streams")
	}
	return &report, nil
}

// VideoStream returns the first video stream, or nil
func (r *Report) VideoStream() *Stream {
	return r.firstOfType("video")
}

// AudioStream returns the first audio stream, or nil
func (r *Report) AudioStream() *Stream {
	return r.firstOfType("audio")
}

func (r *Report) firstOfType(codecType string) *Stream {
	for i := range r.Streams {
		if r.Streams[i].CodecType == codecType {
			return &r.Streams[i]
		}
	}
	return nil
}

// DurationSeconds tries the video stream, then the container, then
// frames divided by frame rate.
func (r *Report) DurationSeconds() (float64, error) {
	video := r.VideoStream()

	if video != nil {
		if d, ok := parseSeconds(video.Duration); ok {
			return d, nil
		}
	}
	if d, ok := parseSeconds(r.Format.Duration); ok {
		return d, nil
	}
	if video != nil {
		frames, err := strconv.ParseFloat(video.NbFrames, 64)
		if err == nil {
			if rate := parseFrameRate(video.RFrameRate); rate > 0 {
				return frames / rate, nil
			}
		}
	}
	return 0, errors.New("could not determine duration")
}

// BitRate prefers the container figure, then the video stream, then an
// estimate from file size and duration. The result is in bits per second.
func (r *Report) BitRate() (int64, error) {
	if b, err := strconv.ParseInt(r.Format.BitRate, 10, 64); err == nil {
		return b, nil
	}
	if video := r.VideoStream(); video != nil {
		if b, err := strconv.ParseInt(video.BitRate, 10, 64); err == nil {
			return b, nil
		}
	}
	if size, err := strconv.ParseInt(r.Format.Size, 10, 64); err == nil {
		if d, err := r.DurationSeconds(); err == nil && d > 0 {
			return int64(float64(size*8) / d), nil
		}
	}
	return 0, errors.New("could not determine bitrate")
}

// Summary renders the report as short human readable lines
func (r *Report) Summary() []string {
	lines := []string{fmt.Sprintf("format: %s (%s)", r.Format.FormatName, r.Format.FormatLongName)}
	if d, err := r.DurationSeconds(); err == nil {
		lines = append(lines, fmt.Sprintf("duration: %.2fs", d))
	}
	if b, err := r.BitRate(); err == nil {
		lines = append(lines, fmt.Sprintf("bitrate: %d kb/s", b/1000))
	}
	for _, s := range r.Streams {
		switch s.CodecType {
		case "video":
			lines = append(lines, fmt.Sprintf("stream #%d video: %s %dx%d %s", s.Index, s.CodecName, s.Width, s.Height, s.RFrameRate))
		case "audio":
			lines = append(lines, fmt.Sprintf("stream #%d audio: %s %s Hz %d ch", s.Index, s.CodecName, s.SampleRate, s.Channels))
		default:
			lines = append(lines, fmt.Sprintf("stream #%d %s: %s", s.Index, s.CodecType, s.CodecName))
		}
	}
	return lines
}

func parseSeconds(s string) (float64, bool) {
	d, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

func parseFrameRate(rate string) float64 {
	nums := strings.Split(rate, "/")
	if len(nums) != 2 {
		return 0
	}
	num, err1 := strconv.ParseFloat(nums[0], 64)
	den, err2 := strconv.ParseFloat(nums[1], 64)
	if err1 != nil || err2 != nil || den == 0 {
		return 0
	}
	return num / den
}
