package types

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Passthrough is the codec value that copies a stream without re-encoding it.
const Passthrough = "copy"

// Operation is a single user-selected transformation. The set of
// implementations is closed: only the variants in this file satisfy it.
type Operation interface {
	Kind() OperationKind
	operation()
}

type ExtractAudio struct{}

type Compress struct {
	Quality Quality
}

type Convert struct {
	TargetFormat string
}

// Clip cuts a segment out of the input. Both bounds are optional and are
// absolute positions in the input, in any syntax ffmpeg accepts for a duration.
type Clip struct {
	StartTime string
	EndTime   string
}

type Resize struct {
	Resolution Resolution
}

// Transcode re-encodes or copies each stream independently. Bitrate and CRF
// apply to the video stream and are ignored when it is copied.
type Transcode struct {
	VideoCodec      string
	AudioCodec      string
	ContainerFormat string
	Bitrate         string
	CRF             string
}

type Probe struct{}

func (ExtractAudio) Kind() OperationKind { return OperationKindExtractAudio }
func (Compress) Kind() OperationKind     { return OperationKindCompress }
func (Convert) Kind() OperationKind      { return OperationKindConvert }
func (Clip) Kind() OperationKind         { return OperationKindClip }
func (Resize) Kind() OperationKind       { return OperationKindResize }
func (Transcode) Kind() OperationKind    { return OperationKindTranscode }
func (Probe) Kind() OperationKind        { return OperationKindProbe }

func (ExtractAudio) operation() {}
func (Compress) operation()     {}
func (Convert) operation()      {}
func (Clip) operation()         {}
func (Resize) operation()       {}
func (Transcode) operation()    {}
func (Probe) operation()        {}

// ProducesOutput reports whether op writes a media file.
func ProducesOutput(op Operation) bool {
	_, isProbe := op.(Probe)
	return op != nil && !isProbe
}

// Quality selects a constant-quality factor for Compress.
type Quality int

const (
	QualityHigh Quality = iota + 1
	QualityMedium
	QualityLow
)

var qualityNames = map[Quality]string{
	QualityHigh:   "high",
	QualityMedium: "medium",
	QualityLow:    "low",
}

var qualityFactors = map[Quality]int{
	QualityHigh:   18,
	QualityMedium: 23,
	QualityLow:    28,
}

func (q Quality) String() string {
	if name, ok := qualityNames[q]; ok {
		return name
	}
	return fmt.Sprintf("Quality(%d)", int(q))
}

// Factor returns the CRF value for q. Lower means better fidelity and larger files.
func (q Quality) Factor() (int, bool) {
	f, ok := qualityFactors[q]
	return f, ok
}

func ParseQuality(s string) (Quality, error) {
	for q, name := range qualityNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return q, nil
		}
	}
	return 0, errors.Errorf("unsupported quality: %q (supported: high, medium, low)", s)
}

// Resolution selects a target height for Resize.
type Resolution int

const (
	Resolution1080p Resolution = 1080
	Resolution720p  Resolution = 720
	Resolution480p  Resolution = 480
	Resolution360p  Resolution = 360
)

// Resolutions lists the supported targets from largest to smallest.
func Resolutions() []Resolution {
	return []Resolution{Resolution1080p, Resolution720p, Resolution480p, Resolution360p}
}

func (r Resolution) String() string {
	return fmt.Sprintf("%dp", int(r))
}

// Height returns the target height in pixels.
func (r Resolution) Height() (int, bool) {
	for _, known := range Resolutions() {
		if r == known {
			return int(r), true
		}
	}
	return 0, false
}

func ParseResolution(s string) (Resolution, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, r := range Resolutions() {
		if s == r.String() {
			return r, nil
		}
	}
	return 0, errors.Errorf("unsupported resolution: %q (supported: 1080p, 720p, 480p, 360p)", s)
}

// OperationFields is the loosely typed form an operation arrives in from a
// shell: flags or form fields, any of which may be blank.
type OperationFields struct {
	Quality         string
	TargetFormat    string
	StartTime       string
	EndTime         string
	Resolution      string
	VideoCodec      string
	AudioCodec      string
	ContainerFormat string
	Bitrate         string
	CRF             string
}

// ParseOperation builds the variant named by kind, reading only the fields
// that variant carries. Text fields are trimmed; blank stays blank.
func ParseOperation(kind OperationKind, f OperationFields) (Operation, error) {
	trim := strings.TrimSpace
	switch kind {
	case OperationKindExtractAudio:
		return ExtractAudio{}, nil
	case OperationKindCompress:
		q, err := ParseQuality(f.Quality)
		if err != nil {
			return nil, err
		}
		return Compress{Quality: q}, nil
	case OperationKindConvert:
		format := strings.TrimPrefix(strings.ToLower(trim(f.TargetFormat)), ".")
		if format == "" {
			return nil, errors.New("convert requires a target format")
		}
		return Convert{TargetFormat: format}, nil
	case OperationKindClip:
		return Clip{StartTime: trim(f.StartTime), EndTime: trim(f.EndTime)}, nil
	case OperationKindResize:
		r, err := ParseResolution(f.Resolution)
		if err != nil {
			return nil, err
		}
		return Resize{Resolution: r}, nil
	case OperationKindTranscode:
		container := strings.TrimPrefix(strings.ToLower(trim(f.ContainerFormat)), ".")
		if container == "" {
			return nil, errors.New("transcode requires a container format")
		}
		return Transcode{
			VideoCodec:      trim(f.VideoCodec),
			AudioCodec:      trim(f.AudioCodec),
			ContainerFormat: container,
			Bitrate:         trim(f.Bitrate),
			CRF:             trim(f.CRF),
		}, nil
	case OperationKindProbe:
		return Probe{}, nil
	default:
		return nil, errors.Errorf("unsupported operation: %q", kind)
	}
}
