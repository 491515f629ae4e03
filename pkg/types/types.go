package types

type OperationKind string

const (
	OperationKindExtractAudio OperationKind = "extract-audio"
	OperationKindCompress     OperationKind = "compress"
	OperationKindConvert      OperationKind = "convert"
	OperationKindClip         OperationKind = "clip"
	OperationKindResize       OperationKind = "resize"
	OperationKindTranscode    OperationKind = "transcode"
	OperationKindProbe        OperationKind = "probe"
)

// OperationKinds lists every supported kind in display order.
func OperationKinds() []OperationKind {
	return []OperationKind{
		OperationKindExtractAudio,
		OperationKindCompress,
		OperationKindConvert,
		OperationKindClip,
		OperationKindResize,
		OperationKindTranscode,
		OperationKindProbe,
	}
}

// Channel identifies which output stream of a subprocess a chunk came from.
type Channel string

const (
	ChannelStdout Channel = "stdout"
	ChannelStderr Channel = "stderr"
)

// OutputEvent is one chunk of subprocess output.
type OutputEvent struct {
	Channel Channel
	Chunk   string
}
