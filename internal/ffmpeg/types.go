package ffmpeg

import "time"

// VideoInfo contains metadata about a video file
type VideoInfo struct {
	FilePath     string
	Duration     time.Duration
	Width        int
	Height       int
	FPS          float64
	Bitrate      int64
	VideoCodec   string
	HasVideo     bool
	HasAudio     bool
	AudioCodec   string
	AudioBitrate int64
}

// Progress represents ffmpeg progress data
type Progress struct {
	Frame      int
	FPS        float64
	Bitrate    string
	Time       string
	Speed      string
	Percentage float64
}

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args []string
	// Duration of the media being produced, used to fill Progress.Percentage.
	Duration        time.Duration
	ProgressHandler ProgressFunc
	LogHandler      func(line string)
}

// Default encoding settings
const (
	DefaultCRF        = 23
	DefaultPreset     = "medium"
	DefaultVideoCodec = "libx264"
	DefaultAudioCodec = "aac"
	DefaultPixFmt     = "yuv420p"

	// Uniform audio layout for segments that are concatenated later.
	AudioSampleRate = 48000
	AudioChannels   = 2
)

// EncodeSettings holds the codec knobs shared by every encoding operation.
// Zero values fall back to the package defaults.
type EncodeSettings struct {
	VideoCodec string
	AudioCodec string
	CRF        int
	Preset     string
}

func (s EncodeSettings) withDefaults() EncodeSettings {
	if s.VideoCodec == "" {
		s.VideoCodec = DefaultVideoCodec
	}
	if s.AudioCodec == "" {
		s.AudioCodec = DefaultAudioCodec
	}
	if s.CRF == 0 {
		s.CRF = DefaultCRF
	}
	if s.Preset == "" {
		s.Preset = DefaultPreset
	}
	return s
}

// RenderOptions configures a full re-encode of one input
type RenderOptions struct {
	Input  string
	Output string
	EncodeSettings
	// Filters are applied to the video stream before encoding.
	Filters []string
	// Duration of the input, used to fill Progress.Percentage.
	Duration     time.Duration
	ProgressFunc ProgressFunc
}

// ProgressFunc is a callback for progress updates during ffmpeg operations.
// Called periodically with progress information as the operation executes.
type ProgressFunc func(*Progress)

// AudioMode selects what audio a clip extraction writes.
type AudioMode int

const (
	// AudioKeep copies the first audio stream of the input.
	AudioKeep AudioMode = iota
	// AudioSilent writes a generated silent track of the clip's length.
	AudioSilent
	// AudioNone writes no audio stream.
	AudioNone
)
