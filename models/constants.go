package models

import (
	"fmt"
	"strings"
)

// StreamKind tags a Stream with its concrete variant.
type StreamKind int

const (
	Proxy StreamKind = iota
	VodProxy
	Relay
	Encode
	TimeshiftPlayer
	TimeshiftRecorder
	Catchup
	TestLife
	VodRelay
	VodEncode
	CodRelay
	CodEncode
	Event
)

func (k StreamKind) String() string {
	switch k {
	case Proxy:
		return "PROXY"
	case VodProxy:
		return "VOD_PROXY"
	case Relay:
		return "RELAY"
	case Encode:
		return "ENCODE"
	case TimeshiftPlayer:
		return "TIMESHIFT_PLAYER"
	case TimeshiftRecorder:
		return "TIMESHIFT_RECORDER"
	case Catchup:
		return "CATCHUP"
	case TestLife:
		return "TEST_LIFE"
	case VodRelay:
		return "VOD_RELAY"
	case VodEncode:
		return "VOD_ENCODE"
	case CodRelay:
		return "COD_RELAY"
	case CodEncode:
		return "COD_ENCODE"
	case Event:
		return "EVENT"
	}
	return "UNKNOWN"
}

// ParseStreamKind maps the wire spelling back to the tag.
func ParseStreamKind(s string) (StreamKind, error) {
	for k := Proxy; k <= Event; k++ {
		if k.String() == strings.ToUpper(s) {
			return k, nil
		}
	}
	return Proxy, fmt.Errorf("unknown stream kind %q", s)
}

// VodType distinguishes standalone titles from series episodes.
type VodType int

const (
	Vods VodType = iota
	Series
)

// HlsType indicates who initiates HLS segment transfer.
type HlsType int

const (
	HlsPull HlsType = iota
	HlsPush
)

// UserAgent is the client hint sent when pulling an input URL.
type UserAgent int

const (
	UserAgentGStreamer UserAgent = iota
	UserAgentVLC
	UserAgentFFmpeg
	UserAgentWink
)

// StreamLogLevel mirrors syslog severity for the media engine.
type StreamLogLevel int

const (
	LogLevelEmerg StreamLogLevel = iota
	LogLevelAlert
	LogLevelCrit
	LogLevelErr
	LogLevelWarning
	LogLevelNotice
	LogLevelInfo
	LogLevelDebug
)

const (
	DefaultHlsPlaylist = "master.m3u8"
	DefaultTestURL     = "test"
	DefaultLocale      = "en"

	DefaultStreamName       = "Stream"
	DefaultStreamGroupTitle = ""
	DefaultStreamTvgID      = ""
	DefaultStreamTvgName    = ""
	DefaultStreamIconURL    = "https://streamrack.io/static/images/unknown_channel.png"
	DefaultPreviewIconURL   = "https://streamrack.io/static/images/unknown_preview.png"
	InvalidTrailerURL       = "https://streamrack.io/static/video/invalid_trailer.m3u8"
	DefaultVodDescription   = ""
	DefaultVodCountry       = "Unknown"

	DefaultIARC = 21
)

// Sentinels: a field equal to its invalid value is treated as unset and is
// left out of the engine config.
const (
	InvalidAudioSelect        = -1
	InvalidFrameRate          = 0
	InvalidAudioChannelsCount = 0
	InvalidWidth              = 0
	InvalidHeight             = 0
	InvalidVideoBitRate       = 0
	InvalidAudioBitRate       = 0
	InvalidRatioNum           = 0
	InvalidRatioDen           = 0
)

const (
	DefaultLoop            = false
	DefaultAVFormat        = false
	DefaultHaveVideo       = true
	DefaultHaveAudio       = true
	DefaultRelayVideo      = false
	DefaultRelayAudio      = false
	DefaultDeinterlace     = false
	DefaultVolume          = 1.0
	DefaultAutoExitTime    = 0
	DefaultRestartAttempts = 10

	DefaultLogoX     = 0
	DefaultLogoY     = 0
	DefaultLogoAlpha = 1.0

	DefaultTimeshiftChunkDuration = 120
	DefaultTimeshiftChunkLifeTime = 12 * 3600
	DefaultTimeshiftDelay         = 3600
	DefaultCatchupChunkDuration   = 12
	DefaultCatchupExitTime        = 3600

	MaxVideoDurationMsec = 3600 * 1000 * 365
)

// GStreamer parser and encoder element names accepted by the media engine.
const (
	TSVideoParser   = "tsparse"
	H264VideoParser = "h264parse"
	H265VideoParser = "h265parse"

	AACAudioParser  = "aacparse"
	AC3AudioParser  = "ac3parse"
	MpegAudioParser = "mpegaudioparse"

	DefaultVideoParser = H264VideoParser
	DefaultAudioParser = AACAudioParser

	X264Encoder    = "x264enc"
	X265Encoder    = "x265enc"
	NvH264Encoder  = "nvh264enc"
	NvH265Encoder  = "nvh265enc"
	VaapiH264Enc   = "vaapih264enc"
	MsdkH264Enc    = "msdkh264enc"
	OpenH264Enc    = "openh264enc"
	EavcEncoder    = "eavcenc"
	LameMp3Encoder = "lamemp3enc"
	FaacEncoder    = "faac"
	VoaacEncoder   = "voaacenc"

	DefaultVideoCodec = X264Encoder
	DefaultAudioCodec = FaacEncoder
)

const DefaultDevicesCount = 10
