package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/teris-io/shortid"
	"gorm.io/gorm"
)

// HardwareCaps carries the fields shared by every stream the media engine
// runs itself. Proxy variants have none and pass raw URLs through.
type HardwareCaps struct {
	LogLevel        StreamLogLevel `json:"log_level"`
	Input           InputURLList   `json:"input"`
	HaveVideo       bool           `json:"have_video"`
	HaveAudio       bool           `json:"have_audio"`
	AudioSelect     int            `json:"audio_select"`
	Loop            bool           `json:"loop"`
	AVFormat        bool           `json:"avformat"`
	RestartAttempts int            `json:"restart_attempts"`
	AutoExitTime    int            `json:"auto_exit_time"`
	ExtraConfig     string         `json:"extra_config"`
}

func newHardwareCaps() *HardwareCaps {
	return &HardwareCaps{
		LogLevel:        LogLevelInfo,
		HaveVideo:       DefaultHaveVideo,
		HaveAudio:       DefaultHaveAudio,
		AudioSelect:     InvalidAudioSelect,
		Loop:            DefaultLoop,
		AVFormat:        DefaultAVFormat,
		RestartAttempts: DefaultRestartAttempts,
		AutoExitTime:    DefaultAutoExitTime,
	}
}

// RelayCaps names the parser elements for pass-through pipelines.
type RelayCaps struct {
	VideoParser string `json:"video_parser"`
	AudioParser string `json:"audio_parser"`
}

func newRelayCaps() *RelayCaps {
	return &RelayCaps{VideoParser: DefaultVideoParser, AudioParser: DefaultAudioParser}
}

// EncodeCaps holds the full transcode parameter set.
type EncodeCaps struct {
	RelayVideo         bool     `json:"relay_video"`
	RelayAudio         bool     `json:"relay_audio"`
	Deinterlace        bool     `json:"deinterlace"`
	FrameRate          int      `json:"frame_rate"`
	Volume             float64  `json:"volume"`
	VideoCodec         string   `json:"video_codec"`
	AudioCodec         string   `json:"audio_codec"`
	AudioChannelsCount int      `json:"audio_channels_count"`
	Size               Size     `json:"size"`
	VideoBitRate       int      `json:"video_bit_rate"`
	AudioBitRate       int      `json:"audio_bit_rate"`
	Logo               Logo     `json:"logo"`
	RSVGLogo           RSVGLogo `json:"rsvg_logo"`
	AspectRatio        Rational `json:"aspect_ratio"`
}

func newEncodeCaps() *EncodeCaps {
	return &EncodeCaps{
		RelayVideo:         DefaultRelayVideo,
		RelayAudio:         DefaultRelayAudio,
		Deinterlace:        DefaultDeinterlace,
		FrameRate:          InvalidFrameRate,
		Volume:             DefaultVolume,
		VideoCodec:         DefaultVideoCodec,
		AudioCodec:         DefaultAudioCodec,
		AudioChannelsCount: InvalidAudioChannelsCount,
		VideoBitRate:       InvalidVideoBitRate,
		AudioBitRate:       InvalidAudioBitRate,
		Logo:               NewLogo(),
	}
}

// TimeshiftCaps covers the recorder family and the delayed player. Recorders
// use ChunkDuration/ChunkLifeTime, players Dir/Delay, catchups additionally
// the [Start, Stop) wall clock window.
type TimeshiftCaps struct {
	ChunkDuration int       `json:"timeshift_chunk_duration"`
	ChunkLifeTime int       `json:"timeshift_chunk_life_time"`
	Dir           string    `json:"timeshift_dir"`
	Delay         int       `json:"timeshift_delay"`
	Start         time.Time `json:"start"`
	Stop          time.Time `json:"stop"`
}

// VodCaps holds the on-demand metadata shared by VOD variants.
type VodCaps struct {
	VodType     VodType   `json:"vod_type"`
	Description string    `json:"description"`
	TrailerURL  string    `json:"trailer_url"`
	UserScore   float64   `json:"user_score"`
	PrimeDate   time.Time `json:"prime_date"`
	Country     string    `json:"country"`
	Duration    int       `json:"duration"`
}

func newVodCaps() *VodCaps {
	return &VodCaps{
		VodType:     Vods,
		Description: DefaultVodDescription,
		TrailerURL:  InvalidTrailerURL,
		PrimeDate:   time.Unix(0, 0).UTC(),
		Country:     DefaultVodCountry,
	}
}

// Stream is one streamable unit on a backing media server. The concrete
// variant is the Type tag plus whichever capability structs are non-nil;
// the New*Stream constructors populate exactly the applicable set.
type Stream struct {
	ID          string     `gorm:"type:varchar(16);primary_key" json:"id"`
	Type        StreamKind `json:"type"`
	SettingsID  string     `gorm:"type:varchar(16);index" json:"-"`
	CreatedDate time.Time  `json:"created_date"`

	Name    string  `gorm:"type:varchar(64)" json:"name"`
	Group   string  `gorm:"type:varchar(64)" json:"group"`
	TvgID   string  `gorm:"type:varchar(64)" json:"tvg_id"`
	TvgName string  `gorm:"type:varchar(64)" json:"tvg_name"`
	TvgLogo string  `gorm:"type:varchar(2048)" json:"tvg_logo"`
	Price   float64 `json:"price"`
	Visible bool    `json:"visible"`
	IARC    int     `json:"iarc"`

	Output OutputURLList `gorm:"serializer:json" json:"output"`

	Hardware  *HardwareCaps  `gorm:"serializer:json" json:"hardware,omitempty"`
	Relay     *RelayCaps     `gorm:"serializer:json" json:"relay,omitempty"`
	Encode    *EncodeCaps    `gorm:"serializer:json" json:"encode,omitempty"`
	Timeshift *TimeshiftCaps `gorm:"serializer:json" json:"timeshift,omitempty"`
	Vod       *VodCaps       `gorm:"serializer:json" json:"vod,omitempty"`

	// PartIDs persists the ownership edges, Parts carries the resolved graph
	// for in-memory traversal.
	PartIDs StringList `gorm:"serializer:json" json:"parts"`
	Parts   []*Stream  `gorm:"-" json:"-"`

	settings *ServiceSettings `gorm:"-"`
}

// StringList is stored as a JSON array column.
type StringList []string

func (s *Stream) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = shortid.MustGenerate()
	}
	return nil
}

func newStream(kind StreamKind) *Stream {
	return &Stream{
		ID:          shortid.MustGenerate(),
		Type:        kind,
		CreatedDate: time.Now(),
		Name:        DefaultStreamName,
		Group:       DefaultStreamGroupTitle,
		TvgID:       DefaultStreamTvgID,
		TvgName:     DefaultStreamTvgName,
		TvgLogo:     DefaultStreamIconURL,
		Visible:     true,
		IARC:        DefaultIARC,
	}
}

// Kind returns the variant tag.
func (s *Stream) Kind() StreamKind {
	return s.Type
}

// Groups splits the semicolon separated group title.
func (s *Stream) Groups() []string {
	return strings.Split(s.Group, ";")
}

// AddPart links a dependent stream, e.g. a catchup under its recorder.
func (s *Stream) AddPart(part *Stream) {
	for _, id := range s.PartIDs {
		if id == part.ID {
			return
		}
	}
	s.PartIDs = append(s.PartIDs, part.ID)
	s.Parts = append(s.Parts, part)
}

// AttachSettings associates the stream with its owning server. Config and
// fixup need the association and fail fast without it.
func (s *Stream) AttachSettings(settings *ServiceSettings) {
	s.settings = settings
}

func (s *Stream) Settings() *ServiceSettings {
	return s.settings
}

func (s *Stream) mustSettings() *ServiceSettings {
	if s.settings == nil {
		panic(fmt.Sprintf("stream %s (%s) used without service settings", s.ID, s.Type))
	}
	return s.settings
}

// IsHardware reports whether the media engine runs this stream itself.
func (s *Stream) IsHardware() bool {
	return s.Hardware != nil
}

// NewProxyStream returns a live stream whose outputs are served verbatim.
func NewProxyStream() *Stream {
	return newStream(Proxy)
}

// NewVodProxyStream returns an on-demand title served verbatim.
func NewVodProxyStream() *Stream {
	s := newStream(VodProxy)
	s.TvgLogo = DefaultPreviewIconURL
	s.Vod = newVodCaps()
	return s
}

// NewRelayStream returns a pass-through live stream with exactly one input
// and one output seeded.
func NewRelayStream(input InputURL, output OutputURL) *Stream {
	s := newStream(Relay)
	s.Hardware = newHardwareCaps()
	s.Hardware.Input = InputURLList{input}
	s.Output = OutputURLList{output}
	s.Relay = newRelayCaps()
	return s
}

// NewEncodeStream returns a transcoded live stream with exactly one input and
// one output seeded.
func NewEncodeStream(input InputURL, output OutputURL) *Stream {
	s := newStream(Encode)
	s.Hardware = newHardwareCaps()
	s.Hardware.Input = InputURLList{input}
	s.Output = OutputURLList{output}
	s.Encode = newEncodeCaps()
	return s
}

// NewTimeshiftRecorderStream returns a rolling-buffer recorder. Recorders are
// created hidden and publish no output URLs themselves.
func NewTimeshiftRecorderStream(input InputURL) *Stream {
	s := newStream(TimeshiftRecorder)
	s.Visible = false
	s.Hardware = newHardwareCaps()
	s.Hardware.Input = InputURLList{input}
	s.Relay = newRelayCaps()
	s.Timeshift = &TimeshiftCaps{
		ChunkDuration: DefaultTimeshiftChunkDuration,
		ChunkLifeTime: DefaultTimeshiftChunkLifeTime,
	}
	return s
}

// NewCatchupStream returns a windowed replay of a recorder buffer. The chunk
// duration is forced short so the window aligns closely to chunk boundaries.
// Windows with stop before start are rejected.
func NewCatchupStream(input InputURL, output OutputURL, start, stop time.Time) (*Stream, error) {
	if stop.Before(start) {
		return nil, fmt.Errorf("catchup window stop %s before start %s", stop, start)
	}
	s := newStream(Catchup)
	s.Hardware = newHardwareCaps()
	s.Hardware.Input = InputURLList{input}
	s.Hardware.AutoExitTime = DefaultCatchupExitTime
	s.Output = OutputURLList{output}
	s.Relay = newRelayCaps()
	s.Timeshift = &TimeshiftCaps{
		ChunkDuration: DefaultCatchupChunkDuration,
		ChunkLifeTime: DefaultTimeshiftChunkLifeTime,
		Start:         start,
		Stop:          stop,
	}
	return s, nil
}

// NewTimeshiftPlayerStream returns a delayed live view into a recorder
// buffer rooted at dir.
func NewTimeshiftPlayerStream(input InputURL, output OutputURL, dir string, delay int) *Stream {
	s := newStream(TimeshiftPlayer)
	s.Hardware = newHardwareCaps()
	s.Hardware.Input = InputURLList{input}
	s.Output = OutputURLList{output}
	s.Relay = newRelayCaps()
	s.Timeshift = &TimeshiftCaps{Dir: dir, Delay: delay}
	return s
}

// NewTestLifeStream returns the hidden liveness probe stream. Its single
// output is the literal test marker and is never rewritten.
func NewTestLifeStream(input InputURL) *Stream {
	s := newStream(TestLife)
	s.Visible = false
	s.Hardware = newHardwareCaps()
	s.Hardware.Input = InputURLList{input}
	s.Output = OutputURLList{NewOutputURL(DefaultTestURL)}
	s.Relay = newRelayCaps()
	return s
}

// NewCodRelayStream returns a pass-through stream routed through the COD
// directory and host.
func NewCodRelayStream(input InputURL, output OutputURL) *Stream {
	s := newStream(CodRelay)
	s.Hardware = newHardwareCaps()
	s.Hardware.Input = InputURLList{input}
	s.Output = OutputURLList{output}
	s.Relay = newRelayCaps()
	return s
}

// NewCodEncodeStream returns a transcoded stream routed through the COD
// directory and host.
func NewCodEncodeStream(input InputURL, output OutputURL) *Stream {
	s := newStream(CodEncode)
	s.Hardware = newHardwareCaps()
	s.Hardware.Input = InputURLList{input}
	s.Output = OutputURLList{output}
	s.Encode = newEncodeCaps()
	return s
}

// NewVodRelayStream returns an on-demand pass-through title. Looping is
// forced off, files play once.
func NewVodRelayStream(input InputURL, output OutputURL) *Stream {
	s := newStream(VodRelay)
	s.TvgLogo = DefaultPreviewIconURL
	s.Hardware = newHardwareCaps()
	s.Hardware.Input = InputURLList{input}
	s.Hardware.Loop = false
	s.Output = OutputURLList{output}
	s.Relay = newRelayCaps()
	s.Vod = newVodCaps()
	return s
}

// NewVodEncodeStream returns an on-demand transcoded title. Looping is forced
// off, files play once.
func NewVodEncodeStream(input InputURL, output OutputURL) *Stream {
	s := newStream(VodEncode)
	s.TvgLogo = DefaultPreviewIconURL
	s.Hardware = newHardwareCaps()
	s.Hardware.Input = InputURLList{input}
	s.Hardware.Loop = false
	s.Output = OutputURLList{output}
	s.Encode = newEncodeCaps()
	s.Vod = newVodCaps()
	return s
}

// NewEventStream returns a scheduled one-off broadcast, a VOD encode variant
// shown in the live lineup.
func NewEventStream(input InputURL, output OutputURL) *Stream {
	s := NewVodEncodeStream(input, output)
	s.Type = Event
	return s
}
