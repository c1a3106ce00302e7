package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/StreamRack/StreamRack/log"
)

// Engine config keys. These are wire identifiers consumed by the media
// engine and must stay stable.
const (
	ConfigID                = "id"
	ConfigType              = "type"
	ConfigFeedbackDirectory = "feedback_directory"
	ConfigLogLevel          = "log_level"
	ConfigInput             = "input"
	ConfigOutput            = "output"
	ConfigAudioSelect       = "audio_select"
	ConfigHaveVideo         = "have_video"
	ConfigHaveAudio         = "have_audio"
	ConfigLoop              = "loop"
	ConfigAVFormat          = "avformat"
	ConfigAutoExitTime      = "auto_exit_time"
	ConfigRestartAttempts   = "restart_attempts"
	ConfigRelayVideo        = "relay_video"
	ConfigRelayAudio        = "relay_audio"
	ConfigDeinterlace       = "deinterlace"
	ConfigFrameRate         = "frame_rate"
	ConfigVolume            = "volume"
	ConfigVideoCodec        = "video_codec"
	ConfigAudioCodec        = "audio_codec"
	ConfigAudioChannels     = "audio_channels"
	ConfigSize              = "size"
	ConfigVideoBitRate      = "video_bitrate"
	ConfigAudioBitRate      = "audio_bitrate"
	ConfigLogo              = "logo"
	ConfigRSVGLogo          = "rsvg_logo"
	ConfigAspectRatio       = "aspect_ratio"
	ConfigVideoParser       = "video_parser"
	ConfigAudioParser       = "audio_parser"
	ConfigChunkDuration     = "timeshift_chunk_duration"
	ConfigChunkLifeTime     = "timeshift_chunk_life_time"
	ConfigTimeshiftDir      = "timeshift_dir"
	ConfigTimeshiftDelay    = "timeshift_delay"
	ConfigCleanupTS         = "cleanup_ts"
)

// StreamConfig is the key/value document handed to the media engine. Keys
// keep insertion order so the serialized form is reproducible.
type StreamConfig struct {
	keys   []string
	values map[string]interface{}
}

func NewStreamConfig() *StreamConfig {
	return &StreamConfig{values: map[string]interface{}{}}
}

// Set stores v under key, appending the key on first use.
func (c *StreamConfig) Set(key string, v interface{}) {
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = v
}

func (c *StreamConfig) Get(key string) (interface{}, bool) {
	v, ok := c.values[key]
	return v, ok
}

func (c *StreamConfig) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

func (c *StreamConfig) Len() int {
	return len(c.keys)
}

// Keys returns the keys in insertion order.
func (c *StreamConfig) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// MarshalJSON writes the entries in insertion order.
func (c *StreamConfig) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(c.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal config key %s: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Config builds the runtime configuration for the media engine. It is a pure
// read: no stream field is touched. The stream must already be attached to
// its service settings, hardware kinds derive directories from them.
func (s *Stream) Config() *StreamConfig {
	cfg := NewStreamConfig()
	cfg.Set(ConfigID, s.ID)
	cfg.Set(ConfigType, int(s.Type))
	cfg.Set(ConfigOutput, s.Output)

	if hw := s.Hardware; hw != nil {
		settings := s.mustSettings()
		cfg.Set(ConfigFeedbackDirectory,
			fmt.Sprintf("%s/%s/%s", settings.FeedbackDirectory, s.Type, s.ID))
		cfg.Set(ConfigLogLevel, int(hw.LogLevel))
		cfg.Set(ConfigInput, hw.Input)
		if hw.AudioSelect != InvalidAudioSelect {
			cfg.Set(ConfigAudioSelect, hw.AudioSelect)
		}
		cfg.Set(ConfigHaveVideo, hw.HaveVideo)
		cfg.Set(ConfigHaveAudio, hw.HaveAudio)
		cfg.Set(ConfigLoop, hw.Loop)
		cfg.Set(ConfigAVFormat, hw.AVFormat)
		cfg.Set(ConfigAutoExitTime, hw.AutoExitTime)
		cfg.Set(ConfigRestartAttempts, hw.RestartAttempts)
	}

	if r := s.Relay; r != nil {
		cfg.Set(ConfigVideoParser, r.VideoParser)
		cfg.Set(ConfigAudioParser, r.AudioParser)
	}

	if e := s.Encode; e != nil {
		cfg.Set(ConfigRelayVideo, e.RelayVideo)
		cfg.Set(ConfigRelayAudio, e.RelayAudio)
		cfg.Set(ConfigDeinterlace, e.Deinterlace)
		if e.FrameRate != InvalidFrameRate {
			cfg.Set(ConfigFrameRate, e.FrameRate)
		}
		cfg.Set(ConfigVolume, e.Volume)
		cfg.Set(ConfigVideoCodec, e.VideoCodec)
		cfg.Set(ConfigAudioCodec, e.AudioCodec)
		if e.AudioChannelsCount != InvalidAudioChannelsCount {
			cfg.Set(ConfigAudioChannels, e.AudioChannelsCount)
		}
		if e.Size.IsValid() {
			cfg.Set(ConfigSize, e.Size.String())
		}
		if e.VideoBitRate != InvalidVideoBitRate {
			cfg.Set(ConfigVideoBitRate, e.VideoBitRate)
		}
		if e.AudioBitRate != InvalidAudioBitRate {
			cfg.Set(ConfigAudioBitRate, e.AudioBitRate)
		}
		if e.Logo.IsValid() {
			cfg.Set(ConfigLogo, e.Logo.toConfig())
		}
		if e.RSVGLogo.IsValid() {
			cfg.Set(ConfigRSVGLogo, e.RSVGLogo.toConfig())
		}
		if e.AspectRatio.IsValid() {
			cfg.Set(ConfigAspectRatio, e.AspectRatio.String())
		}
	}

	if ts := s.Timeshift; ts != nil {
		switch s.Type {
		case TimeshiftRecorder, Catchup:
			settings := s.mustSettings()
			cfg.Set(ConfigChunkDuration, ts.ChunkDuration)
			cfg.Set(ConfigTimeshiftDir,
				fmt.Sprintf("%s/%s", settings.TimeshiftsDirectory, s.ID))
			cfg.Set(ConfigChunkLifeTime, ts.ChunkLifeTime)
		case TimeshiftPlayer:
			cfg.Set(ConfigTimeshiftDir, ts.Dir)
			cfg.Set(ConfigTimeshiftDelay, ts.Delay)
		}
	}

	if s.Vod != nil {
		cfg.Set(ConfigCleanupTS, true)
	}

	if s.Hardware != nil && s.Hardware.ExtraConfig != "" {
		mergeExtraConfig(cfg, s)
	}
	return cfg
}

// mergeExtraConfig overlays the free-form extra config on top of the
// generated entries. Malformed content is dropped, the engine must always
// receive a config even from a stream with a broken override string.
func mergeExtraConfig(cfg *StreamConfig, s *Stream) {
	var extra map[string]interface{}
	if err := json.Unmarshal([]byte(s.Hardware.ExtraConfig), &extra); err != nil {
		log.Warn("stream ", s.ID, ": ignoring malformed extra config: ", err)
		return
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		cfg.Set(k, extra[k])
	}
}
