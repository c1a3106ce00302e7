package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func testSettings() *ServiceSettings {
	s := NewServiceSettings("test")
	s.FeedbackDirectory = "/srv/feedback"
	s.TimeshiftsDirectory = "/srv/timeshifts"
	return s
}

func TestProxyConfigMinimal(t *testing.T) {
	st := NewProxyStream()
	st.ID = "P1"
	cfg := st.Config()
	want := []string{ConfigID, ConfigType, ConfigOutput}
	got := cfg.Keys()
	if len(got) != len(want) {
		t.Fatalf("keys %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keys %v, want %v", got, want)
		}
	}
}

func TestRelayConfig(t *testing.T) {
	st := NewRelayStream(NewInputURL("http://origin/live.ts"), NewOutputURL("http://host/master.m3u8"))
	st.ID = "R1"
	st.AttachSettings(testSettings())
	cfg := st.Config()

	if v, _ := cfg.Get(ConfigFeedbackDirectory); v != "/srv/feedback/RELAY/R1" {
		t.Errorf("feedback directory %v", v)
	}
	if v, _ := cfg.Get(ConfigVideoParser); v != DefaultVideoParser {
		t.Errorf("video parser %v", v)
	}
	if cfg.Has(ConfigAudioSelect) {
		t.Error("unset audio select must be omitted")
	}
	if cfg.Has(ConfigVideoCodec) {
		t.Error("relay config must not carry encode keys")
	}
}

func TestEncodeConfigSentinels(t *testing.T) {
	st := NewEncodeStream(NewInputURL("http://origin/live.ts"), NewOutputURL("http://host/master.m3u8"))
	st.ID = "E1"
	st.AttachSettings(testSettings())

	cfg := st.Config()
	for _, key := range []string{ConfigFrameRate, ConfigAudioChannels, ConfigVideoBitRate,
		ConfigAudioBitRate, ConfigSize, ConfigLogo, ConfigAspectRatio} {
		if cfg.Has(key) {
			t.Errorf("unset %s must be omitted", key)
		}
	}
	if v, _ := cfg.Get(ConfigVolume); v != DefaultVolume {
		t.Errorf("volume %v", v)
	}

	st.Encode.FrameRate = 25
	st.Encode.AudioChannelsCount = 2
	st.Encode.VideoBitRate = 2500
	st.Encode.Size = Size{Width: 1280, Height: 720}
	st.Encode.Logo = Logo{Path: "/srv/logo.png", X: 10, Y: 20, Alpha: 0.5}
	st.Encode.AspectRatio = Rational{Num: 16, Den: 9}

	cfg = st.Config()
	if v, _ := cfg.Get(ConfigFrameRate); v != 25 {
		t.Errorf("frame rate %v", v)
	}
	if v, _ := cfg.Get(ConfigSize); v != "1280x720" {
		t.Errorf("size %v", v)
	}
	if v, _ := cfg.Get(ConfigAspectRatio); v != "16:9" {
		t.Errorf("aspect ratio %v", v)
	}
	logo, _ := cfg.Get(ConfigLogo)
	if m, ok := logo.(map[string]interface{}); !ok || m["position"] != "10,20" {
		t.Errorf("logo %v", logo)
	}
}

func TestRecorderConfigDirectories(t *testing.T) {
	st := NewTimeshiftRecorderStream(NewInputURL("http://origin/live.ts"))
	st.ID = "T1"
	st.AttachSettings(testSettings())
	cfg := st.Config()

	if v, _ := cfg.Get(ConfigTimeshiftDir); v != "/srv/timeshifts/T1" {
		t.Errorf("timeshift dir %v", v)
	}
	if v, _ := cfg.Get(ConfigChunkDuration); v != DefaultTimeshiftChunkDuration {
		t.Errorf("chunk duration %v", v)
	}
	if cfg.Has(ConfigTimeshiftDelay) {
		t.Error("recorder config must not carry the player delay")
	}
}

func TestPlayerConfig(t *testing.T) {
	st := NewTimeshiftPlayerStream(NewInputURL("http://origin/live.ts"),
		NewOutputURL("http://host/master.m3u8"), "/srv/timeshifts/T1", 300)
	st.ID = "TP1"
	st.AttachSettings(testSettings())
	cfg := st.Config()

	if v, _ := cfg.Get(ConfigTimeshiftDir); v != "/srv/timeshifts/T1" {
		t.Errorf("timeshift dir %v", v)
	}
	if v, _ := cfg.Get(ConfigTimeshiftDelay); v != 300 {
		t.Errorf("delay %v", v)
	}
	if cfg.Has(ConfigChunkDuration) {
		t.Error("player config must not carry chunk settings")
	}
}

func TestVodConfigCleanup(t *testing.T) {
	st := NewVodEncodeStream(NewInputURL("file:///srv/vods_in/movie.mp4"),
		NewOutputURL("http://host/master.m3u8"))
	st.AttachSettings(testSettings())
	cfg := st.Config()
	if v, _ := cfg.Get(ConfigCleanupTS); v != true {
		t.Error("vod config must request ts cleanup")
	}
	if v, _ := cfg.Get(ConfigLoop); v != false {
		t.Error("vod config must not loop")
	}
}

func TestExtraConfigOverlay(t *testing.T) {
	st := NewRelayStream(NewInputURL("http://origin/live.ts"), NewOutputURL("http://host/master.m3u8"))
	st.AttachSettings(testSettings())
	st.Hardware.ExtraConfig = `{"restart_attempts": 3, "custom_flag": "on"}`
	cfg := st.Config()

	if v, _ := cfg.Get(ConfigRestartAttempts); v != float64(3) {
		t.Errorf("overridden restart attempts %v", v)
	}
	if v, _ := cfg.Get("custom_flag"); v != "on" {
		t.Errorf("custom flag %v", v)
	}
}

func TestExtraConfigMalformedIgnored(t *testing.T) {
	st := NewRelayStream(NewInputURL("http://origin/live.ts"), NewOutputURL("http://host/master.m3u8"))
	st.AttachSettings(testSettings())
	st.Hardware.ExtraConfig = `{not json`
	cfg := st.Config()
	if v, _ := cfg.Get(ConfigRestartAttempts); v != DefaultRestartAttempts {
		t.Errorf("restart attempts %v after malformed overlay", v)
	}
}

func TestConfigMarshalKeepsOrder(t *testing.T) {
	st := NewRelayStream(NewInputURL("http://origin/live.ts"), NewOutputURL("http://host/master.m3u8"))
	st.ID = "R1"
	st.AttachSettings(testSettings())
	data, err := json.Marshal(st.Config())
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	idPos := strings.Index(s, `"id"`)
	typePos := strings.Index(s, `"type"`)
	inputPos := strings.Index(s, `"input"`)
	if !(idPos >= 0 && idPos < typePos && typePos < inputPos) {
		t.Errorf("key order broken: %s", s)
	}
	var round map[string]interface{}
	if err := json.Unmarshal(data, &round); err != nil {
		t.Fatalf("config is not valid json: %v", err)
	}
}

func TestConfigDoesNotMutateStream(t *testing.T) {
	st := NewEncodeStream(NewInputURL("http://origin/live.ts"), NewOutputURL("http://host/master.m3u8"))
	st.AttachSettings(testSettings())
	before, _ := json.Marshal(st)
	st.Config()
	st.Config()
	after, _ := json.Marshal(st)
	if string(before) != string(after) {
		t.Error("config generation mutated the stream")
	}
}
