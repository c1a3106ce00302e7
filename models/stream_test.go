package models

import (
	"testing"
	"time"
)

func TestStreamKindString(t *testing.T) {
	cases := map[StreamKind]string{
		Proxy:             "PROXY",
		VodProxy:          "VOD_PROXY",
		Relay:             "RELAY",
		Encode:            "ENCODE",
		TimeshiftPlayer:   "TIMESHIFT_PLAYER",
		TimeshiftRecorder: "TIMESHIFT_RECORDER",
		Catchup:           "CATCHUP",
		TestLife:          "TEST_LIFE",
		VodRelay:          "VOD_RELAY",
		VodEncode:         "VOD_ENCODE",
		CodRelay:          "COD_RELAY",
		CodEncode:         "COD_ENCODE",
		Event:             "EVENT",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("kind %d: got %q, want %q", kind, got, want)
		}
		parsed, err := ParseStreamKind(want)
		if err != nil {
			t.Errorf("parse %q: %v", want, err)
		}
		if parsed != kind {
			t.Errorf("parse %q: got %v, want %v", want, parsed, kind)
		}
	}
	if _, err := ParseStreamKind("BOGUS"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestFactoryCapabilities(t *testing.T) {
	in := NewInputURL("http://origin/live.ts")
	out := NewOutputURL("http://host/master.m3u8")

	proxy := NewProxyStream()
	if proxy.IsHardware() || proxy.Relay != nil || proxy.Encode != nil || proxy.Vod != nil {
		t.Error("proxy stream must carry no capability structs")
	}

	relay := NewRelayStream(in, out)
	if !relay.IsHardware() || relay.Relay == nil || relay.Encode != nil {
		t.Error("relay stream must carry hardware and relay caps only")
	}
	if len(relay.Hardware.Input) != 1 || len(relay.Output) != 1 {
		t.Error("relay stream must seed one input and one output")
	}

	encode := NewEncodeStream(in, out)
	if encode.Encode == nil || encode.Relay != nil {
		t.Error("encode stream must carry encode caps, not relay caps")
	}
	if encode.Encode.Volume != DefaultVolume || encode.Encode.VideoCodec != DefaultVideoCodec {
		t.Error("encode caps not seeded with defaults")
	}

	recorder := NewTimeshiftRecorderStream(in)
	if recorder.Visible {
		t.Error("recorder must start hidden")
	}
	if len(recorder.Output) != 0 {
		t.Error("recorder must publish no outputs")
	}
	if recorder.Timeshift.ChunkDuration != DefaultTimeshiftChunkDuration {
		t.Errorf("recorder chunk duration %d", recorder.Timeshift.ChunkDuration)
	}

	probe := NewTestLifeStream(in)
	if probe.Visible {
		t.Error("probe must start hidden")
	}
	if len(probe.Output) != 1 || probe.Output[0].URI != DefaultTestURL {
		t.Error("probe must publish the test marker output")
	}

	vod := NewVodRelayStream(in, out)
	if vod.Hardware.Loop {
		t.Error("vod relay must not loop")
	}
	if vod.Vod == nil || vod.TvgLogo != DefaultPreviewIconURL {
		t.Error("vod relay must carry vod caps and the preview icon")
	}

	event := NewEventStream(in, out)
	if event.Type != Event {
		t.Errorf("event stream type %v", event.Type)
	}
	if event.Encode == nil || event.Vod == nil {
		t.Error("event stream must keep vod encode capabilities")
	}
}

func TestCatchupWindow(t *testing.T) {
	in := NewInputURL("http://origin/live.ts")
	out := NewOutputURL("http://host/master.m3u8")
	start := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

	c, err := NewCatchupStream(in, out, start, start.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if c.Timeshift.ChunkDuration != DefaultCatchupChunkDuration {
		t.Errorf("catchup chunk duration %d", c.Timeshift.ChunkDuration)
	}
	if c.Hardware.AutoExitTime != DefaultCatchupExitTime {
		t.Errorf("catchup auto exit %d", c.Hardware.AutoExitTime)
	}

	if _, err := NewCatchupStream(in, out, start, start.Add(-time.Minute)); err == nil {
		t.Fatal("expected error for stop before start")
	}
	// zero length windows are allowed
	if _, err := NewCatchupStream(in, out, start, start); err != nil {
		t.Fatalf("zero length window: %v", err)
	}
}

func TestGroups(t *testing.T) {
	st := NewProxyStream()
	st.Group = "News;Sports;Local"
	groups := st.Groups()
	if len(groups) != 3 || groups[1] != "Sports" {
		t.Errorf("groups %v", groups)
	}
}

func TestAddPartDeduplicates(t *testing.T) {
	recorder := NewTimeshiftRecorderStream(NewInputURL("http://origin/live.ts"))
	c, _ := NewCatchupStream(NewInputURL("http://origin/live.ts"),
		NewOutputURL("http://host/master.m3u8"), time.Now(), time.Now().Add(time.Hour))
	recorder.AddPart(c)
	recorder.AddPart(c)
	if len(recorder.PartIDs) != 1 || len(recorder.Parts) != 1 {
		t.Errorf("parts %v", recorder.PartIDs)
	}
}
