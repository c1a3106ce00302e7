package models

import (
	"strings"
	"testing"
)

func TestGeneratePlaylistEntry(t *testing.T) {
	st := NewProxyStream()
	st.Name = "News"
	st.TvgID = "news1"
	st.TvgLogo = "logo.png"
	st.Group = "Info"
	st.Output = OutputURLList{NewOutputURL("http://x/a.m3u8")}

	want := "#EXTM3U\n" +
		"#EXTINF:-1 tvg-id=\"news1\" tvg-name=\"\" tvg-logo=\"logo.png\" group-title=\"Info\",News\n" +
		"http://x/a.m3u8\n"
	if got := st.GeneratePlaylist(true); got != want {
		t.Errorf("playlist:\n%q\nwant:\n%q", got, want)
	}
}

func TestPlaylistEligibility(t *testing.T) {
	in := NewInputURL("http://origin/live.ts")
	out := NewOutputURL("http://host/master.m3u8")

	recorder := NewTimeshiftRecorderStream(in)
	recorder.Visible = true
	if recorder.IsInDefaultPlaylist() {
		t.Error("recorder must never appear in the playlist")
	}

	probe := NewTestLifeStream(in)
	if probe.IsInDefaultPlaylist() {
		t.Error("hidden probe must not appear")
	}
	probe.Visible = true
	if !probe.IsInDefaultPlaylist() {
		t.Error("visible probe must appear")
	}

	vodProxy := NewVodProxyStream()
	if !vodProxy.IsInDefaultPlaylist() {
		t.Error("visible vod proxy must appear")
	}
	vodProxy.Visible = false
	if vodProxy.IsInDefaultPlaylist() {
		t.Error("hidden vod proxy must not appear")
	}

	for _, st := range []*Stream{
		NewProxyStream(),
		NewRelayStream(in, out),
		NewEncodeStream(in, out),
		NewCodRelayStream(in, out),
		NewVodRelayStream(in, out),
	} {
		if !st.IsInDefaultPlaylist() {
			t.Errorf("%s must appear in the playlist", st.Kind())
		}
	}
}

func TestGenerateDevicePlaylist(t *testing.T) {
	prev := SetURLSequence(NewIDSequence())
	defer SetURLSequence(prev)

	st := NewProxyStream()
	st.ID = "S1"
	st.Name = "News"
	st.Output = OutputURLList{
		{ID: 7, URI: "http://cdn.example.com/path/a.m3u8"},
		{ID: 8, URI: "udp://239.0.0.1:1234"},
	}
	got := st.GenerateDevicePlaylist("U1", "beef", "D1", "lb.example.com", true)
	if !strings.Contains(got, "http://lb.example.com/U1/beef/D1/S1/7/a.m3u8") {
		t.Errorf("gateway url missing:\n%s", got)
	}
	if strings.Contains(got, "udp://") {
		t.Error("non http outputs must be omitted from device playlists")
	}
}

func TestGenerateInputPlaylist(t *testing.T) {
	in := NewInputURL("http://origin/live.ts")
	out := NewOutputURL("http://host/master.m3u8")

	relay := NewRelayStream(in, out)
	relay.Name = "News"
	got := relay.GenerateInputPlaylist(true)
	if !strings.Contains(got, "http://origin/live.ts") {
		t.Errorf("input uri missing:\n%s", got)
	}
	if strings.Contains(got, "http://host/master.m3u8") {
		t.Error("ingest playlist must not list outputs")
	}

	// proxies have no separate ingest, the output is the source
	proxy := NewProxyStream()
	proxy.Output = OutputURLList{out}
	got = proxy.GenerateInputPlaylist(true)
	if !strings.Contains(got, "http://host/master.m3u8") {
		t.Errorf("proxy ingest must fall back to outputs:\n%s", got)
	}
	if strings.Count(got, "#EXTM3U") != 1 {
		t.Errorf("header emitted more than once:\n%s", got)
	}
}
