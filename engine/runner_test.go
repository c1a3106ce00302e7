package engine

import (
	"strings"
	"testing"

	"github.com/StreamRack/StreamRack/models"
)

func TestRunnerCompileRelay(t *testing.T) {
	st := models.NewRelayStream(
		models.NewInputURL("rtsp://localhost:18554/sample01"),
		models.NewOutputURL("http://localhost/hls/master.m3u8"))
	r, err := NewRunner(st)
	if err != nil {
		t.Fatal(err)
	}
	cmd := r.compile().Compile().String()
	for _, want := range []string{"rtsp://localhost:18554/sample01", "-rtsp_transport tcp", "-c:v copy", "-c:a copy", "-f hls"} {
		if !strings.Contains(cmd, want) {
			t.Errorf("command %q misses %q", cmd, want)
		}
	}
}

func TestRunnerCompileEncode(t *testing.T) {
	st := models.NewEncodeStream(
		models.NewInputURL("http://origin/live.ts"),
		models.NewOutputURL("http://localhost/hls/master.m3u8"))
	st.Encode.VideoBitRate = 2500
	st.Encode.Size = models.Size{Width: 1280, Height: 720}
	r, err := NewRunner(st)
	if err != nil {
		t.Fatal(err)
	}
	cmd := r.compile().Compile().String()
	for _, want := range []string{"-c:v libx264", "-c:a aac", "-b:v 2500", "-s 1280x720"} {
		if !strings.Contains(cmd, want) {
			t.Errorf("command %q misses %q", cmd, want)
		}
	}
}

func TestRunnerRejectsProxy(t *testing.T) {
	if _, err := NewRunner(models.NewProxyStream()); err == nil {
		t.Fatal("expected error for proxy stream")
	}
}
