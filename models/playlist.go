package models

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

const m3uHeader = "#EXTM3U\n"

// playlistKinds are the variants clients can actually play. Recorders never
// appear, the probe and bare VOD proxy kinds only when explicitly visible.
var playlistKinds = map[StreamKind]bool{
	Proxy:           true,
	Relay:           true,
	Encode:          true,
	TimeshiftPlayer: true,
	Catchup:         true,
	VodRelay:        true,
	VodEncode:       true,
	CodRelay:        true,
	CodEncode:       true,
}

// inputPlaylistKinds are the variants whose upstream feed is worth
// monitoring through an ingest playlist.
var inputPlaylistKinds = map[StreamKind]bool{
	Relay:           true,
	Encode:          true,
	TimeshiftPlayer: true,
	VodRelay:        true,
	VodEncode:       true,
}

// IsInDefaultPlaylist reports whether the stream contributes entries to the
// default client playlist.
func (s *Stream) IsInDefaultPlaylist() bool {
	if playlistKinds[s.Type] {
		return true
	}
	if s.Type == VodProxy || s.Type == TestLife {
		return s.Visible
	}
	return false
}

func (s *Stream) extinf(uri string) string {
	return fmt.Sprintf("#EXTINF:-1 tvg-id=\"%s\" tvg-name=\"%s\" tvg-logo=\"%s\" group-title=\"%s\",%s\n%s\n",
		s.TvgID, s.TvgName, s.TvgLogo, s.Group, s.Name, uri)
}

// GeneratePlaylist renders the stream's entries in EXTM3U form, one entry
// per output URL. The header line is emitted only when header is true so
// fragments can be concatenated.
func (s *Stream) GeneratePlaylist(header bool) string {
	var b strings.Builder
	if header {
		b.WriteString(m3uHeader)
	}
	if s.IsInDefaultPlaylist() {
		for _, out := range s.Output {
			b.WriteString(s.extinf(out.URI))
		}
	}
	return b.String()
}

// GenerateDevicePlaylist renders the stream's entries with every http(s)
// output rewritten into a load balancer gateway URL that carries the
// subscriber, password hash, device, stream and output identity. Outputs
// with other schemes are omitted, the gateway cannot serve them.
func (s *Stream) GenerateDevicePlaylist(uid, passwd, did, lbHost string, header bool) string {
	var b strings.Builder
	if header {
		b.WriteString(m3uHeader)
	}
	if !s.IsInDefaultPlaylist() {
		return b.String()
	}
	for _, out := range s.Output {
		parsed, err := url.Parse(out.URI)
		if err != nil {
			continue
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			continue
		}
		file := path.Base(parsed.Path)
		gateway := fmt.Sprintf("http://%s/%s/%s/%s/%s/%d/%s", lbHost, uid, passwd, did, s.ID, out.ID, file)
		b.WriteString(s.extinf(gateway))
	}
	return b.String()
}

// GenerateInputPlaylist renders the upstream feed of a hardware stream, one
// entry per input URL. Used for monitoring the source rather than the
// delivered stream.
func (s *Stream) GenerateInputPlaylist(header bool) string {
	if s.Hardware == nil {
		// Proxy kinds have no separate ingest, the output is the source.
		return s.GeneratePlaylist(header)
	}
	var b strings.Builder
	if header {
		b.WriteString(m3uHeader)
	}
	if inputPlaylistKinds[s.Type] {
		for _, in := range s.Hardware.Input {
			b.WriteString(s.extinf(in.URI))
		}
	}
	return b.String()
}
