package models

import (
	"fmt"
	"net/url"
	"path"
)

// FixupOutputs rewrites every http(s) output of the stream against the
// owning server's public host for its directory class: COD kinds route
// through the COD host, VOD kinds through the VOD host, the remaining
// hardware kinds through the generic HLS host. The rewrite keeps only the
// basename of the authored path, so applying it twice reproduces the same
// hosted URL.
//
// Only engine-run streams are rewritten. Proxy kinds publish authored
// external URLs no pipeline backs, recorders publish no http outputs, and
// the liveness probe plays the literal test marker.
func (s *Stream) FixupOutputs() {
	if s.Hardware == nil || s.Type == TimeshiftRecorder || s.Type == TestLife {
		return
	}
	settings := s.mustSettings()

	var dir, host string
	switch s.Type {
	case VodRelay, VodEncode, Event:
		dir = settings.VodsDirectory
		host = settings.VodsHostURL()
	case CodRelay, CodEncode:
		dir = settings.CodsDirectory
		host = settings.CodsHostURL()
	default:
		dir = settings.HlsDirectory
		host = settings.HTTPHostURL()
	}

	for i := range s.Output {
		out := &s.Output[i]
		if out.URI == DefaultTestURL {
			continue
		}
		parsed, err := url.Parse(out.URI)
		if err != nil {
			continue
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			continue
		}
		root := fmt.Sprintf("%s/%s/%s/%d", dir, s.Type, s.ID, out.ID)
		link := root + "/" + path.Base(parsed.Path)
		out.URI = host + link
		out.HTTPRoot = root
	}
}
