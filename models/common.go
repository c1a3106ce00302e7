package models

import "fmt"

// Size is a video frame size in pixels. The zero value is "unset".
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s Size) IsValid() bool {
	return s.Width != InvalidWidth && s.Height != InvalidHeight
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Logo is a raster overlay burnt into the encoded picture.
type Logo struct {
	Path  string  `json:"path"`
	X     int     `json:"x"`
	Y     int     `json:"y"`
	Alpha float64 `json:"alpha"`
	Size  Size    `json:"size"`
}

func NewLogo() Logo {
	return Logo{X: DefaultLogoX, Y: DefaultLogoY, Alpha: DefaultLogoAlpha}
}

func (l Logo) IsValid() bool {
	return l.Path != ""
}

func (l Logo) toConfig() map[string]interface{} {
	return map[string]interface{}{
		"path":     l.Path,
		"position": fmt.Sprintf("%d,%d", l.X, l.Y),
		"alpha":    l.Alpha,
		"size":     l.Size.String(),
	}
}

// RSVGLogo is a vector overlay variant of Logo.
type RSVGLogo struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Size Size   `json:"size"`
}

func (l RSVGLogo) IsValid() bool {
	return l.Path != ""
}

func (l RSVGLogo) toConfig() map[string]interface{} {
	return map[string]interface{}{
		"path":     l.Path,
		"position": fmt.Sprintf("%d,%d", l.X, l.Y),
		"size":     l.Size.String(),
	}
}

// Rational is an aspect ratio. A zero denominator marks it unset.
type Rational struct {
	Num int `json:"num"`
	Den int `json:"den"`
}

func (r Rational) IsValid() bool {
	return r.Num != InvalidRatioNum && r.Den != InvalidRatioDen
}

func (r Rational) String() string {
	return fmt.Sprintf("%d:%d", r.Num, r.Den)
}

// HostAndPort is a public endpoint of a backing media server. A zero port is
// omitted from the textual form so plain hostnames round trip unchanged.
type HostAndPort struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

func (h HostAndPort) String() string {
	if h.Port == 0 {
		return h.Host
	}
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}
