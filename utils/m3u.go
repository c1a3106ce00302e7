package utils

import (
	"bufio"
	"io"
	"regexp"
	"strings"
)

// M3UEntry is one channel of an imported playlist.
type M3UEntry struct {
	Title   string
	URI     string
	TvgID   string
	TvgName string
	TvgLogo string
	Group   string
}

var (
	extinfRe  = regexp.MustCompile(`#EXTINF:(-?\d+(?:\.\d+)?)(.*),(.*)`)
	tvgAttrRe = regexp.MustCompile(`([\w-]+)="([^"]*)"`)
)

// ParseM3U reads an extended M3U playlist and returns its entries. Attribute
// lines without a following URI are dropped, unknown directives are skipped.
func ParseM3U(r io.Reader) ([]M3UEntry, error) {
	var entries []M3UEntry
	var cur *M3UEntry
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line == "#EXTM3U" {
			continue
		}
		if m := extinfRe.FindStringSubmatch(line); m != nil {
			cur = &M3UEntry{Title: strings.TrimSpace(m[3])}
			for _, attr := range tvgAttrRe.FindAllStringSubmatch(m[2], -1) {
				switch attr[1] {
				case "tvg-id":
					cur.TvgID = attr[2]
				case "tvg-name":
					cur.TvgName = attr[2]
				case "tvg-logo":
					cur.TvgLogo = attr[2]
				case "group-title":
					cur.Group = attr[2]
				}
			}
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		if cur == nil {
			continue
		}
		cur.URI = line
		entries = append(entries, *cur)
		cur = nil
	}
	return entries, scanner.Err()
}
