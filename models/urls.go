package models

import "sync/atomic"

// IDSequence hands out ids for input/output URL records. Implementations must
// be safe for concurrent use.
type IDSequence interface {
	Next() int
}

type atomicSequence struct {
	next int64
}

func (s *atomicSequence) Next() int {
	return int(atomic.AddInt64(&s.next, 1) - 1)
}

// NewIDSequence returns a process wide counter starting at zero.
func NewIDSequence() IDSequence {
	return &atomicSequence{}
}

// urlIDs allocates ids for every URL record created through the New*URL
// constructors. Swap it with SetURLSequence for deterministic tests.
var urlIDs = NewIDSequence()

// SetURLSequence replaces the allocator used by NewInputURL and NewOutputURL
// and returns the previous one.
func SetURLSequence(seq IDSequence) IDSequence {
	prev := urlIDs
	urlIDs = seq
	return prev
}

// HTTPProxy describes an optional proxy used when pulling an input URL.
type HTTPProxy struct {
	URL      string `json:"url"`
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
}

func (p *HTTPProxy) IsValid() bool {
	return p != nil && p.URL != ""
}

// InputURL is one upstream source of a hardware stream. The id is unique
// within the owning input list.
type InputURL struct {
	ID         int        `json:"id"`
	URI        string     `json:"uri"`
	UserAgent  UserAgent  `json:"user_agent"`
	StreamLink bool       `json:"stream_link"`
	Proxy      *HTTPProxy `json:"proxy,omitempty"`
}

// OutputURL is one published endpoint of a stream. HTTPRoot is filled by the
// output fixup step and names the storage directory backing the link.
type OutputURL struct {
	ID       int     `json:"id"`
	URI      string  `json:"uri"`
	HTTPRoot string  `json:"http_root"`
	HLSType  HlsType `json:"hls_type"`
}

func NewInputURL(uri string) InputURL {
	return InputURL{ID: urlIDs.Next(), URI: uri, UserAgent: UserAgentGStreamer}
}

func NewOutputURL(uri string) OutputURL {
	return OutputURL{ID: urlIDs.Next(), URI: uri, HTTPRoot: "/", HLSType: HlsPull}
}

// InputURLList and OutputURLList are stored as JSON documents in a single
// column.
type (
	InputURLList  []InputURL
	OutputURLList []OutputURL
)
