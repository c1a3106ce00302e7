package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teris-io/shortid"
	"gorm.io/gorm"
)

// Role is the access level a provider holds on a service.
type Role int

const (
	RoleRead Role = iota
	RoleWrite
	RoleSupport
	RoleAdmin
)

// ProviderPair grants one provider a role on a service.
type ProviderPair struct {
	ProviderID string `json:"provider_id"`
	Role       Role   `json:"role"`
}

// ProviderPairList is stored as a JSON document in a single column.
type ProviderPairList []ProviderPair

const defaultServiceRoot = "~/streamrack"

const (
	DefaultServiceName     = "Service"
	DefaultServicePort     = 6317
	DefaultServiceHTTPPort = 8000
	DefaultServiceVodsPort = 7000
	DefaultServiceCodsPort = 6001
)

// ServiceSettings describes one backing media server: its public hosts, the
// storage directories the engine writes into, and the streams and serials it
// owns.
type ServiceSettings struct {
	ID          string    `gorm:"type:varchar(16);primary_key" json:"id"`
	Name        string    `gorm:"type:varchar(30);uniqueIndex" json:"name"`
	CreatedDate time.Time `json:"created_date"`

	Host     HostAndPort `gorm:"serializer:json" json:"host"`
	HTTPHost HostAndPort `gorm:"serializer:json" json:"http_host"`
	VodsHost HostAndPort `gorm:"serializer:json" json:"vods_host"`
	CodsHost HostAndPort `gorm:"serializer:json" json:"cods_host"`

	FeedbackDirectory    string `gorm:"type:varchar(255)" json:"feedback_directory"`
	TimeshiftsDirectory  string `gorm:"type:varchar(255)" json:"timeshifts_directory"`
	HlsDirectory         string `gorm:"type:varchar(255)" json:"hls_directory"`
	PlaylistsDirectory   string `gorm:"type:varchar(255)" json:"playlists_directory"`
	DvbDirectory         string `gorm:"type:varchar(255)" json:"dvb_directory"`
	CaptureCardDirectory string `gorm:"type:varchar(255)" json:"capture_card_directory"`
	VodsInDirectory      string `gorm:"type:varchar(255)" json:"vods_in_directory"`
	VodsDirectory        string `gorm:"type:varchar(255)" json:"vods_directory"`
	CodsDirectory        string `gorm:"type:varchar(255)" json:"cods_directory"`

	Streams   []*Stream        `gorm:"foreignKey:SettingsID" json:"-"`
	Serials   []*Serial        `gorm:"foreignKey:SettingsID" json:"-"`
	Providers ProviderPairList `gorm:"serializer:json" json:"providers"`
}

func (s *ServiceSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = shortid.MustGenerate()
	}
	return nil
}

// NewServiceSettings returns settings with the stock directory layout under
// the service root and localhost endpoints.
func NewServiceSettings(name string) *ServiceSettings {
	return &ServiceSettings{
		ID:          shortid.MustGenerate(),
		Name:        name,
		CreatedDate: time.Now(),
		Host:        HostAndPort{Host: "localhost", Port: DefaultServicePort},
		HTTPHost:    HostAndPort{Host: "localhost", Port: DefaultServiceHTTPPort},
		VodsHost:    HostAndPort{Host: "localhost", Port: DefaultServiceVodsPort},
		CodsHost:    HostAndPort{Host: "localhost", Port: DefaultServiceCodsPort},

		FeedbackDirectory:    defaultServiceRoot + "/feedback",
		TimeshiftsDirectory:  defaultServiceRoot + "/timeshifts",
		HlsDirectory:         defaultServiceRoot + "/hls",
		PlaylistsDirectory:   defaultServiceRoot + "/playlists",
		DvbDirectory:         defaultServiceRoot + "/dvb",
		CaptureCardDirectory: defaultServiceRoot + "/capture_card",
		VodsInDirectory:      defaultServiceRoot + "/vods_in",
		VodsDirectory:        defaultServiceRoot + "/vods",
		CodsDirectory:        defaultServiceRoot + "/cods",
	}
}

func (s *ServiceSettings) HTTPHostURL() string {
	return "http://" + s.HTTPHost.String()
}

func (s *ServiceSettings) VodsHostURL() string {
	return "http://" + s.VodsHost.String()
}

func (s *ServiceSettings) CodsHostURL() string {
	return "http://" + s.CodsHost.String()
}

// AddStream takes ownership of the stream and attaches the settings so
// config generation and output fixup can derive directories and hosts.
func (s *ServiceSettings) AddStream(st *Stream) {
	st.SettingsID = s.ID
	st.AttachSettings(s)
	s.Streams = append(s.Streams, st)
}

func (s *ServiceSettings) RemoveStream(st *Stream) {
	for i, cur := range s.Streams {
		if cur.ID == st.ID {
			s.Streams = append(s.Streams[:i], s.Streams[i+1:]...)
			return
		}
	}
}

func (s *ServiceSettings) RemoveAllStreams() {
	s.Streams = nil
}

func (s *ServiceSettings) FindStream(id string) *Stream {
	for _, st := range s.Streams {
		if st.ID == id {
			return st
		}
	}
	return nil
}

func (s *ServiceSettings) AddSerial(serial *Serial) {
	serial.SettingsID = s.ID
	s.Serials = append(s.Serials, serial)
}

func (s *ServiceSettings) AddProvider(pair ProviderPair) {
	s.Providers = append(s.Providers, pair)
}

func (s *ServiceSettings) RemoveProvider(providerID string) {
	out := s.Providers[:0]
	for _, p := range s.Providers {
		if p.ProviderID != providerID {
			out = append(out, p)
		}
	}
	s.Providers = out
}

// GeneratePlaylist renders the default client playlist for every stream the
// server owns.
func (s *ServiceSettings) GeneratePlaylist() string {
	var b strings.Builder
	b.WriteString(m3uHeader)
	for _, st := range s.Streams {
		b.WriteString(st.GeneratePlaylist(false))
	}
	return b.String()
}

// SubscriberSource enumerates subscriber accounts so stream deletion can
// drop dangling entitlement references.
type SubscriberSource interface {
	AllSubscribers() ([]*Subscriber, error)
	SaveSubscriber(sub *Subscriber) error
}

// StreamDeleter removes persisted stream data.
type StreamDeleter interface {
	DeleteStream(st *Stream) error
}

// SafeDeleteStream removes every official entitlement reference to the
// stream from every subscriber, recurses into its dependent parts, then
// deletes the stream itself. Subscriber updates are best effort: one failed
// account does not stop the cascade, the first error is reported after the
// whole walk. A visited set guards against cycles in the parts graph.
func SafeDeleteStream(st *Stream, subs SubscriberSource, del StreamDeleter) error {
	return safeDeleteStream(st, subs, del, map[string]bool{})
}

func safeDeleteStream(st *Stream, subs SubscriberSource, del StreamDeleter, visited map[string]bool) error {
	if st == nil || visited[st.ID] {
		return nil
	}
	visited[st.ID] = true

	var errs []error
	all, err := subs.AllSubscribers()
	if err != nil {
		errs = append(errs, fmt.Errorf("list subscribers: %w", err))
	}
	for _, sub := range all {
		if !sub.DropOfficialReferences(st.ID) {
			continue
		}
		if err := subs.SaveSubscriber(sub); err != nil {
			errs = append(errs, fmt.Errorf("update subscriber %s: %w", sub.ID, err))
		}
	}
	for _, part := range st.Parts {
		if err := safeDeleteStream(part, subs, del, visited); err != nil {
			errs = append(errs, err)
		}
	}
	if err := del.DeleteStream(st); err != nil {
		errs = append(errs, fmt.Errorf("delete stream %s: %w", st.ID, err))
	}
	return errors.Join(errs...)
}

// SafeDelete deletes every owned stream with the full cascade before the
// settings row itself may be removed.
func (s *ServiceSettings) SafeDelete(subs SubscriberSource, del StreamDeleter) error {
	var errs []error
	for _, st := range s.Streams {
		if err := SafeDeleteStream(st, subs, del); err != nil {
			errs = append(errs, err)
		}
	}
	s.Streams = nil
	return errors.Join(errs...)
}
