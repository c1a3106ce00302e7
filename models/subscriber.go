package models

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/teris-io/shortid"
	"gorm.io/gorm"

	"github.com/StreamRack/StreamRack/log"
)

type SubscriberStatus int

const (
	SubscriberNotActive SubscriberStatus = iota
	SubscriberActive
	SubscriberDeleted
)

type DeviceStatus int

const (
	DeviceNotActive DeviceStatus = iota
	DeviceActive
	DeviceBanned
)

// Device is one registered player of a subscriber.
type Device struct {
	ID          string       `json:"id"`
	CreatedDate time.Time    `json:"created_date"`
	Status      DeviceStatus `json:"status"`
	Name        string       `json:"name"`
}

func NewDevice(name string) Device {
	return Device{
		ID:          uuid.NewString(),
		CreatedDate: time.Now(),
		Status:      DeviceNotActive,
		Name:        name,
	}
}

// DeviceList is stored as a JSON document in a single column.
type DeviceList []Device

// UserStream is one entitlement entry: a reference to a stream plus the
// subscriber's per-stream state. Official entries (private=false) only
// reference server curated streams, own entries (private=true) own their
// underlying stream outright.
type UserStream struct {
	StreamID         string    `json:"sid"`
	Favorite         bool      `json:"favorite"`
	Private          bool      `json:"private"`
	Recent           time.Time `json:"recent"`
	InterruptionTime int       `json:"interruption_time"`
}

// UserStreamList is one of the three entitlement sets of a subscriber,
// stored as a JSON document in a single column.
type UserStreamList []UserStream

func (l UserStreamList) findOfficial(streamID string) int {
	for i, us := range l {
		if !us.Private && us.StreamID == streamID {
			return i
		}
	}
	return -1
}

func (l UserStreamList) findOwn(streamID string) int {
	for i, us := range l {
		if us.Private && us.StreamID == streamID {
			return i
		}
	}
	return -1
}

// addOfficial appends a curated reference unless one for the stream already
// exists. Duplicate adds are no-ops.
func (l *UserStreamList) addOfficial(streamID string) {
	if l.findOfficial(streamID) >= 0 {
		return
	}
	*l = append(*l, UserStream{StreamID: streamID, Recent: time.Unix(0, 0).UTC()})
}

// removeOfficial drops every curated reference to the stream. Own entries
// for the same id stay.
func (l *UserStreamList) removeOfficial(streamID string) {
	out := (*l)[:0]
	for _, us := range *l {
		if !us.Private && us.StreamID == streamID {
			continue
		}
		out = append(out, us)
	}
	*l = out
}

// addOwn appends a private entry unless one for the same underlying stream
// already exists. The private flag is forced on.
func (l *UserStreamList) addOwn(us UserStream) {
	if l.findOwn(us.StreamID) >= 0 {
		return
	}
	us.Private = true
	*l = append(*l, us)
}

// removeOwn drops the private entry for the stream and returns whether one
// was present. The caller deletes the underlying stream data, own entries
// hold the only reference to it.
func (l *UserStreamList) removeOwn(streamID string) bool {
	i := l.findOwn(streamID)
	if i < 0 {
		return false
	}
	*l = append((*l)[:i], (*l)[i+1:]...)
	return true
}

// selectAll rebuilds the official part of the set. With on=false every
// curated reference is dropped. With on=true the set becomes exactly the
// candidate streams, keeping favorite/recent/interruption state of entries
// that survive and discarding references to streams no longer offered. Own
// entries are never touched.
func (l *UserStreamList) selectAll(candidates []*Stream, on bool) {
	own := (*l)[:0]
	previous := map[string]UserStream{}
	for _, us := range *l {
		if us.Private {
			own = append(own, us)
		} else {
			previous[us.StreamID] = us
		}
	}
	*l = own
	if !on {
		return
	}
	for _, st := range candidates {
		if us, ok := previous[st.ID]; ok {
			*l = append(*l, us)
			continue
		}
		*l = append(*l, UserStream{StreamID: st.ID, Recent: time.Unix(0, 0).UTC()})
	}
}

// IsLiveCandidate reports whether the stream belongs in a subscriber's live
// lineup.
func IsLiveCandidate(st *Stream) bool {
	if st == nil || !st.Visible {
		return false
	}
	switch st.Type {
	case Proxy, Relay, Encode, TimeshiftPlayer, CodRelay, CodEncode, Event:
		return true
	}
	return false
}

// IsVodCandidate reports whether the stream belongs in a subscriber's VOD
// catalog.
func IsVodCandidate(st *Stream) bool {
	if st == nil || !st.Visible {
		return false
	}
	switch st.Type {
	case VodProxy, VodRelay, VodEncode:
		return true
	}
	return false
}

// IsCatchupCandidate reports whether the stream belongs in a subscriber's
// catchup list.
func IsCatchupCandidate(st *Stream) bool {
	return st != nil && st.Visible && st.Type == Catchup
}

// Subscriber is a client account with its registered devices and three
// independent entitlement sets for live streams, VOD titles and catchups.
type Subscriber struct {
	ID          string    `gorm:"type:varchar(16);primary_key" json:"id"`
	Email       string    `gorm:"type:varchar(64);uniqueIndex" json:"email"`
	FirstName   string    `gorm:"type:varchar(64)" json:"first_name"`
	LastName    string    `gorm:"type:varchar(64)" json:"last_name"`
	Password    string    `gorm:"type:varchar(32)" json:"-"`
	CreatedDate time.Time `json:"created_date"`
	ExpDate     time.Time `json:"exp_date"`

	Status   SubscriberStatus `json:"status"`
	Country  string           `gorm:"type:varchar(3)" json:"country"`
	Language string           `gorm:"type:varchar(8)" json:"language"`

	Servers []*ServiceSettings `gorm:"many2many:subscriber_servers" json:"-"`

	Devices         DeviceList `gorm:"serializer:json" json:"devices"`
	MaxDevicesCount int        `json:"max_devices_count"`

	Streams  UserStreamList `gorm:"serializer:json" json:"streams"`
	Vods     UserStreamList `gorm:"serializer:json" json:"vods"`
	Catchups UserStreamList `gorm:"serializer:json" json:"catchups"`
}

// MaxExpDate is the expiry used for accounts without a fixed term.
var MaxExpDate = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)

func (s *Subscriber) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = shortid.MustGenerate()
	}
	return nil
}

// MakeSubscriber returns an inactive account with the password already
// hashed.
func MakeSubscriber(email, firstName, lastName, password, country, language string) *Subscriber {
	return &Subscriber{
		ID:              shortid.MustGenerate(),
		Email:           email,
		FirstName:       firstName,
		LastName:        lastName,
		Password:        MakeMD5Hash(password),
		CreatedDate:     time.Now(),
		ExpDate:         MaxExpDate,
		Status:          SubscriberNotActive,
		Country:         country,
		Language:        language,
		MaxDevicesCount: DefaultDevicesCount,
	}
}

// MakeMD5Hash returns the hex digest used as the stored password form and
// inside device playlist gateway URLs.
func MakeMD5Hash(password string) string {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

func CheckPasswordHash(hash, password string) bool {
	return hash == MakeMD5Hash(password)
}

func (s *Subscriber) AddServer(server *ServiceSettings) {
	for _, cur := range s.Servers {
		if cur.ID == server.ID {
			return
		}
	}
	s.Servers = append(s.Servers, server)
}

// AddDevice registers a device unless the account quota is already filled.
// Overflow is a silent no-op kept for client compatibility, only a warning
// is logged.
func (s *Subscriber) AddDevice(device Device) {
	if len(s.Devices) >= s.MaxDevicesCount {
		log.Warn("subscriber ", s.ID, ": device quota ", s.MaxDevicesCount, " reached, ignoring ", device.Name)
		return
	}
	s.Devices = append(s.Devices, device)
}

func (s *Subscriber) RemoveDevice(id string) {
	for i, d := range s.Devices {
		if d.ID == id {
			s.Devices = append(s.Devices[:i], s.Devices[i+1:]...)
			return
		}
	}
}

func (s *Subscriber) FindDevice(id string) *Device {
	for i := range s.Devices {
		if s.Devices[i].ID == id {
			return &s.Devices[i]
		}
	}
	return nil
}

// AddOfficialStream references a server curated live stream.
func (s *Subscriber) AddOfficialStream(streamID string) { s.Streams.addOfficial(streamID) }

// AddOfficialVod references a server curated VOD title.
func (s *Subscriber) AddOfficialVod(streamID string) { s.Vods.addOfficial(streamID) }

// AddOfficialCatchup references a server curated catchup.
func (s *Subscriber) AddOfficialCatchup(streamID string) { s.Catchups.addOfficial(streamID) }

func (s *Subscriber) RemoveOfficialStream(streamID string)  { s.Streams.removeOfficial(streamID) }
func (s *Subscriber) RemoveOfficialVod(streamID string)     { s.Vods.removeOfficial(streamID) }
func (s *Subscriber) RemoveOfficialCatchup(streamID string) { s.Catchups.removeOfficial(streamID) }

// AddOwnStream records a private stream owned by the subscriber.
func (s *Subscriber) AddOwnStream(us UserStream) { s.Streams.addOwn(us) }

// AddOwnVod records a private VOD owned by the subscriber.
func (s *Subscriber) AddOwnVod(us UserStream) { s.Vods.addOwn(us) }

// AddOwnCatchup records a private catchup owned by the subscriber.
func (s *Subscriber) AddOwnCatchup(us UserStream) { s.Catchups.addOwn(us) }

// DropOfficialReferences removes curated references to the stream from all
// three sets and reports whether anything changed. Own entries stay, their
// lifecycle belongs to the subscriber alone.
func (s *Subscriber) DropOfficialReferences(streamID string) bool {
	before := len(s.Streams) + len(s.Vods) + len(s.Catchups)
	s.Streams.removeOfficial(streamID)
	s.Vods.removeOfficial(streamID)
	s.Catchups.removeOfficial(streamID)
	return len(s.Streams)+len(s.Vods)+len(s.Catchups) != before
}

func (s *Subscriber) removeOwn(set *UserStreamList, streamID string, del StreamDeleter) error {
	if !set.removeOwn(streamID) {
		return nil
	}
	return del.DeleteStream(&Stream{ID: streamID})
}

// RemoveOwnStream drops the private entry and deletes the underlying stream
// data it owns. Removing an id without an own entry is a no-op.
func (s *Subscriber) RemoveOwnStream(streamID string, del StreamDeleter) error {
	return s.removeOwn(&s.Streams, streamID, del)
}

// RemoveOwnVod drops the private entry and deletes the underlying VOD data.
func (s *Subscriber) RemoveOwnVod(streamID string, del StreamDeleter) error {
	return s.removeOwn(&s.Vods, streamID, del)
}

// RemoveOwnCatchup drops the private entry and deletes the underlying
// catchup data.
func (s *Subscriber) RemoveOwnCatchup(streamID string, del StreamDeleter) error {
	return s.removeOwn(&s.Catchups, streamID, del)
}

// OfficialStreams returns the curated part of the live set.
func (s *Subscriber) OfficialStreams() UserStreamList { return filterPrivate(s.Streams, false) }

// OwnStreams returns the private part of the live set.
func (s *Subscriber) OwnStreams() UserStreamList { return filterPrivate(s.Streams, true) }

func filterPrivate(l UserStreamList, private bool) UserStreamList {
	var out UserStreamList
	for _, us := range l {
		if us.Private == private {
			out = append(out, us)
		}
	}
	return out
}

// AvailableOfficialStreams collects every live candidate across the
// subscriber's servers, deduplicated by stream id.
func (s *Subscriber) AvailableOfficialStreams() []*Stream {
	return s.collectCandidates(IsLiveCandidate)
}

// AvailableOfficialVods collects every VOD candidate across the
// subscriber's servers.
func (s *Subscriber) AvailableOfficialVods() []*Stream {
	return s.collectCandidates(IsVodCandidate)
}

// AvailableOfficialCatchups collects every catchup candidate across the
// subscriber's servers.
func (s *Subscriber) AvailableOfficialCatchups() []*Stream {
	return s.collectCandidates(IsCatchupCandidate)
}

func (s *Subscriber) collectCandidates(match func(*Stream) bool) []*Stream {
	var out []*Stream
	seen := map[string]bool{}
	for _, server := range s.Servers {
		for _, st := range server.Streams {
			if !match(st) || seen[st.ID] {
				continue
			}
			seen[st.ID] = true
			out = append(out, st)
		}
	}
	return out
}

// SelectAllStreams subscribes to (or drops) every live stream the servers
// offer. Per-entry state survives reselection.
func (s *Subscriber) SelectAllStreams(on bool) {
	s.Streams.selectAll(s.AvailableOfficialStreams(), on)
}

// SelectAllVods subscribes to (or drops) every VOD title the servers offer.
func (s *Subscriber) SelectAllVods(on bool) {
	s.Vods.selectAll(s.AvailableOfficialVods(), on)
}

// SelectAllCatchups subscribes to (or drops) every catchup the servers
// offer.
func (s *Subscriber) SelectAllCatchups(on bool) {
	s.Catchups.selectAll(s.AvailableOfficialCatchups(), on)
}

// GeneratePlaylist renders the playlist a device receives: own streams play
// directly, official ones are routed through the load balancer gateway.
func (s *Subscriber) GeneratePlaylist(did, lbHost string) string {
	var b strings.Builder
	b.WriteString(m3uHeader)
	for _, set := range []UserStreamList{s.Streams, s.Vods, s.Catchups} {
		for _, us := range set {
			st := s.findStream(us.StreamID)
			if st == nil {
				continue
			}
			if us.Private {
				b.WriteString(st.GeneratePlaylist(false))
			} else {
				b.WriteString(st.GenerateDevicePlaylist(s.ID, s.Password, did, lbHost, false))
			}
		}
	}
	return b.String()
}

func (s *Subscriber) findStream(id string) *Stream {
	for _, server := range s.Servers {
		if st := server.FindStream(id); st != nil {
			return st
		}
	}
	return nil
}

// DeleteFake cascades every own entitlement (deleting the private streams
// they own), keeps official references for history, and marks the account
// deleted instead of removing the row.
func (s *Subscriber) DeleteFake(del StreamDeleter) error {
	var errs []error
	for _, set := range []*UserStreamList{&s.Streams, &s.Vods, &s.Catchups} {
		for _, us := range filterPrivate(*set, true) {
			if err := s.removeOwn(set, us.StreamID, del); err != nil {
				errs = append(errs, err)
			}
		}
	}
	s.Status = SubscriberDeleted
	return errors.Join(errs...)
}
