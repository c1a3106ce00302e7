package models

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned by store lookups for missing identifiers.
var ErrNotFound = errors.New("not found")

// GormStore is the gorm backed persistence layer. It satisfies
// SubscriberSource and StreamDeleter, so safe stream deletion can cascade
// through it.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DefaultStore wraps the shared handle opened by Init.
func DefaultStore() *GormStore {
	return &GormStore{db: DB}
}

func (s *GormStore) GetStream(id string) (*Stream, error) {
	var st Stream
	if err := s.db.First(&st, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &st, nil
}

func (s *GormStore) SaveStream(st *Stream) error {
	return s.db.Save(st).Error
}

func (s *GormStore) DeleteStream(st *Stream) error {
	return s.db.Delete(&Stream{}, "id = ?", st.ID).Error
}

// GetSettings loads one settings row with its streams and serials. An empty
// id selects the first row, which covers single server deployments.
func (s *GormStore) GetSettings(id string) (*ServiceSettings, error) {
	var settings ServiceSettings
	tx := s.db.Preload("Streams").Preload("Serials")
	var err error
	if id == "" {
		err = tx.First(&settings).Error
	} else {
		err = tx.First(&settings, "id = ?", id).Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	for _, st := range settings.Streams {
		st.AttachSettings(&settings)
	}
	resolveParts(settings.Streams)
	return &settings, nil
}

// resolveParts rebuilds the in-memory parts graph from the persisted edge
// lists.
func resolveParts(streams []*Stream) {
	byID := make(map[string]*Stream, len(streams))
	for _, st := range streams {
		byID[st.ID] = st
	}
	for _, st := range streams {
		st.Parts = st.Parts[:0]
		for _, id := range st.PartIDs {
			if part, ok := byID[id]; ok {
				st.Parts = append(st.Parts, part)
			}
		}
	}
}

func (s *GormStore) SaveSettings(settings *ServiceSettings) error {
	return s.db.Save(settings).Error
}

// DeleteSettings removes the settings row. Callers run SafeDelete first so
// no owned stream or subscriber reference survives.
func (s *GormStore) DeleteSettings(settings *ServiceSettings) error {
	return s.db.Delete(&ServiceSettings{}, "id = ?", settings.ID).Error
}

func (s *GormStore) GetSubscriber(id string) (*Subscriber, error) {
	var sub Subscriber
	err := s.db.Preload("Servers").Preload("Servers.Streams").First(&sub, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	for _, server := range sub.Servers {
		for _, st := range server.Streams {
			st.AttachSettings(server)
		}
	}
	return &sub, nil
}

func (s *GormStore) AllSubscribers() ([]*Subscriber, error) {
	var subs []*Subscriber
	if err := s.db.Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (s *GormStore) SaveSubscriber(sub *Subscriber) error {
	return s.db.Save(sub).Error
}

func (s *GormStore) GetProvider(email string) (*Provider, error) {
	var p Provider
	if err := s.db.First(&p, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
