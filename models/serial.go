package models

import (
	"time"

	"github.com/teris-io/shortid"
	"gorm.io/gorm"
)

// Serial groups VOD episodes of one show season under a shared name.
type Serial struct {
	ID          string    `gorm:"type:varchar(16);primary_key" json:"id"`
	SettingsID  string    `gorm:"type:varchar(16);index" json:"-"`
	CreatedDate time.Time `json:"created_date"`

	Name        string `gorm:"type:varchar(30)" json:"name"`
	Group       string `gorm:"type:varchar(64)" json:"group"`
	Description string `gorm:"type:varchar(4096)" json:"description"`
	Season      int    `json:"season"`
	Visible     bool   `json:"visible"`
}

func (s *Serial) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = shortid.MustGenerate()
	}
	return nil
}

func NewSerial(name string) *Serial {
	return &Serial{
		ID:          shortid.MustGenerate(),
		CreatedDate: time.Now(),
		Name:        name,
		Season:      1,
		Visible:     true,
	}
}
