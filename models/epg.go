package models

import (
	"github.com/teris-io/shortid"
	"gorm.io/gorm"
)

// Epg is a programme guide source the EPG importer polls.
type Epg struct {
	ID        string `gorm:"type:varchar(16);primary_key" json:"id"`
	URI       string `gorm:"type:varchar(2048)" json:"uri"`
	Extension string `gorm:"type:varchar(5)" json:"extension"`
}

func (e *Epg) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = shortid.MustGenerate()
	}
	return nil
}
