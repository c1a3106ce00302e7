package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

type ProviderStatus int

const (
	ProviderNotActive ProviderStatus = iota
	ProviderActive
	ProviderBanned
)

type ProviderType int

const (
	ProviderGuest ProviderType = iota
	ProviderUser
)

// Provider is an operator account that manages backing servers, as opposed
// to a Subscriber who only consumes them.
type Provider struct {
	Email       string    `gorm:"type:varchar(64);primary_key" json:"email"`
	Password    string    `gorm:"type:varchar(64)" json:"-"`
	CreatedDate time.Time `json:"created_date"`

	Status   ProviderStatus `json:"status"`
	Type     ProviderType   `json:"type"`
	Country  string         `gorm:"type:varchar(3)" json:"country"`
	Language string         `gorm:"type:varchar(8)" json:"language"`

	Servers []*ServiceSettings `gorm:"many2many:provider_servers" json:"-"`
}

// MakeProvider returns an inactive operator account with the password
// already hashed.
func MakeProvider(email, password, country, language string) *Provider {
	return &Provider{
		Email:       email,
		Password:    GenerateProviderPasswordHash(password),
		CreatedDate: time.Now(),
		Status:      ProviderNotActive,
		Type:        ProviderUser,
		Country:     country,
		Language:    language,
	}
}

// GenerateProviderPasswordHash returns the stored password form for
// operator accounts.
func GenerateProviderPasswordHash(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func CheckProviderPasswordHash(hash, password string) bool {
	return hash == GenerateProviderPasswordHash(password)
}

func (p *Provider) AddServer(server *ServiceSettings) {
	for _, cur := range p.Servers {
		if cur.ID == server.ID {
			return
		}
	}
	p.Servers = append(p.Servers, server)
}

func (p *Provider) RemoveServer(server *ServiceSettings) {
	for i, cur := range p.Servers {
		if cur.ID == server.ID {
			p.Servers = append(p.Servers[:i], p.Servers[i+1:]...)
			return
		}
	}
}
