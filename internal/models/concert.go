package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	TicketStatusPending   = "pending"
	TicketStatusThinking  = "thinking"
	TicketStatusPurchased = "purchased"
	TicketStatusNotGoing  = "not_going"
)

// Concert stores its date as a plain "2006-01-02" string. The date is a
// calendar day, not an instant: partitioning into upcoming/past must never
// depend on time-of-day or timezone conversion of this value.
type Concert struct {
	gorm.Model
	ID           uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Name         string     `gorm:"not null" json:"name"`
	Venue        string     `gorm:"not null" json:"venue"`
	Date         string     `gorm:"not null;index" json:"date"`
	Description  *string    `json:"description"`
	TicketStatus string     `gorm:"not null;default:'pending'" json:"ticket_status"`
	Review       *string    `json:"review"`
	TicketURL    *string    `json:"ticket_url"`
	SpotifyURL   *string    `json:"spotify_url"`
	ImageURL     *string    `json:"image_url"`
	CreatedByID  *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedBy    *User      `gorm:"foreignKey:CreatedByID" json:"-"`
	Interests    []Interest `gorm:"foreignKey:ConcertID" json:"-"`
	Comments     []Comment  `gorm:"foreignKey:ConcertID" json:"-"`
}

func (concert *Concert) BeforeCreate(tx *gorm.DB) (err error) {
	if concert.ID == uuid.Nil {
		concert.ID = uuid.New()
	}
	if concert.TicketStatus == "" {
		concert.TicketStatus = TicketStatusPending
	}
	return
}

func ValidTicketStatus(s string) bool {
	switch s {
	case TicketStatusPending, TicketStatusThinking, TicketStatusPurchased, TicketStatusNotGoing:
		return true
	}
	return false
}
