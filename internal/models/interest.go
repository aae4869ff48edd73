package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Interest marks a user as interested in a concert. At most one row exists
// per (user, concert) pair; rows are only ever created or deleted, never
// updated.
type Interest struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ConcertID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_concert_user" json:"concert_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_concert_user" json:"user_id"`
	Concert   *Concert  `gorm:"foreignKey:ConcertID" json:"-"`
	User      *User     `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (interest *Interest) BeforeCreate(tx *gorm.DB) (err error) {
	if interest.ID == uuid.Nil {
		interest.ID = uuid.New()
	}
	return
}
