package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Reservation struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	Date        string    `gorm:"index" json:"date"` // YYYY-MM-DD
	Time        string    `json:"time"`              // HH:mm
	Guests      string    `json:"guests"`
	Room        string    `json:"room"`
	Notes       string    `json:"notes"`
	Source      string    `json:"source"`
	Customer    Customer  `gorm:"embedded;embeddedPrefix:user_" json:"user"`
	LoyaltyCode string    `json:"loyaltyCode"`
	CreatedAt   time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (r *Reservation) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Customer is the email-only customer block embedded in reservations.
type Customer struct {
	Email string `json:"email"`
}
