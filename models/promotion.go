package models

import "time"

const DefaultLocation = "all"

// Promotion is one happy-hour banner revision. The newest row is current.
type Promotion struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `json:"text"`
	Active    bool      `json:"active"`
	Location  string    `json:"location"` // all, slupsk, rowy
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
