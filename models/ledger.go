package models

import (
	"time"

	"gorm.io/datatypes"
)

// Ledger is the authoritative points balance for one MilkID. It may exist
// without a linked account.
type Ledger struct {
	MilkID      string        `gorm:"primaryKey" json:"milkId"`
	Points      int64         `gorm:"not null;default:0" json:"points"`
	LinkedEmail string        `gorm:"index" json:"linkedEmail"`
	History     []LedgerEntry `gorm:"foreignKey:MilkID;references:MilkID" json:"history"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// LedgerEntry is one applied delta. Higher IDs are newer.
type LedgerEntry struct {
	ID        uint           `gorm:"primaryKey" json:"-"`
	MilkID    string         `gorm:"index;not null" json:"-"`
	Text      string         `json:"text"`
	Delta     int64          `json:"delta"`
	Date      string         `json:"date"`
	Meta      datatypes.JSON `json:"meta"`
	CreatedAt time.Time      `json:"-"`
}
