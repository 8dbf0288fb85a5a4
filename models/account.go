package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account is a customer login together with its cached loyalty state.
// MilkID is written once on creation and never updated.
type Account struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Phone        string    `json:"phone"`
	FullName     string    `json:"fullName"`
	MilkID       string    `gorm:"<-:create;uniqueIndex;not null" json:"milkId"`
	Points       int64     `gorm:"not null;default:0" json:"points"`

	PointsHistory       []AccountPointEntry  `gorm:"foreignKey:AccountID" json:"pointsHistory"`
	OrdersHistory       []AccountOrder       `gorm:"foreignKey:AccountID" json:"ordersHistory"`
	ReservationsHistory []AccountReservation `gorm:"foreignKey:AccountID" json:"reservationsHistory"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// HasPassword reports whether logging in requires a password.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != ""
}

// AccountPointEntry mirrors one ledger entry onto the account.
type AccountPointEntry struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	AccountID     uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	LedgerEntryID uint      `gorm:"uniqueIndex;not null" json:"-"`
	Text          string    `json:"text"`
	Delta         int64     `json:"delta"`
	Date          string    `json:"date"`
	CreatedAt     time.Time `json:"-"`
}

// AccountOrder is the order summary kept in the account history.
type AccountOrder struct {
	ID        uint            `gorm:"primaryKey" json:"-"`
	AccountID uuid.UUID       `gorm:"type:uuid;index;not null" json:"-"`
	OrderID   string          `gorm:"index" json:"orderId"`
	Total     decimal.Decimal `gorm:"type:decimal(10,2)" json:"total"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"createdAt"`
}

// AccountReservation is the reservation summary kept in the account history.
type AccountReservation struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	AccountID     uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	ReservationID string    `gorm:"index" json:"reservationId"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	Guests        string    `json:"guests"`
	Room          string    `json:"room"`
	CreatedAt     time.Time `json:"createdAt"`
}

// LegacyUser is the bare email list older frontends read from "users".
type LegacyUser struct {
	ID        uint      `gorm:"primaryKey"`
	Email     string    `gorm:"index"`
	CreatedAt time.Time
}

func (LegacyUser) TableName() string {
	return "users"
}
