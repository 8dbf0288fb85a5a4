package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DefaultSource      = "app"
	DefaultOrderStatus = "Przyjęte"
)

func init() {
	// Prices travel as JSON numbers, as the frontends expect.
	decimal.MarshalJSONWithoutQuotes = true
}

type Order struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Source         string          `json:"source"`
	PickupTime     string          `json:"pickupTime"`
	PickupLocation string          `json:"pickupLocation"`
	Notes          string          `json:"notes"`
	Items          []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	Total          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total"`
	Status         string          `json:"status"`
	Customer       Contact         `gorm:"embedded;embeddedPrefix:user_" json:"user"`
	LoyaltyCode    string          `gorm:"index" json:"loyaltyCode"`
	CreatedAt      time.Time       `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// ItemsTotal sums quantity times unit price over all line items.
func (o *Order) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	return total
}

type OrderItem struct {
	ID      uint            `gorm:"primaryKey" json:"-"`
	OrderID uuid.UUID       `gorm:"type:uuid;index;not null" json:"-"`
	Title   string          `json:"title"`
	Qty     int             `json:"qty"`
	Price   decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
}

// Contact is the customer block embedded in orders.
type Contact struct {
	Email string `gorm:"index" json:"email"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}
