package services

import (
	"context"
	"errors"
	"strings"

	"milk-backend/models"
	"milk-backend/realtime"
	"milk-backend/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const myOrdersLimit = 100

type OrderService struct {
	db        *gorm.DB
	publisher realtime.Publisher
	log       logrus.FieldLogger
}

func NewOrderService(db *gorm.DB, publisher realtime.Publisher, log logrus.FieldLogger) *OrderService {
	return &OrderService{db: db, publisher: publisher, log: log.WithField("service", "orders")}
}

// Create stores the order, appends a summary to the customer's account when
// one matches the email, and announces the order.
func (s *OrderService) Create(ctx context.Context, o *models.Order) (*models.Order, error) {
	o.Customer.Email = utils.NormalizeEmail(o.Customer.Email)
	o.LoyaltyCode = strings.TrimSpace(o.LoyaltyCode)
	if o.Source == "" {
		o.Source = models.DefaultSource
	}
	if o.Status == "" {
		o.Status = models.DefaultOrderStatus
	}
	if o.Total.IsZero() && len(o.Items) > 0 {
		o.Total = o.ItemsTotal()
	}

	if err := s.db.WithContext(ctx).Create(o).Error; err != nil {
		return nil, err
	}

	if o.Customer.Email != "" {
		if err := s.appendToAccount(ctx, o); err != nil {
			s.log.WithError(err).WithField("orderId", o.ID).Warn("order history append failed")
		}
	}

	s.publisher.Publish(ctx, realtime.Event{
		Name: realtime.EventNewOrder,
		Data: map[string]any{
			"id":             o.ID.String(),
			"total":          o.Total,
			"pickupTime":     o.PickupTime,
			"pickupLocation": o.PickupLocation,
		},
	})
	return o, nil
}

func (s *OrderService) appendToAccount(ctx context.Context, o *models.Order) error {
	var acc models.Account
	err := s.db.WithContext(ctx).Select("id").Where("email = ?", o.Customer.Email).Take(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(&models.AccountOrder{
		AccountID: acc.ID,
		OrderID:   o.ID.String(),
		Total:     o.Total,
		Status:    o.Status,
		CreatedAt: o.CreatedAt,
	}).Error
}

// ListMine returns the newest orders placed with email. A blank email
// yields an empty list.
func (s *OrderService) ListMine(ctx context.Context, email string) ([]models.Order, error) {
	orders := []models.Order{}
	email = utils.NormalizeEmail(email)
	if email == "" {
		return orders, nil
	}
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_email = ?", email).
		Order("created_at DESC").
		Limit(myOrdersLimit).
		Find(&orders).Error
	return orders, err
}
