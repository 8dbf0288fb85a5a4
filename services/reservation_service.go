package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"milk-backend/models"
	"milk-backend/realtime"
	"milk-backend/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	reservationListLimit = 200
	notifyTimeout        = 15 * time.Second
)

type ReservationService struct {
	db        *gorm.DB
	publisher realtime.Publisher
	notifier  Notifier
	log       logrus.FieldLogger

	pending sync.WaitGroup
}

func NewReservationService(db *gorm.DB, publisher realtime.Publisher, notifier Notifier, log logrus.FieldLogger) *ReservationService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &ReservationService{
		db:        db,
		publisher: publisher,
		notifier:  notifier,
		log:       log.WithField("service", "reservations"),
	}
}

// Create stores the reservation, appends it to the customer's account
// history when the email matches, announces it and sends the confirmation.
func (s *ReservationService) Create(ctx context.Context, r *models.Reservation) (*models.Reservation, error) {
	r.Customer.Email = utils.NormalizeEmail(r.Customer.Email)
	if r.Source == "" {
		r.Source = models.DefaultSource
	}

	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return nil, err
	}

	if r.Customer.Email != "" {
		if err := s.appendToAccount(ctx, r); err != nil {
			s.log.WithError(err).WithField("reservationId", r.ID).Warn("reservation history append failed")
		}
	}

	s.publisher.Publish(ctx, realtime.Event{
		Name: realtime.EventNewReservation,
		Data: map[string]any{
			"id":    r.ID.String(),
			"date":  r.Date,
			"time":  r.Time,
			"name":  r.Name,
			"phone": r.Phone,
		},
	})

	confirmed := *r
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := s.notifier.ReservationConfirmed(nctx, confirmed); err != nil {
			s.log.WithError(err).WithField("reservationId", confirmed.ID).Warn("reservation confirmation failed")
		}
	}()
	return r, nil
}

func (s *ReservationService) appendToAccount(ctx context.Context, r *models.Reservation) error {
	var acc models.Account
	err := s.db.WithContext(ctx).Select("id").Where("email = ?", r.Customer.Email).Take(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(&models.AccountReservation{
		AccountID:     acc.ID,
		ReservationID: r.ID.String(),
		Date:          r.Date,
		Time:          r.Time,
		Guests:        r.Guests,
		Room:          r.Room,
		CreatedAt:     r.CreatedAt,
	}).Error
}

// Wait blocks until every confirmation started by Create has finished.
func (s *ReservationService) Wait() {
	s.pending.Wait()
}

// List returns the newest reservations.
func (s *ReservationService) List(ctx context.Context) ([]models.Reservation, error) {
	list := []models.Reservation{}
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(reservationListLimit).Find(&list).Error
	return list, err
}

// Delete removes a reservation. Unknown or malformed ids are not an error.
func (s *ReservationService) Delete(ctx context.Context, id string) error {
	rid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil
	}
	return s.db.WithContext(ctx).Where("id = ?", rid).Delete(&models.Reservation{}).Error
}
