package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"milk-backend/metrics"
	"milk-backend/models"
	"milk-backend/realtime"
	"milk-backend/utils"

	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultCreditText = "Dodano punkty"
	DefaultDebitText  = "Odjęto punkty"
)

// LedgerService applies point adjustments. The ledger row is the source of
// truth; the account copy is refreshed afterwards by the mirror.
type LedgerService struct {
	db        *gorm.DB
	mirror    *AccountMirror
	publisher realtime.Publisher
	log       logrus.FieldLogger
	loc       *time.Location
	now       func() time.Time
}

func NewLedgerService(db *gorm.DB, mirror *AccountMirror, publisher realtime.Publisher, loc *time.Location, log logrus.FieldLogger) *LedgerService {
	return &LedgerService{
		db:        db,
		mirror:    mirror,
		publisher: publisher,
		log:       log.WithField("service", "ledger"),
		loc:       loc,
		now:       time.Now,
	}
}

type Adjustment struct {
	MilkID string
	Delta  int64
	Text   string
	Meta   datatypes.JSON
}

// Adjust adds a.Delta to the ledger of a.MilkID, creating the ledger when it
// does not exist yet, and returns the new balance.
func (s *LedgerService) Adjust(ctx context.Context, a Adjustment) (int64, error) {
	milkID := strings.TrimSpace(a.MilkID)
	if milkID == "" {
		return 0, invalid("Brak milkId")
	}
	if a.Delta == 0 {
		return 0, invalid("delta musi być != 0")
	}

	text := strings.TrimSpace(a.Text)
	if text == "" {
		text = DefaultCreditText
		if a.Delta < 0 {
			text = DefaultDebitText
		}
	}

	now := s.now()
	var balance int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "milk_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"points":     gorm.Expr("ledgers.points + ?", a.Delta),
				"updated_at": now,
			}),
		}).Create(&models.Ledger{MilkID: milkID, Points: a.Delta}).Error
		if err != nil {
			return err
		}

		entry := models.LedgerEntry{
			MilkID: milkID,
			Text:   text,
			Delta:  a.Delta,
			Date:   utils.FormatDisplay(now, s.loc),
			Meta:   a.Meta,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		var fresh models.Ledger
		if err := tx.Select("points").Where("milk_id = ?", milkID).Take(&fresh).Error; err != nil {
			return err
		}
		balance = fresh.Points
		return nil
	})
	if err != nil {
		return 0, err
	}

	direction := "credit"
	if a.Delta < 0 {
		direction = "debit"
	}
	metrics.PointAdjustments.WithLabelValues(direction).Inc()

	if err := s.mirror.Sync(ctx, milkID); err != nil {
		metrics.MirrorFailures.Inc()
		s.log.WithError(err).WithField("milkId", milkID).Warn("account mirror failed, reconciler will retry")
	}

	s.publisher.Publish(ctx, realtime.Event{
		Name: realtime.EventPointsUpdated,
		Data: map[string]any{"milkId": milkID, "points": balance},
	})
	return balance, nil
}

// Get returns the ledger with its history, newest first.
func (s *LedgerService) Get(ctx context.Context, milkID string) (*models.Ledger, error) {
	milkID = strings.TrimSpace(milkID)
	if milkID == "" {
		return nil, invalid("Brak milkId")
	}

	var ledger models.Ledger
	err := s.db.WithContext(ctx).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("id DESC") }).
		Where("milk_id = ?", milkID).
		Take(&ledger).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, newError(ErrNotFound, "Nie znaleziono")
	}
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}
