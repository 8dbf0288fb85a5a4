package services

import (
	"context"
	"errors"

	"milk-backend/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountMirror keeps the points copy on an account in line with its ledger.
// Sync is idempotent: the balance is read from the ledger row inside the
// UPDATE and entries are keyed by ledger entry id, so repeated or concurrent
// runs converge on the ledger's state and order.
type AccountMirror struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

func NewAccountMirror(db *gorm.DB, log logrus.FieldLogger) *AccountMirror {
	return &AccountMirror{db: db, log: log.WithField("service", "mirror")}
}

// Sync refreshes the account linked to milkID. Ledgers without an account
// are left alone.
func (m *AccountMirror) Sync(ctx context.Context, milkID string) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var acc models.Account
		err := tx.Select("id").Where("milk_id = ?", milkID).Take(&acc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		ledgerPoints := tx.Model(&models.Ledger{}).Select("points").Where("milk_id = ?", milkID)
		if err := tx.Model(&models.Account{}).Where("id = ?", acc.ID).
			Update("points", gorm.Expr("COALESCE((?), 0)", ledgerPoints)).Error; err != nil {
			return err
		}

		mirrored := tx.Model(&models.AccountPointEntry{}).Select("ledger_entry_id").Where("account_id = ?", acc.ID)
		var missing []models.LedgerEntry
		if err := tx.Where("milk_id = ? AND id NOT IN (?)", milkID, mirrored).
			Order("id ASC").
			Find(&missing).Error; err != nil {
			return err
		}
		if len(missing) == 0 {
			return nil
		}

		entries := make([]models.AccountPointEntry, 0, len(missing))
		for _, e := range missing {
			entries = append(entries, models.AccountPointEntry{
				AccountID:     acc.ID,
				LedgerEntryID: e.ID,
				Text:          e.Text,
				Delta:         e.Delta,
				Date:          e.Date,
			})
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "ledger_entry_id"}},
			DoNothing: true,
		}).Create(&entries).Error
	})
}

// ReconcileAll syncs every account. Failures are collected and the remaining
// accounts are still processed.
func (m *AccountMirror) ReconcileAll(ctx context.Context) (int, error) {
	var milkIDs []string
	if err := m.db.WithContext(ctx).Model(&models.Account{}).Pluck("milk_id", &milkIDs).Error; err != nil {
		return 0, err
	}

	var errs []error
	synced := 0
	for _, id := range milkIDs {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if err := m.Sync(ctx, id); err != nil {
			m.log.WithError(err).WithField("milkId", id).Warn("reconcile failed")
			errs = append(errs, err)
			continue
		}
		synced++
	}
	return synced, errors.Join(errs...)
}
