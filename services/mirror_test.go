package services

import (
	"context"
	"testing"

	"milk-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMirrorSyncIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.accounts.Register(ctx, RegisterInput{Email: "mirror@example.com"})
	require.NoError(t, err)
	milkID := session.Account.MilkID

	_, err = f.ledger.Adjust(ctx, Adjustment{MilkID: milkID, Delta: 8})
	require.NoError(t, err)
	_, err = f.ledger.Adjust(ctx, Adjustment{MilkID: milkID, Delta: -2})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, f.mirror.Sync(ctx, milkID))
	}

	var acc models.Account
	require.NoError(t, f.db.Preload("PointsHistory").Where("milk_id = ?", milkID).Take(&acc).Error)
	assert.Equal(t, int64(6), acc.Points)
	assert.Len(t, acc.PointsHistory, 2)
}

func TestMirrorRepairsDrift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	session, err := f.accounts.Register(ctx, RegisterInput{Email: "drift@example.com"})
	require.NoError(t, err)
	milkID := session.Account.MilkID

	// Ledger writes that never reached the account.
	require.NoError(t, f.db.Model(&models.Ledger{}).Where("milk_id = ?", milkID).Update("points", 15).Error)
	require.NoError(t, f.db.Create(&models.LedgerEntry{MilkID: milkID, Text: "a", Delta: 10}).Error)
	require.NoError(t, f.db.Create(&models.LedgerEntry{MilkID: milkID, Text: "b", Delta: 5}).Error)

	synced, err := f.mirror.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, synced)

	profile, err := f.accounts.Profile(ctx, "drift@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(15), profile.Account.Points)
	require.Len(t, profile.Account.PointsHistory, 2)
	assert.Equal(t, "b", profile.Account.PointsHistory[0].Text)
	assert.Equal(t, "a", profile.Account.PointsHistory[1].Text)
}

func TestMirrorIgnoresOrphanLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.ledger.Adjust(ctx, Adjustment{MilkID: "555555", Delta: 1})
	require.NoError(t, err)
	assert.NoError(t, f.mirror.Sync(ctx, "555555"))

	var entries int64
	f.db.Model(&models.AccountPointEntry{}).Count(&entries)
	assert.Zero(t, entries)
}
