package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"milk-backend/config"
	"milk-backend/realtime"
	"milk-backend/utils"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, config.Migrate(db))
	return db
}

func newTestLogger() (*logrus.Logger, *logtest.Hook) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

// recorder captures published events.
type recorder struct {
	mu     sync.Mutex
	events []realtime.Event
}

func (r *recorder) Publish(_ context.Context, e realtime.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) Events() []realtime.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]realtime.Event(nil), r.events...)
}

func (r *recorder) Named(name string) []realtime.Event {
	var out []realtime.Event
	for _, e := range r.Events() {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	db           *gorm.DB
	log          *logrus.Logger
	hook         *logtest.Hook
	events       *recorder
	tokens       *utils.TokenIssuer
	accounts     *AccountService
	mirror       *AccountMirror
	ledger       *LedgerService
	orders       *OrderService
	reservations *ReservationService
	promotions   *PromotionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	log, hook := newTestLogger()
	events := &recorder{}
	tokens := utils.NewTokenIssuer("test-secret", 30*24*time.Hour)
	mirror := NewAccountMirror(db, log)

	return &fixture{
		db:           db,
		log:          log,
		hook:         hook,
		events:       events,
		tokens:       tokens,
		accounts:     NewAccountService(db, tokens, log),
		mirror:       mirror,
		ledger:       NewLedgerService(db, mirror, events, time.UTC, log),
		orders:       NewOrderService(db, events, log),
		reservations: NewReservationService(db, events, nil, log),
		promotions:   NewPromotionService(db, events),
	}
}
