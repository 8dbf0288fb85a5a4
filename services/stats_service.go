package services

import (
	"context"
	"time"

	"milk-backend/models"
	"milk-backend/utils"

	"gorm.io/gorm"
)

type Stats struct {
	Orders       int64 `json:"orders"`
	Reservations int64 `json:"reservations"`
	UsersAll     int64 `json:"usersAll"`
	OrdersToday  int64 `json:"ordersToday"`
}

type StatsService struct {
	db  *gorm.DB
	loc *time.Location
	now func() time.Time
}

func NewStatsService(db *gorm.DB, loc *time.Location) *StatsService {
	return &StatsService{db: db, loc: loc, now: time.Now}
}

func (s *StatsService) Stats(ctx context.Context) (*Stats, error) {
	db := s.db.WithContext(ctx)
	var st Stats

	if err := db.Model(&models.Order{}).Count(&st.Orders).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Reservation{}).Count(&st.Reservations).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Account{}).Count(&st.UsersAll).Error; err != nil {
		return nil, err
	}

	startOfDay := utils.BeginningOfDay(s.now().In(s.loc))
	if err := db.Model(&models.Order{}).Where("created_at >= ?", startOfDay).Count(&st.OrdersToday).Error; err != nil {
		return nil, err
	}
	return &st, nil
}
