package services

import (
	"context"
	"errors"
	"strings"

	"milk-backend/models"
	"milk-backend/realtime"

	"gorm.io/gorm"
)

type PromotionService struct {
	db        *gorm.DB
	publisher realtime.Publisher
}

func NewPromotionService(db *gorm.DB, publisher realtime.Publisher) *PromotionService {
	return &PromotionService{db: db, publisher: publisher}
}

// Set records a new banner revision and announces it.
func (s *PromotionService) Set(ctx context.Context, text string, active bool, location string) (*models.Promotion, error) {
	p := &models.Promotion{
		Text:     strings.TrimSpace(text),
		Active:   active,
		Location: strings.TrimSpace(location),
	}
	if p.Location == "" {
		p.Location = models.DefaultLocation
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, realtime.Event{
		Name: realtime.EventHappyUpdated,
		Data: map[string]any{"text": p.Text, "active": p.Active, "location": p.Location},
	})
	return p, nil
}

// Latest returns the newest revision, or nil when none was ever set.
func (s *PromotionService) Latest(ctx context.Context) (*models.Promotion, error) {
	var p models.Promotion
	err := s.db.WithContext(ctx).Order("id DESC").Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Current is Latest with an inactive empty banner as the fallback.
func (s *PromotionService) Current(ctx context.Context) (models.Promotion, error) {
	p, err := s.Latest(ctx)
	if err != nil {
		return models.Promotion{}, err
	}
	if p == nil {
		return models.Promotion{Location: models.DefaultLocation}, nil
	}
	return *p, nil
}
