package services

import (
	"context"

	"milk-backend/models"

	"gorm.io/gorm"
)

type ProductService struct {
	db *gorm.DB
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

// ListActive returns the products on sale, newest first.
func (s *ProductService) ListActive(ctx context.Context) ([]models.Product, error) {
	products := []models.Product{}
	err := s.db.WithContext(ctx).Where("active = ?", true).Order("created_at DESC").Find(&products).Error
	return products, err
}
