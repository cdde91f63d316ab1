package service

import (
	"context"
	"fmt"

	apperrors "eventease/internal/errors"
	"eventease/internal/models"
)

type CatalogStore interface {
	Categories(ctx context.Context) ([]models.Category, error)
	EventStats(ctx context.Context, eventID string) (*models.EventStats, error)
}

type CatalogService struct {
	repo CatalogStore
}

func NewCatalogService(repo CatalogStore) *CatalogService {
	return &CatalogService{repo: repo}
}

func (s *CatalogService) Categories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}

func (s *CatalogService) EventStats(ctx context.Context, eventID string) (*models.EventStats, error) {
	stats, err := s.repo.EventStats(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get event stats: %w", err)
	}
	if stats == nil {
		return nil, apperrors.ErrEventNotFound
	}
	return stats, nil
}
