package service

import (
	"context"
	"fmt"

	"eventease/internal/models"
)

type RegistrationDetailLister interface {
	DetailedForUser(ctx context.Context, userID string) ([]models.RegistrationDetail, error)
}

// RegistrationService lists what a user is registered for
type RegistrationService struct {
	repo RegistrationDetailLister
}

func NewRegistrationService(repo RegistrationDetailLister) *RegistrationService {
	return &RegistrationService{repo: repo}
}

func (s *RegistrationService) ListForUser(ctx context.Context, userID string) (*models.RegistrationsResponse, error) {
	details, err := s.repo.DetailedForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get registrations: %w", err)
	}

	return &models.RegistrationsResponse{Registrations: details}, nil
}
