package repository

import (
	"eventease/internal/database"
)

type Repositories struct {
	Events        *EventRepository
	Registrations *RegistrationRepository
	Catalog       *CatalogRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Events:        NewEventRepository(db),
		Registrations: NewRegistrationRepository(db),
		Catalog:       NewCatalogRepository(db),
	}
}
