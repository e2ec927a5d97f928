// Package leads provides lead management functionality.
// This file defines the public API of the leads bounded context.
// Only types and interfaces defined here should be imported by other domains.
package leads

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/mehdirazajaffri/leads-management-system/internal/leads/repository"
)

// ErrLeadNotFound is returned by Service lookups.
var ErrLeadNotFound = errors.New("lead not found")

// Lead represents the minimal lead information that can be shared with other domains.
type Lead struct {
	ID           uuid.UUID
	Name         string
	Phone        string
	AssignedToID *uuid.UUID
	IsArchived   bool
}

// Service defines the public interface for lead operations.
// Other domains should depend on this interface, not on concrete implementations.
type Service interface {
	// GetLeadByID returns minimal lead information for a given ID.
	GetLeadByID(ctx context.Context, id uuid.UUID) (Lead, error)
}

type publicService struct {
	repo repository.LeadReader
}

func (s publicService) GetLeadByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	d, err := s.repo.GetDetail(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return Lead{}, ErrLeadNotFound
	}
	if err != nil {
		return Lead{}, err
	}
	return Lead{
		ID:           d.ID,
		Name:         d.Name,
		Phone:        d.Phone,
		AssignedToID: d.AssignedToID,
		IsArchived:   d.IsArchived,
	}, nil
}
