package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/mehdirazajaffri/leads-management-system/internal/statuses/repository"
	"github.com/mehdirazajaffri/leads-management-system/internal/statuses/transport"
	"github.com/mehdirazajaffri/leads-management-system/platform/apperr"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
	"github.com/mehdirazajaffri/leads-management-system/platform/sanitize"
)

// Service provides business logic for lead statuses.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new statuses service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// List retrieves all statuses ordered by name.
func (s *Service) List(ctx context.Context) ([]transport.StatusResponse, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]transport.StatusResponse, 0, len(items))
	for _, st := range items {
		out = append(out, toResponse(st))
	}
	return out, nil
}

// Create creates a new status.
func (s *Service) Create(ctx context.Context, req transport.CreateStatusRequest) (transport.StatusResponse, error) {
	name := sanitize.Field(req.Name)
	if name == "" {
		return transport.StatusResponse{}, apperr.Validation("Status name is required")
	}

	st, err := s.repo.Create(ctx, repository.CreateParams{Name: name, IsFinal: req.IsFinal})
	if err != nil {
		return transport.StatusResponse{}, err
	}

	s.log.Info("status created", "id", st.ID, "name", st.Name, "isFinal", st.IsFinal)
	return toResponse(st), nil
}

// Update updates an existing status.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateStatusRequest) (transport.StatusResponse, error) {
	params := repository.UpdateParams{ID: id, IsFinal: req.IsFinal}
	if req.Name != nil {
		name := sanitize.Field(*req.Name)
		if name == "" {
			return transport.StatusResponse{}, apperr.Validation("Status name is required")
		}
		params.Name = &name
	}

	st, err := s.repo.Update(ctx, params)
	if err != nil {
		return transport.StatusResponse{}, err
	}

	s.log.Info("status updated", "id", st.ID, "name", st.Name)
	return toResponse(st), nil
}

// Delete removes a status no lead is currently in.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (transport.DeleteStatusResponse, error) {
	st, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.DeleteStatusResponse{}, err
	}
	if st.LeadCount > 0 {
		return transport.DeleteStatusResponse{}, apperr.Validation("Cannot delete status that is in use").
			WithDetails(map[string]int{"leadCount": st.LeadCount})
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return transport.DeleteStatusResponse{}, err
	}

	s.log.Info("status deleted", "id", id, "name", st.Name)
	return transport.DeleteStatusResponse{Success: true}, nil
}

func toResponse(st repository.Status) transport.StatusResponse {
	return transport.StatusResponse{
		ID:        st.ID,
		Name:      st.Name,
		IsFinal:   st.IsFinal,
		LeadCount: st.LeadCount,
		CreatedAt: st.CreatedAt,
		UpdatedAt: st.UpdatedAt,
	}
}
