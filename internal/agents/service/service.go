package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/mehdirazajaffri/leads-management-system/internal/agents/repository"
	"github.com/mehdirazajaffri/leads-management-system/internal/agents/transport"
	"github.com/mehdirazajaffri/leads-management-system/internal/auth/password"
	"github.com/mehdirazajaffri/leads-management-system/internal/events"
	"github.com/mehdirazajaffri/leads-management-system/platform/apperr"
	"github.com/mehdirazajaffri/leads-management-system/platform/datatable"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
	"github.com/mehdirazajaffri/leads-management-system/platform/sanitize"
)

const (
	msgAgentNotFound = "Agent not found"
	msgEmailTaken    = "Email already exists"
)

// Repository is what the agents service needs from storage.
type Repository interface {
	List(ctx context.Context) ([]repository.Agent, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Agent, error)
	EmailInUse(ctx context.Context, email string, exclude *uuid.UUID) (bool, error)
	Create(ctx context.Context, params repository.CreateParams) (repository.Agent, error)
	Update(ctx context.Context, params repository.UpdateParams) (repository.Agent, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type Service struct {
	repo     Repository
	eventBus events.Bus
	log      *logger.Logger
}

func New(repo Repository, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, eventBus: eventBus, log: log}
}

// List returns the agent table.
func (s *Service) List(ctx context.Context, state datatable.State) (transport.AgentListResponse, error) {
	agents, err := s.repo.List(ctx)
	if err != nil {
		return transport.AgentListResponse{}, err
	}
	rows := make([]transport.AgentResponse, 0, len(agents))
	for _, a := range agents {
		rows = append(rows, toResponse(a))
	}
	return datatable.Apply(rows, Columns, func(a transport.AgentResponse) string { return a.ID.String() }, state), nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.AgentResponse, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.AgentResponse{}, translate(err)
	}
	return toResponse(a), nil
}

// Create adds an account with the AGENT role.
func (s *Service) Create(ctx context.Context, req transport.CreateAgentRequest) (transport.AgentResponse, error) {
	email := normalizeEmail(req.Email)
	taken, err := s.repo.EmailInUse(ctx, email, nil)
	if err != nil {
		return transport.AgentResponse{}, err
	}
	if taken {
		return transport.AgentResponse{}, apperr.Conflict(msgEmailTaken)
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return transport.AgentResponse{}, err
	}

	a, err := s.repo.Create(ctx, repository.CreateParams{
		Email:        email,
		Name:         sanitize.Field(req.Name),
		PasswordHash: hash,
	})
	if err != nil {
		return transport.AgentResponse{}, translate(err)
	}

	s.log.Info("agent created", "agentId", a.ID, "email", a.Email)
	return toResponse(a), nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateAgentRequest) (transport.AgentResponse, error) {
	params := repository.UpdateParams{ID: id}

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		taken, err := s.repo.EmailInUse(ctx, email, &id)
		if err != nil {
			return transport.AgentResponse{}, err
		}
		if taken {
			return transport.AgentResponse{}, apperr.Conflict(msgEmailTaken)
		}
		params.Email = &email
	}
	if req.Name != nil {
		name := sanitize.Field(*req.Name)
		if name == "" {
			return transport.AgentResponse{}, apperr.Validation("Name is required")
		}
		params.Name = &name
	}
	if req.Password != nil {
		hash, err := password.Hash(*req.Password)
		if err != nil {
			return transport.AgentResponse{}, err
		}
		params.PasswordHash = &hash
	}

	a, err := s.repo.Update(ctx, params)
	if err != nil {
		return transport.AgentResponse{}, translate(err)
	}

	s.log.Info("agent updated", "agentId", a.ID)
	return toResponse(a), nil
}

// Delete removes the agent. Its leads become unassigned.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) (transport.DeleteAgentResponse, error) {
	unassigned, err := s.repo.Delete(ctx, id)
	if err != nil {
		return transport.DeleteAgentResponse{}, translate(err)
	}

	s.log.Info("agent deleted", "agentId", id, "unassignedLeads", unassigned)
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.AgentDeleted{
			BaseEvent:       events.NewBaseEvent(),
			AgentID:         id,
			UnassignedLeads: unassigned,
		})
	}
	return transport.DeleteAgentResponse{Success: true, UnassignedLeads: unassigned}, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(msgAgentNotFound)
	case errors.Is(err, repository.ErrEmailTaken):
		return apperr.Conflict(msgEmailTaken)
	default:
		return err
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toResponse(a repository.Agent) transport.AgentResponse {
	return transport.AgentResponse{
		ID:          a.ID,
		Email:       a.Email,
		Name:        a.Name,
		Role:        a.Role,
		ActiveLeads: a.ActiveLeads,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// Columns is the agent table.
var Columns = []datatable.Column[transport.AgentResponse]{
	{
		ID:          "name",
		Header:      "Name",
		Render:      func(a transport.AgentResponse) any { return a.Name },
		SortValue:   func(a transport.AgentResponse) datatable.SortKey { return datatable.String(a.Name) },
		SearchValue: func(a transport.AgentResponse) string { return a.Name },
	},
	{
		ID:          "email",
		Header:      "Email",
		Render:      func(a transport.AgentResponse) any { return a.Email },
		SortValue:   func(a transport.AgentResponse) datatable.SortKey { return datatable.String(a.Email) },
		SearchValue: func(a transport.AgentResponse) string { return a.Email },
	},
	{
		ID:        "activeLeads",
		Header:    "Active Leads",
		Render:    func(a transport.AgentResponse) any { return a.ActiveLeads },
		SortValue: func(a transport.AgentResponse) datatable.SortKey { return datatable.Number(float64(a.ActiveLeads)) },
	},
	{
		ID:        "createdAt",
		Header:    "Created",
		Render:    func(a transport.AgentResponse) any { return a.CreatedAt },
		SortValue: func(a transport.AgentResponse) datatable.SortKey { return datatable.Time(a.CreatedAt) },
	},
}
