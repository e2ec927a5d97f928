package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mehdirazajaffri/leads-management-system/internal/callbacks/repository"
	"github.com/mehdirazajaffri/leads-management-system/internal/callbacks/transport"
	"github.com/mehdirazajaffri/leads-management-system/internal/events"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads"
	"github.com/mehdirazajaffri/leads-management-system/platform/apperr"
	"github.com/mehdirazajaffri/leads-management-system/platform/datatable"
	"github.com/mehdirazajaffri/leads-management-system/platform/httpkit"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
	"github.com/mehdirazajaffri/leads-management-system/platform/sanitize"
)

const (
	msgCallbackNotFound = "Callback not found"
	msgLeadNotFound     = "Lead not found"
	msgLeadForbidden    = "You do not have access to this lead"
	msgForbidden        = "You do not have access to this callback"
	msgInvalidDate      = "invalid scheduledDate, expected YYYY-MM-DD"
)

type Repository interface {
	List(ctx context.Context, params repository.ListParams) ([]repository.Callback, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Callback, error)
	Create(ctx context.Context, params repository.CreateParams) (uuid.UUID, error)
	Update(ctx context.Context, params repository.UpdateParams) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo     Repository
	leads    leads.Service
	eventBus events.Bus
	log      *logger.Logger
	now      func() time.Time
}

func New(repo Repository, leadSvc leads.Service, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, leads: leadSvc, eventBus: eventBus, log: log, now: time.Now}
}

// ListQuery carries the list filters. AgentID is honoured for admins only.
type ListQuery struct {
	Filter  string
	AgentID *uuid.UUID
}

// List returns the caller's callbacks. Agents only see callbacks on leads
// assigned to them; admins see everyone's unless they narrow by agent.
func (s *Service) List(ctx context.Context, actor httpkit.Identity, q ListQuery, state datatable.State) (transport.CallbackListResponse, error) {
	filter := strings.ToLower(strings.TrimSpace(q.Filter))
	if filter == "" {
		filter = repository.FilterUpcoming
	}
	switch filter {
	case repository.FilterUpcoming, repository.FilterOverdue, repository.FilterCompleted, repository.FilterAll:
	default:
		return transport.CallbackListResponse{}, apperr.BadRequest("invalid filter, expected upcoming, overdue, completed or all")
	}

	params := repository.ListParams{Filter: filter, Today: s.today()}
	if actor.IsAdmin() {
		params.AgentID = q.AgentID
	} else {
		id := actor.UserID()
		params.AgentID = &id
	}

	items, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.CallbackListResponse{}, err
	}
	rows := make([]transport.CallbackResponse, 0, len(items))
	for _, cb := range items {
		rows = append(rows, ToResponse(cb))
	}
	return datatable.Apply(rows, Columns, func(r transport.CallbackResponse) string { return r.ID.String() }, state), nil
}

func (s *Service) Create(ctx context.Context, actor httpkit.Identity, req transport.CreateCallbackRequest) (transport.CallbackResponse, error) {
	date, err := parseDate(req.ScheduledDate)
	if err != nil {
		return transport.CallbackResponse{}, err
	}

	lead, err := s.leads.GetLeadByID(ctx, req.LeadID)
	if errors.Is(err, leads.ErrLeadNotFound) {
		return transport.CallbackResponse{}, apperr.NotFound(msgLeadNotFound)
	}
	if err != nil {
		return transport.CallbackResponse{}, err
	}
	if !actor.IsAdmin() {
		if lead.IsArchived {
			return transport.CallbackResponse{}, apperr.NotFound(msgLeadNotFound)
		}
		if !ownedBy(lead.AssignedToID, actor.UserID()) {
			return transport.CallbackResponse{}, apperr.Forbidden(msgLeadForbidden)
		}
	}

	id, err := s.repo.Create(ctx, repository.CreateParams{
		LeadID:        req.LeadID,
		ScheduledDate: date,
		ScheduledTime: normalizeTime(req.ScheduledTime),
		Notes:         sanitize.TextPtr(req.Notes),
	})
	if errors.Is(err, repository.ErrNotFound) {
		return transport.CallbackResponse{}, apperr.NotFound(msgLeadNotFound)
	}
	if err != nil {
		return transport.CallbackResponse{}, err
	}

	cb, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CallbackResponse{}, err
	}
	s.publishScheduled(ctx, cb)
	return ToResponse(cb), nil
}

// Update applies a partial change. Moving an open callback to another slot
// schedules a fresh reminder.
func (s *Service) Update(ctx context.Context, actor httpkit.Identity, id uuid.UUID, req transport.UpdateCallbackRequest) (transport.CallbackResponse, error) {
	current, err := s.load(ctx, actor, id)
	if err != nil {
		return transport.CallbackResponse{}, err
	}

	params := repository.UpdateParams{
		ID:        id,
		Notes:     sanitize.TextPtr(req.Notes),
		Completed: req.Completed,
	}
	if req.ScheduledDate != nil {
		date, err := parseDate(*req.ScheduledDate)
		if err != nil {
			return transport.CallbackResponse{}, err
		}
		params.ScheduledDate = &date
	}
	if req.ScheduledTime != nil {
		params.SetTime = true
		params.ScheduledTime = normalizeTime(req.ScheduledTime)
	}

	if err := s.repo.Update(ctx, params); err != nil {
		return transport.CallbackResponse{}, translate(err)
	}

	updated, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.CallbackResponse{}, translate(err)
	}
	if !updated.Completed && rescheduled(current, updated) {
		s.publishScheduled(ctx, updated)
	}
	return ToResponse(updated), nil
}

func (s *Service) Delete(ctx context.Context, actor httpkit.Identity, id uuid.UUID) (transport.DeleteCallbackResponse, error) {
	if _, err := s.load(ctx, actor, id); err != nil {
		return transport.DeleteCallbackResponse{}, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return transport.DeleteCallbackResponse{}, translate(err)
	}
	return transport.DeleteCallbackResponse{Success: true}, nil
}

// load fetches a callback and enforces that agents only touch callbacks on
// their own leads.
func (s *Service) load(ctx context.Context, actor httpkit.Identity, id uuid.UUID) (repository.Callback, error) {
	cb, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return repository.Callback{}, translate(err)
	}
	if !actor.IsAdmin() && !ownedBy(cb.AssignedToID, actor.UserID()) {
		return repository.Callback{}, apperr.Forbidden(msgForbidden)
	}
	return cb, nil
}

func (s *Service) publishScheduled(ctx context.Context, cb repository.Callback) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.Publish(ctx, events.CallbackScheduled{
		BaseEvent:     events.NewBaseEvent(),
		CallbackID:    cb.ID,
		LeadID:        cb.LeadID,
		ScheduledDate: cb.ScheduledDate,
		ScheduledTime: cb.ScheduledTime,
	})
}

func (s *Service) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func translate(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgCallbackNotFound)
	}
	return err
}

func ownedBy(assignee *uuid.UUID, userID uuid.UUID) bool {
	return assignee != nil && *assignee == userID
}

func parseDate(raw string) (time.Time, error) {
	date, err := time.Parse(transport.DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, apperr.BadRequest(msgInvalidDate)
	}
	return date, nil
}

// normalizeTime maps a blank time of day to nil.
func normalizeTime(t *string) *string {
	if t == nil {
		return nil
	}
	v := strings.TrimSpace(*t)
	if v == "" {
		return nil
	}
	return &v
}

func rescheduled(before, after repository.Callback) bool {
	if !before.ScheduledDate.Equal(after.ScheduledDate) {
		return true
	}
	if (before.ScheduledTime == nil) != (after.ScheduledTime == nil) {
		return true
	}
	return before.ScheduledTime != nil && *before.ScheduledTime != *after.ScheduledTime
}
