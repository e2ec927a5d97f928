package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/mehdirazajaffri/leads-management-system/internal/activity/repository"
	"github.com/mehdirazajaffri/leads-management-system/internal/activity/transport"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads"
	"github.com/mehdirazajaffri/leads-management-system/platform/apperr"
	"github.com/mehdirazajaffri/leads-management-system/platform/httpkit"
)

type Repository interface {
	List(ctx context.Context, f repository.Filter) ([]repository.Entry, int, error)
}

type Service struct {
	repo  Repository
	leads leads.Service
}

func New(repo Repository, leadSvc leads.Service) *Service {
	return &Service{repo: repo, leads: leadSvc}
}

// Search is the admin view over the whole activity log.
func (s *Service) Search(ctx context.Context, q transport.Query) (transport.ListResponse, error) {
	page, limit := clampPage(q.Page, q.Limit)
	items, total, err := s.repo.List(ctx, repository.Filter{
		LeadID:         q.LeadID,
		AgentID:        q.AgentID,
		StartDate:      q.StartDate,
		EndDate:        q.EndDate,
		IncludePrivate: q.IncludePrivate,
		Limit:          limit,
		Offset:         (page - 1) * limit,
	})
	if err != nil {
		return transport.ListResponse{}, err
	}
	return toListResponse(items, page, limit, total), nil
}

// ForLead returns a lead's history. Admins see every entry; agents must own
// the lead and only see their own private notes.
func (s *Service) ForLead(ctx context.Context, actor httpkit.Identity, leadID uuid.UUID, page, limit int) (transport.ListResponse, error) {
	lead, err := s.leads.GetLeadByID(ctx, leadID)
	if errors.Is(err, leads.ErrLeadNotFound) {
		return transport.ListResponse{}, apperr.NotFound("Lead not found")
	}
	if err != nil {
		return transport.ListResponse{}, err
	}

	page, limit = clampPage(page, limit)
	f := repository.Filter{LeadID: &leadID, Limit: limit, Offset: (page - 1) * limit}
	if actor.IsAdmin() {
		f.IncludePrivate = true
	} else {
		if lead.AssignedToID == nil || *lead.AssignedToID != actor.UserID() {
			return transport.ListResponse{}, apperr.Forbidden("You do not have access to this lead")
		}
		viewer := actor.UserID()
		f.PrivateOwnerID = &viewer
	}

	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return transport.ListResponse{}, err
	}
	return toListResponse(items, page, limit, total), nil
}

// Export returns every public entry matching q, newest first. Paging fields
// of q are ignored.
func (s *Service) Export(ctx context.Context, q transport.Query) ([]transport.EntryResponse, error) {
	items, _, err := s.repo.List(ctx, repository.Filter{
		LeadID:    q.LeadID,
		AgentID:   q.AgentID,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
	})
	if err != nil {
		return nil, err
	}
	out := make([]transport.EntryResponse, len(items))
	for i, e := range items {
		out[i] = ToResponse(e)
	}
	return out, nil
}

func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = transport.DefaultLimit
	}
	if limit > transport.MaxLimit {
		limit = transport.MaxLimit
	}
	return page, limit
}

func toListResponse(items []repository.Entry, page, limit, total int) transport.ListResponse {
	logs := make([]transport.EntryResponse, len(items))
	for i, e := range items {
		logs[i] = ToResponse(e)
	}
	return transport.ListResponse{
		Logs: logs,
		Pagination: transport.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: (total + limit - 1) / limit,
		},
	}
}

func ToResponse(e repository.Entry) transport.EntryResponse {
	out := transport.EntryResponse{
		ID:        e.ID,
		Lead:      transport.Ref{ID: e.LeadID, Name: e.LeadName},
		Note:      e.Note,
		IsPrivate: e.IsPrivate,
		Timestamp: e.CreatedAt,
	}
	if e.AgentID != nil {
		out.Agent = &transport.AgentRef{ID: *e.AgentID, Name: deref(e.AgentName), Email: deref(e.AgentEmail)}
	}
	if e.OldStatusID != nil {
		out.OldStatus = &transport.Ref{ID: *e.OldStatusID, Name: deref(e.OldStatusName)}
	}
	if e.NewStatusID != nil {
		out.NewStatus = &transport.Ref{ID: *e.NewStatusID, Name: deref(e.NewStatusName)}
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
