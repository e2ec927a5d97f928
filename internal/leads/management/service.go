// Package management handles lead CRUD operations.
// This is a vertically sliced feature package containing service logic
// for creating, reading, listing, bulk-updating and annotating leads.
package management

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mehdirazajaffri/leads-management-system/internal/leads/lifecycle"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads/repository"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads/transport"
	"github.com/mehdirazajaffri/leads-management-system/platform/apperr"
	"github.com/mehdirazajaffri/leads-management-system/platform/config"
	"github.com/mehdirazajaffri/leads-management-system/platform/datatable"
	"github.com/mehdirazajaffri/leads-management-system/platform/db"
	"github.com/mehdirazajaffri/leads-management-system/platform/phone"
	"github.com/mehdirazajaffri/leads-management-system/platform/sanitize"
)

const (
	msgLeadNotFound  = "lead not found"
	msgInvalidStatus = "Invalid status ID"
	msgInvalidAgent  = "Invalid agent ID"
	msgDuplicateLead = "A lead with this email or phone already exists"
)

// Repository defines the data access interface needed by the management service.
// This is a consumer-driven interface - only what management needs.
type Repository interface {
	repository.LeadReader
	repository.LeadWriter
	repository.ReferenceReader
}

// Transitioner applies status changes.
type Transitioner interface {
	Transition(ctx context.Context, in lifecycle.TransitionInput) (lifecycle.TransitionResult, error)
}

// Service handles lead management operations.
type Service struct {
	repo        Repository
	transitions Transitioner
	phoneCfg    config.PhoneConfig
}

// New creates a new lead management service.
func New(repo Repository, transitions Transitioner, phoneCfg config.PhoneConfig) *Service {
	return &Service{repo: repo, transitions: transitions, phoneCfg: phoneCfg}
}

// Create stores a new lead after checking its status, its agent and that no
// lead shares its phone digits or email.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	if _, err := s.repo.GetStatus(ctx, req.StatusID); err != nil {
		if errors.Is(err, repository.ErrStatusNotFound) {
			return transport.LeadResponse{}, apperr.Validation(msgInvalidStatus)
		}
		return transport.LeadResponse{}, err
	}
	if req.AssignedToID != nil {
		if err := s.requireAgent(ctx, *req.AssignedToID); err != nil {
			return transport.LeadResponse{}, err
		}
	}

	params := repository.CreateLeadParams{
		Name:            sanitize.Field(req.Name),
		Phone:           phone.NormalizeE164(sanitize.Field(req.Phone), s.phoneCfg.GetPhoneDefaultRegion()),
		Email:           strings.ToLower(sanitize.Field(req.Email)),
		SourcePlatform:  sanitize.Field(req.SourcePlatform),
		CampaignName:    sanitize.Field(req.CampaignName),
		CurrentStatusID: req.StatusID,
		AssignedToID:    req.AssignedToID,
	}
	if params.Name == "" {
		return transport.LeadResponse{}, apperr.Validation("Name is required")
	}

	dup, err := s.repo.FindDuplicate(ctx, phone.Digits(params.Phone), params.Email)
	switch {
	case err == nil:
		return transport.LeadResponse{}, apperr.Conflict(msgDuplicateLead).WithDetails(map[string]any{
			"existingLeadId": dup.LeadID,
			"reason":         dup.Reason,
		})
	case !errors.Is(err, repository.ErrNotFound):
		return transport.LeadResponse{}, err
	}

	lead, err := s.repo.Create(ctx, params)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return transport.LeadResponse{}, apperr.Conflict(msgDuplicateLead)
		}
		return transport.LeadResponse{}, err
	}

	detail, err := s.repo.GetDetail(ctx, lead.ID)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return ToLeadResponse(detail), nil
}

// Get returns a lead with its open callbacks. Agents only see leads
// assigned to them; archived leads are hidden from agents.
func (s *Service) Get(ctx context.Context, actor lifecycle.Actor, id uuid.UUID) (transport.LeadDetailResponse, error) {
	detail, err := s.load(ctx, actor, id)
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	callbacks, err := s.repo.ListOpenCallbacks(ctx, id)
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}

	resp := transport.LeadDetailResponse{
		LeadResponse: ToLeadResponse(detail),
		Callbacks:    make([]transport.CallbackResponse, 0, len(callbacks)),
	}
	for _, cb := range callbacks {
		resp.Callbacks = append(resp.Callbacks, ToCallbackResponse(cb))
	}
	return resp, nil
}

// List filters leads in the database and hands the rows to the table engine.
func (s *Service) List(ctx context.Context, filters transport.ListFilters, state datatable.State) (transport.LeadListResponse, error) {
	rows, err := s.Rows(ctx, filters)
	if err != nil {
		return transport.LeadListResponse{}, err
	}
	return datatable.Apply(rows, LeadColumns, leadRowID, state), nil
}

// ListForAgent is List restricted to the agent's own active leads.
func (s *Service) ListForAgent(ctx context.Context, agentID uuid.UUID, filters transport.ListFilters, state datatable.State) (transport.LeadListResponse, error) {
	filters.AgentID = &agentID
	filters.IsArchived = false
	return s.List(ctx, filters, state)
}

// Rows returns every lead matching filters, newest first.
func (s *Service) Rows(ctx context.Context, filters transport.ListFilters) ([]transport.LeadResponse, error) {
	details, err := s.repo.List(ctx, repository.ListParams{
		AgentID:        filters.AgentID,
		StatusID:       filters.StatusID,
		SourcePlatform: filters.SourcePlatform,
		CampaignName:   filters.CampaignName,
		IsArchived:     filters.IsArchived,
		Search:         filters.Search,
		StartDate:      filters.StartDate,
		EndDate:        filters.EndDate,
	})
	if err != nil {
		return nil, err
	}

	rows := make([]transport.LeadResponse, len(details))
	for i, d := range details {
		rows[i] = ToLeadResponse(d)
	}
	return rows, nil
}

// UpdateStatus runs a status transition and returns its outcome together
// with the lead as stored afterwards.
func (s *Service) UpdateStatus(ctx context.Context, actor lifecycle.Actor, leadID uuid.UUID, req transport.UpdateLeadStatusRequest) (transport.TransitionResponse, error) {
	statusID, err := s.targetStatus(ctx, actor, leadID, req)
	if err != nil {
		return transport.TransitionResponse{}, err
	}
	in := lifecycle.TransitionInput{
		LeadID:   leadID,
		StatusID: statusID,
		Actor:    actor,
		Note:     req.Note,
	}
	if req.CallbackDate != nil && strings.TrimSpace(*req.CallbackDate) != "" {
		date, err := time.Parse(transport.DateLayout, strings.TrimSpace(*req.CallbackDate))
		if err != nil {
			return transport.TransitionResponse{}, apperr.BadRequest("invalid callbackDate, expected YYYY-MM-DD")
		}
		in.Scheduling = &lifecycle.Scheduling{Date: date, Time: req.CallbackTime, Notes: req.CallbackNotes}
	}

	res, err := s.transitions.Transition(ctx, in)
	if err != nil {
		return transport.TransitionResponse{}, err
	}

	resp := transport.TransitionResponse{
		LeadID:    res.LeadID,
		Changed:   res.Changed,
		OldStatus: toStatusResponse(res.OldStatus),
		NewStatus: toStatusResponse(res.NewStatus),
	}
	if res.ActivityLog != nil {
		a := ToActivityLogResponse(*res.ActivityLog)
		resp.ActivityLog = &a
	}
	if res.Callback != nil {
		cb := ToCallbackResponse(*res.Callback)
		resp.Callback = &cb
	}
	if detail, err := s.repo.GetDetail(ctx, leadID); err == nil {
		lead := ToLeadResponse(detail)
		resp.Lead = &lead
	}
	return resp, nil
}

// targetStatus resolves the status an update moves to. Without statusId an
// admin keeps the lead on its current status, which makes the update a
// note-only entry.
func (s *Service) targetStatus(ctx context.Context, actor lifecycle.Actor, leadID uuid.UUID, req transport.UpdateLeadStatusRequest) (uuid.UUID, error) {
	if req.StatusID != nil {
		return *req.StatusID, nil
	}
	if !actor.IsAdmin() {
		return uuid.UUID{}, apperr.Validation("statusId is required")
	}
	if req.Note == nil || strings.TrimSpace(*req.Note) == "" {
		return uuid.UUID{}, apperr.Validation("statusId or note is required")
	}
	detail, err := s.load(ctx, actor, leadID)
	if err != nil {
		return uuid.UUID{}, err
	}
	return detail.CurrentStatusID, nil
}

// BulkUpdate changes status, assignee or archive flag on many leads at once.
// A status change follows the transition rules: leads on a final status are
// skipped (counted as failed) unless the target is final too, and every lead
// whose status actually changes gets one activity entry by actor.
func (s *Service) BulkUpdate(ctx context.Context, actor lifecycle.Actor, req transport.BulkUpdateRequest) (transport.BulkResult, error) {
	params := repository.BulkUpdateParams{
		StatusID:   req.StatusID,
		IsArchived: req.IsArchived,
	}
	if req.StatusID != nil {
		if _, err := s.repo.GetStatus(ctx, *req.StatusID); err != nil {
			if errors.Is(err, repository.ErrStatusNotFound) {
				return transport.BulkResult{}, apperr.Validation(msgInvalidStatus)
			}
			return transport.BulkResult{}, err
		}
	}
	if req.AssignedToID.Set {
		if !req.AssignedToID.Clears() {
			if err := s.requireAgent(ctx, *req.AssignedToID.Value); err != nil {
				return transport.BulkResult{}, err
			}
		}
		params.SetAssignee = true
		params.AssignedToID = req.AssignedToID.Value
	}
	if params.StatusID == nil && !params.SetAssignee && params.IsArchived == nil {
		return transport.BulkResult{}, apperr.Validation("nothing to update")
	}
	if params.StatusID == nil {
		return s.bulk(ctx, req.LeadIDs, params)
	}

	ids := uniqueIDs(req.LeadIDs)
	if len(ids) == 0 {
		return transport.BulkResult{}, apperr.Validation("leadIds array is required")
	}
	out, err := s.repo.BulkSetStatus(ctx, ids, actor.ID, params)
	if err != nil {
		return transport.BulkResult{}, err
	}
	return transport.BulkResult{
		Requested: len(ids),
		Updated:   out.Updated,
		Failed:    int64(len(ids)) - out.Updated,
	}, nil
}

// BulkAssign assigns many leads to one agent.
func (s *Service) BulkAssign(ctx context.Context, req transport.BulkAssignRequest) (transport.BulkResult, error) {
	if err := s.requireAgent(ctx, req.AgentID); err != nil {
		return transport.BulkResult{}, err
	}
	return s.bulk(ctx, req.LeadIDs, repository.BulkUpdateParams{SetAssignee: true, AssignedToID: &req.AgentID})
}

// BulkArchive soft-deletes many leads.
func (s *Service) BulkArchive(ctx context.Context, req transport.BulkArchiveRequest) (transport.BulkResult, error) {
	archived := true
	return s.bulk(ctx, req.LeadIDs, repository.BulkUpdateParams{IsArchived: &archived})
}

func (s *Service) bulk(ctx context.Context, ids []uuid.UUID, params repository.BulkUpdateParams) (transport.BulkResult, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return transport.BulkResult{}, apperr.Validation("leadIds array is required")
	}

	updated, err := s.repo.BulkUpdate(ctx, ids, params)
	if err != nil {
		return transport.BulkResult{}, err
	}
	return transport.BulkResult{
		Requested: len(ids),
		Updated:   updated,
		Failed:    int64(len(ids)) - updated,
	}, nil
}

// AddNote appends a note-only activity entry to the lead.
func (s *Service) AddNote(ctx context.Context, actor lifecycle.Actor, leadID uuid.UUID, req transport.AddNoteRequest) (transport.ActivityLogResponse, error) {
	if _, err := s.load(ctx, actor, leadID); err != nil {
		return transport.ActivityLogResponse{}, err
	}

	content := sanitize.Text(req.Content)
	if content == "" {
		return transport.ActivityLogResponse{}, apperr.Validation("note content is required")
	}

	log, err := s.repo.InsertActivity(ctx, repository.ActivityParams{
		LeadID:    leadID,
		AgentID:   actor.ID,
		Note:      &content,
		IsPrivate: req.IsPrivate,
	})
	if err != nil {
		return transport.ActivityLogResponse{}, err
	}
	return ToActivityLogResponse(log), nil
}

// load fetches a lead and enforces agent ownership.
func (s *Service) load(ctx context.Context, actor lifecycle.Actor, id uuid.UUID) (repository.LeadDetail, error) {
	detail, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.LeadDetail{}, apperr.NotFound(msgLeadNotFound)
		}
		return repository.LeadDetail{}, err
	}
	if actor.IsAdmin() {
		return detail, nil
	}
	if detail.IsArchived {
		return repository.LeadDetail{}, apperr.NotFound(msgLeadNotFound)
	}
	if detail.AssignedToID == nil || *detail.AssignedToID != actor.ID {
		return repository.LeadDetail{}, apperr.Forbidden("you do not have access to this lead")
	}
	return detail, nil
}

func (s *Service) requireAgent(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.IsAgent(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Validation(msgInvalidAgent)
	}
	return nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != uuid.Nil && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
