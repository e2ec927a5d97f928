// Package lifecycle moves a lead between statuses. A transition updates the
// lead, appends an activity log and, when the lead enters "Scheduled
// Callback", materializes a callback, all in one transaction.
//
// Concurrent transitions on the same lead are not serialized: the transaction
// runs at Postgres' default READ COMMITTED level without row locks, so the
// last writer wins.
package lifecycle

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mehdirazajaffri/leads-management-system/internal/events"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads/domain"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads/repository"
	"github.com/mehdirazajaffri/leads-management-system/platform/apperr"
	"github.com/mehdirazajaffri/leads-management-system/platform/config"
	"github.com/mehdirazajaffri/leads-management-system/platform/db"
	"github.com/mehdirazajaffri/leads-management-system/platform/httpkit"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
	"github.com/mehdirazajaffri/leads-management-system/platform/metrics"
	"github.com/mehdirazajaffri/leads-management-system/platform/sanitize"
)

// Error codes attached to failed transitions.
const (
	CodeLeadNotFound      = "lead_not_found"
	CodeForbidden         = "forbidden"
	CodeInvalidStatus     = "invalid_status"
	CodeInvalidTransition = "invalid_transition"
	CodeTimeout           = "transition_timeout"
)

// Actor is the authenticated principal performing the transition.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// IsAdmin reports whether the actor bypasses the ownership check.
func (a Actor) IsAdmin() bool { return a.Role == httpkit.RoleAdmin }

// Scheduling carries the callback to create when entering "Scheduled Callback".
type Scheduling struct {
	Date  time.Time
	Time  *string
	Notes *string
}

type TransitionInput struct {
	LeadID     uuid.UUID
	StatusID   uuid.UUID
	Actor      Actor
	Note       *string
	Scheduling *Scheduling
}

type TransitionResult struct {
	LeadID      uuid.UUID
	OldStatus   domain.Status
	NewStatus   domain.Status
	Changed     bool
	ActivityLog *repository.ActivityLog
	Callback    *repository.Callback
}

type Service struct {
	repo     *repository.Repository
	eventBus events.Bus
	cfg      config.TransitionConfig
	metrics  *metrics.Metrics
	log      *logger.Logger
}

func New(repo *repository.Repository, eventBus events.Bus, cfg config.TransitionConfig, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{repo: repo, eventBus: eventBus, cfg: cfg, metrics: m, log: log}
}

// Transition validates and applies a status change. Preconditions are checked
// before anything is written; a failure inside the unit of work rolls back
// every write of the call.
func (s *Service) Transition(ctx context.Context, in TransitionInput) (TransitionResult, error) {
	start := time.Now()
	in.Note = sanitize.TextPtr(in.Note)

	res, err := s.transition(ctx, in)

	outcome := outcomeOf(res, err)
	s.metrics.ObserveTransition(outcome, time.Since(start))
	s.log.WithContext(ctx).LeadTransition(in.LeadID.String(), in.Actor.ID.String(),
		res.OldStatus.Name, res.NewStatus.Name, res.Changed, outcome)

	if err != nil {
		return TransitionResult{}, err
	}
	s.publish(ctx, in, res)
	return res, nil
}

func (s *Service) transition(ctx context.Context, in TransitionInput) (TransitionResult, error) {
	state, err := s.repo.GetLeadState(ctx, in.LeadID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && state.IsArchived) {
		return TransitionResult{}, apperr.NotFound("lead not found").WithCode(CodeLeadNotFound)
	}
	if err != nil {
		return TransitionResult{}, storageError(err)
	}

	if !in.Actor.IsAdmin() && (state.AssignedToID == nil || *state.AssignedToID != in.Actor.ID) {
		return TransitionResult{}, apperr.Forbidden("you do not have access to this lead").WithCode(CodeForbidden)
	}

	target, err := s.repo.GetStatus(ctx, in.StatusID)
	if errors.Is(err, repository.ErrStatusNotFound) {
		return TransitionResult{}, apperr.Validation("invalid status").WithCode(CodeInvalidStatus)
	}
	if err != nil {
		return TransitionResult{}, storageError(err)
	}

	res := TransitionResult{
		LeadID:    in.LeadID,
		OldStatus: state.Status,
		NewStatus: target,
		Changed:   state.Status.ID != target.ID,
	}

	if err := domain.CheckTransition(state.Status, target); err != nil {
		return res, apperr.Validation(err.Error()).WithCode(CodeInvalidTransition)
	}

	if !res.Changed && in.Note == nil {
		return res, nil
	}

	if err := s.apply(ctx, in, &res); err != nil {
		return res, err
	}
	return res, nil
}

// apply runs the unit of work. It is bounded twice: by a context deadline and
// by server-side lock and statement timeouts.
func (s *Service) apply(ctx context.Context, in TransitionInput, res *TransitionResult) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.GetTransitionExecTimeout())
	defer cancel()

	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return storageError(err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	repo := s.repo.WithTx(tx)
	if err := repo.SetLocalTimeouts(ctx, s.cfg.GetTransitionWaitTimeout(), s.cfg.GetTransitionExecTimeout()); err != nil {
		return storageError(err)
	}

	activity := repository.ActivityParams{
		LeadID:  in.LeadID,
		AgentID: in.Actor.ID,
		Note:    in.Note,
	}

	if res.Changed {
		if err := repo.SetStatus(ctx, in.LeadID, res.NewStatus.ID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return apperr.NotFound("lead not found").WithCode(CodeLeadNotFound)
			}
			return storageError(err)
		}
		activity.OldStatusID = &res.OldStatus.ID
		activity.NewStatusID = &res.NewStatus.ID
	}

	log, err := repo.InsertActivity(ctx, activity)
	if err != nil {
		return storageError(err)
	}
	res.ActivityLog = &log

	if res.Changed && res.NewStatus.SchedulesCallback() && in.Scheduling != nil {
		cb, err := s.scheduleCallback(ctx, repo, in.LeadID, *in.Scheduling)
		if err != nil {
			return storageError(err)
		}
		res.Callback = cb
	}

	if err := tx.Commit(ctx); err != nil {
		return storageError(err)
	}
	return nil
}

// scheduleCallback creates the callback unless an open one already exists
// for the same date and time. Returns nil when nothing was created.
func (s *Service) scheduleCallback(ctx context.Context, repo *repository.Repository, leadID uuid.UUID, sch Scheduling) (*repository.Callback, error) {
	date := truncateToDate(sch.Date)
	timeOfDay := sanitize.TextPtr(sch.Time)

	exists, err := repo.OpenCallbackExists(ctx, leadID, date, timeOfDay)
	if err != nil || exists {
		return nil, err
	}

	cb, err := repo.InsertCallback(ctx, repository.CallbackParams{
		LeadID:        leadID,
		ScheduledDate: date,
		ScheduledTime: timeOfDay,
		Notes:         sanitize.TextPtr(sch.Notes),
	})
	if err != nil {
		return nil, err
	}
	return &cb, nil
}

func (s *Service) publish(ctx context.Context, in TransitionInput, res TransitionResult) {
	if s.eventBus == nil || res.ActivityLog == nil {
		return
	}

	s.eventBus.Publish(ctx, events.LeadTransitioned{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        res.LeadID,
		ActorID:       in.Actor.ID,
		OldStatusID:   res.OldStatus.ID,
		NewStatusID:   res.NewStatus.ID,
		NewStatusName: res.NewStatus.Name,
		Changed:       res.Changed,
		ActivityLogID: &res.ActivityLog.ID,
	})

	if res.Callback != nil {
		s.eventBus.Publish(ctx, events.CallbackScheduled{
			BaseEvent:     events.NewBaseEvent(),
			CallbackID:    res.Callback.ID,
			LeadID:        res.LeadID,
			ScheduledDate: res.Callback.ScheduledDate,
			ScheduledTime: res.Callback.ScheduledTime,
		})
	}
}

// storageError maps a database failure to a retryable timeout or an internal error.
func storageError(err error) error {
	if db.IsTimeout(err) {
		return apperr.Wrap(apperr.KindTimeout, "the lead is busy, please retry", err).WithCode(CodeTimeout)
	}
	return apperr.Wrap(apperr.KindInternal, "failed to update lead status", err)
}

func outcomeOf(res TransitionResult, err error) string {
	if err != nil {
		if e, ok := apperr.As(err); ok && e.Code != "" {
			return e.Code
		}
		return "error"
	}
	switch {
	case res.Changed:
		return "changed"
	case res.ActivityLog != nil:
		return "noted"
	default:
		return "noop"
	}
}

func truncateToDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
