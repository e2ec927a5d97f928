package importer

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mehdirazajaffri/leads-management-system/internal/events"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads/domain"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads/repository"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads/transport"
	"github.com/mehdirazajaffri/leads-management-system/platform/apperr"
	"github.com/mehdirazajaffri/leads-management-system/platform/config"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
	"github.com/mehdirazajaffri/leads-management-system/platform/metrics"
)

// previewLimit caps the rows and errors echoed back by a preview.
const previewLimit = 10

// Archiver keeps a copy of the raw upload. Optional.
type Archiver interface {
	Archive(ctx context.Context, fileName string, data []byte) (string, error)
	DownloadURL(ctx context.Context, key string) (string, error)
}

// Upload is one CSV file received from an admin.
type Upload struct {
	ActorID        uuid.UUID
	FileName       string
	Data           []byte
	SkipDuplicates bool
}

type Service struct {
	repo     *repository.Repository
	archiver Archiver
	eventBus events.Bus
	phoneCfg config.PhoneConfig
	metrics  *metrics.Metrics
	log      *logger.Logger
}

func New(repo *repository.Repository, archiver Archiver, eventBus events.Bus, phoneCfg config.PhoneConfig, m *metrics.Metrics, log *logger.Logger) *Service {
	return &Service{repo: repo, archiver: archiver, eventBus: eventBus, phoneCfg: phoneCfg, metrics: m, log: log}
}

// Preview validates the file without writing anything.
func (s *Service) Preview(ctx context.Context, data []byte) (transport.ImportPreviewResponse, error) {
	if _, err := s.defaultStatus(ctx); err != nil {
		return transport.ImportPreviewResponse{}, err
	}

	v, err := s.validate(data)
	if err != nil {
		return transport.ImportPreviewResponse{}, err
	}

	preview := make([]transport.ImportRow, 0, min(len(v.Valid), previewLimit))
	for _, row := range v.Valid[:min(len(v.Valid), previewLimit)] {
		preview = append(preview, row.ImportRow)
	}
	return transport.ImportPreviewResponse{
		Valid:            len(v.Valid),
		ErrorCount:       len(v.Errors),
		Preview:          preview,
		ValidationErrors: v.Errors[:min(len(v.Errors), previewLimit)],
	}, nil
}

// Import writes the valid, non-duplicate rows of the file in one transaction.
// Row failures are reported in the result, not as an error.
func (s *Service) Import(ctx context.Context, up Upload) (transport.ImportResultResponse, error) {
	status, err := s.defaultStatus(ctx)
	if err != nil {
		return transport.ImportResultResponse{}, err
	}

	v, err := s.validate(up.Data)
	if err != nil {
		return transport.ImportResultResponse{}, err
	}
	if len(v.Valid) == 0 {
		return transport.ImportResultResponse{}, apperr.Validation("No valid rows to import").WithDetails(v.Errors)
	}

	plan, err := s.write(ctx, status, v.Valid, up.SkipDuplicates)
	if err != nil {
		return transport.ImportResultResponse{}, err
	}

	result := transport.ImportResultResponse{
		Success:          true,
		Imported:         len(plan.Insert),
		Updated:          len(plan.Update),
		Skipped:          len(v.Errors) + len(plan.Duplicates),
		Errors:           len(v.Errors),
		Duplicates:       plan.Duplicates,
		ValidationErrors: v.Errors,
	}
	s.archive(ctx, up, &result)

	s.metrics.ObserveImport(result.Imported, result.Updated, len(plan.Duplicates), result.Errors)
	s.log.WithContext(ctx).ImportSummary(up.FileName, result.Imported, result.Updated, result.Skipped, result.Errors)
	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.LeadsImported{
			BaseEvent: events.NewBaseEvent(),
			ActorID:   up.ActorID,
			FileName:  up.FileName,
			Imported:  result.Imported,
			Updated:   result.Updated,
			Skipped:   result.Skipped,
			Invalid:   result.Errors,
		})
	}
	return result, nil
}

func (s *Service) validate(data []byte) (Validation, error) {
	rows, err := ParseCSV(data)
	if err != nil {
		return Validation{}, err
	}
	return ValidateRows(rows, s.phoneCfg.GetPhoneDefaultRegion()), nil
}

// write matches the rows against stored leads and applies the plan. Matching
// runs inside the transaction so the plan sees the state it writes over.
func (s *Service) write(ctx context.Context, status domain.Status, rows []ValidRow, skipDuplicates bool) (Plan, error) {
	tx, err := s.repo.Begin(ctx)
	if err != nil {
		return Plan{}, apperr.Wrap(apperr.KindInternal, "failed to import leads", err)
	}
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()
	repo := s.repo.WithTx(tx)

	digits, emails := lookupKeys(rows)
	existing, err := repo.MatchExisting(ctx, digits, emails)
	if err != nil {
		return Plan{}, apperr.Wrap(apperr.KindInternal, "failed to import leads", err)
	}
	plan := BuildPlan(rows, existing, skipDuplicates)

	inserts := make([]repository.CreateLeadParams, len(plan.Insert))
	for i, row := range plan.Insert {
		inserts[i] = createParams(row, status.ID)
	}
	if _, err := repo.InsertMany(ctx, inserts); err != nil {
		return Plan{}, apperr.Wrap(apperr.KindInternal, "failed to import leads", err)
	}
	for _, u := range plan.Update {
		if err := repo.UpdateContact(ctx, u.LeadID, createParams(u.Row, status.ID)); err != nil {
			return Plan{}, apperr.Wrap(apperr.KindInternal, "failed to import leads", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Plan{}, apperr.Wrap(apperr.KindInternal, "failed to import leads", err)
	}
	return plan, nil
}

// archive stores the raw upload. Failures are logged, the import already committed.
func (s *Service) archive(ctx context.Context, up Upload, result *transport.ImportResultResponse) {
	if s.archiver == nil {
		return
	}

	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	key, err := s.archiver.Archive(actx, up.FileName, up.Data)
	if err != nil {
		s.log.WithContext(ctx).Warn("failed to archive import upload", "file", up.FileName, "error", err)
		return
	}
	result.ArchiveKey = key
	if url, err := s.archiver.DownloadURL(actx, key); err == nil {
		result.ArchiveURL = url
	}
}

func (s *Service) defaultStatus(ctx context.Context) (domain.Status, error) {
	statuses, err := s.repo.ListStatuses(ctx)
	if err != nil {
		return domain.Status{}, err
	}
	status, ok := domain.PickDefaultStatus(statuses)
	if !ok {
		return domain.Status{}, apperr.Validation("No default status found. Please create a status first.")
	}
	return status, nil
}

func createParams(row ValidRow, statusID uuid.UUID) repository.CreateLeadParams {
	return repository.CreateLeadParams{
		Name:            row.Name,
		Phone:           row.Phone,
		Email:           row.Email,
		SourcePlatform:  row.SourcePlatform,
		CampaignName:    row.CampaignName,
		CurrentStatusID: statusID,
	}
}
