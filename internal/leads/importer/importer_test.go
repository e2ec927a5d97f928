package importer

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehdirazajaffri/leads-management-system/internal/leads/domain"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads/repository"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads/transport"
	"github.com/mehdirazajaffri/leads-management-system/platform/apperr"
	"github.com/mehdirazajaffri/leads-management-system/platform/logger"
)

func TestParseCSV(t *testing.T) {
	data := "\xEF\xBB\xBFname, PHONE ,Email,Source Platform,Extra\n" +
		"Jane,(650) 253-0000,jane@example.com,Facebook,x\n" +
		",,,,\n" +
		"\"Doe, John\",6502530001\n"

	rows, err := ParseCSV([]byte(data))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, transport.ImportRow{
		Name: "Jane", Phone: "(650) 253-0000", Email: "jane@example.com", SourcePlatform: "Facebook",
	}, rows[0])
	assert.Equal(t, "Doe, John", rows[1].Name)
	assert.Empty(t, rows[1].Email)
}

func TestParseCSVRequiresNameAndPhone(t *testing.T) {
	_, err := ParseCSV([]byte("Name,Email\nJane,jane@example.com\n"))
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Contains(t, err.Error(), "Phone")

	_, err = ParseCSV(nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestValidateRows(t *testing.T) {
	rows := []transport.ImportRow{
		{Name: "Jane", Phone: "(650) 253-0000", Email: " Jane@Example.com "},
		{Name: "", Phone: "6502530001"},
		{Name: "Bob", Phone: "6502530002", Email: "not-an-email"},
		{Name: "<script>x</script>", Phone: "12ab"},
		{Name: "Al", Phone: ""},
	}

	v := ValidateRows(rows, "US")

	require.Len(t, v.Valid, 1)
	assert.Equal(t, 1, v.Valid[0].Row)
	assert.Equal(t, "jane@example.com", v.Valid[0].Email)
	assert.Equal(t, "+16502530000", v.Valid[0].Phone)

	require.Len(t, v.Errors, 4)
	assert.Equal(t, 2, v.Errors[0].Row)
	assert.Equal(t, []string{MsgNameRequired}, v.Errors[0].Errors)
	assert.Equal(t, []string{MsgInvalidEmail}, v.Errors[1].Errors)
	assert.Equal(t, []string{MsgInvalidPhone}, v.Errors[2].Errors)
	assert.Equal(t, "x", v.Errors[2].Data.Name)
	assert.Equal(t, []string{MsgPhoneRequired}, v.Errors[3].Errors)
}

func validRow(row int, name, phone, email string) ValidRow {
	return ValidRow{Row: row, ImportRow: transport.ImportRow{Name: name, Phone: phone, Email: email}}
}

func TestBuildPlan(t *testing.T) {
	stored := uuid.New()
	storedByEmail := uuid.New()
	existing := []repository.ExistingMatch{
		{LeadID: stored, PhoneDigits: "16502530000", Email: "old@example.com"},
		{LeadID: storedByEmail, PhoneDigits: "19999999999", Email: "sam@example.com"},
	}
	rows := []ValidRow{
		validRow(1, "Jane", "+16502530000", ""),
		validRow(2, "Sam", "+16502530005", "sam@example.com"),
		validRow(3, "Ann", "+16502530001", "ann@example.com"),
		validRow(4, "Ann again", "+16502530001", "ann@example.com"),
		validRow(5, "Ann other email", "+16502530001", "ann2@example.com"),
	}

	plan := BuildPlan(rows, existing, true)

	require.Len(t, plan.Insert, 2)
	assert.Equal(t, 3, plan.Insert[0].Row)
	assert.Equal(t, 5, plan.Insert[1].Row, "a different email makes a different batch key")
	assert.Empty(t, plan.Update)

	require.Len(t, plan.Duplicates, 3)
	assert.Equal(t, transport.DuplicateRow{Row: 1, Reason: ReasonPhone, ExistingLeadID: &stored}, plan.Duplicates[0])
	assert.Equal(t, transport.DuplicateRow{Row: 2, Reason: ReasonEmail, ExistingLeadID: &storedByEmail}, plan.Duplicates[1])
	assert.Equal(t, transport.DuplicateRow{Row: 4, Reason: ReasonBatch}, plan.Duplicates[2])
}

func TestBuildPlanUpdatesWhenNotSkipping(t *testing.T) {
	stored := uuid.New()
	plan := BuildPlan(
		[]ValidRow{validRow(1, "Jane", "+16502530000", "")},
		[]repository.ExistingMatch{{LeadID: stored, PhoneDigits: "16502530000"}},
		false,
	)

	assert.Empty(t, plan.Insert)
	require.Len(t, plan.Update, 1)
	assert.Equal(t, stored, plan.Update[0].LeadID)
	assert.Len(t, plan.Duplicates, 1)
}

func TestLookupKeys(t *testing.T) {
	digits, emails := lookupKeys([]ValidRow{
		validRow(1, "a", "+1 650 253 0000", "a@example.com"),
		validRow(2, "b", "+16502530000", ""),
		validRow(3, "c", "+16502530001", "a@example.com"),
	})
	assert.Equal(t, []string{"16502530000", "16502530001"}, digits)
	assert.Equal(t, []string{"a@example.com"}, emails)
}

type regionConfig struct{}

func (regionConfig) GetPhoneDefaultRegion() string { return "US" }

type fakeArchiver struct {
	keys []string
}

func (a *fakeArchiver) Archive(_ context.Context, fileName string, _ []byte) (string, error) {
	key := "imports/2025/06/01/" + fileName
	a.keys = append(a.keys, key)
	return key, nil
}

func (a *fakeArchiver) DownloadURL(_ context.Context, key string) (string, error) {
	return "https://minio.local/" + key, nil
}

func newService(t *testing.T, archiver Archiver) (*Service, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return New(repository.New(mock), archiver, nil, regionConfig{}, nil, logger.NewWriter("production", io.Discard)), mock
}

var needToContact = domain.Status{ID: uuid.New(), Name: domain.StatusNeedToContact}

func expectStatuses(mock pgxmock.PgxPoolIface, statuses ...domain.Status) {
	rows := pgxmock.NewRows([]string{"id", "name", "is_final"})
	for _, s := range statuses {
		rows.AddRow(s.ID, s.Name, s.IsFinal)
	}
	mock.ExpectQuery("FROM statuses ORDER BY name").WillReturnRows(rows)
}

const sampleCSV = "Name,Phone,Email\n" +
	"Jane,(650) 253-0000,jane@example.com\n" +
	",6502530001,\n" +
	"Bob,6502530002,bad-email\n"

func TestPreview(t *testing.T) {
	svc, mock := newService(t, nil)
	expectStatuses(mock, needToContact)

	got, err := svc.Preview(context.Background(), []byte(sampleCSV))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet(), "preview never writes")

	assert.Equal(t, 1, got.Valid)
	assert.Equal(t, 2, got.ErrorCount)
	assert.Equal(t, "Jane", got.Preview[0].Name)
	assert.Equal(t, MsgNameRequired, got.ValidationErrors[0].Errors[0])
	assert.Equal(t, MsgInvalidEmail, got.ValidationErrors[1].Errors[0])
}

func TestImportWithoutDefaultStatus(t *testing.T) {
	svc, mock := newService(t, nil)
	expectStatuses(mock, domain.Status{ID: uuid.New(), Name: "Converted", IsFinal: true})

	_, err := svc.Import(context.Background(), Upload{Data: []byte(sampleCSV), SkipDuplicates: true})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Contains(t, err.Error(), "No default status found")
}

func TestImportWithNoValidRows(t *testing.T) {
	svc, mock := newService(t, nil)
	expectStatuses(mock, needToContact)

	_, err := svc.Import(context.Background(), Upload{Data: []byte("Name,Phone\n,123\n"), SkipDuplicates: true})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet(), "no transaction is opened")

	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "No valid rows to import", e.Message)
	details, ok := e.Details.([]transport.RowError)
	require.True(t, ok)
	assert.Len(t, details, 1)
}

func TestImportUpdatesDuplicatesInTransaction(t *testing.T) {
	archiver := &fakeArchiver{}
	svc, mock := newService(t, archiver)
	stored := uuid.New()

	expectStatuses(mock, needToContact)
	mock.ExpectBegin()
	mock.ExpectQuery("FROM leads").
		WithArgs([]string{"16502530000"}, []string{"jane@example.com"}).
		WillReturnRows(pgxmock.NewRows([]string{"id", "digits", "email"}).AddRow(stored, "16502530000", ""))
	mock.ExpectExec("UPDATE leads").
		WithArgs(stored, "Jane", "+16502530000", "jane@example.com", "", "").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	res, err := svc.Import(context.Background(), Upload{
		ActorID:        uuid.New(),
		FileName:       "leads.csv",
		Data:           []byte(sampleCSV),
		SkipDuplicates: false,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, 0, res.Imported)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 2, res.Errors)
	assert.Equal(t, 3, res.Skipped)
	assert.Equal(t, []transport.DuplicateRow{{Row: 1, Reason: ReasonPhone, ExistingLeadID: &stored}}, res.Duplicates)
	assert.Equal(t, "imports/2025/06/01/leads.csv", res.ArchiveKey)
	assert.Equal(t, "https://minio.local/imports/2025/06/01/leads.csv", res.ArchiveURL)
}

func TestImportRollsBackOnWriteFailure(t *testing.T) {
	svc, mock := newService(t, nil)
	stored := uuid.New()

	expectStatuses(mock, needToContact)
	mock.ExpectBegin()
	mock.ExpectQuery("FROM leads").
		WillReturnRows(pgxmock.NewRows([]string{"id", "digits", "email"}).AddRow(stored, "16502530000", ""))
	mock.ExpectExec("UPDATE leads").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err := svc.Import(context.Background(), Upload{Data: []byte(sampleCSV)})
	assert.True(t, apperr.Is(err, apperr.KindInternal))
	assert.NoError(t, mock.ExpectationsWereMet())
}
