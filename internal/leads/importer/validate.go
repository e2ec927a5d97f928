package importer

import (
	"strings"

	"github.com/mehdirazajaffri/leads-management-system/internal/leads/transport"
	"github.com/mehdirazajaffri/leads-management-system/platform/phone"
	"github.com/mehdirazajaffri/leads-management-system/platform/sanitize"
	"github.com/mehdirazajaffri/leads-management-system/platform/validator"
)

// Row validation messages.
const (
	MsgNameRequired  = "Name is required"
	MsgPhoneRequired = "Phone is required"
	MsgInvalidEmail  = "Invalid email format"
	MsgInvalidPhone  = "Invalid phone format"
)

// ValidRow is a sanitized row that passed validation. Row is the 1-based
// data row index.
type ValidRow struct {
	Row int
	transport.ImportRow
}

// Validation splits rows into valid ones and per-row errors.
type Validation struct {
	Valid  []ValidRow
	Errors []transport.RowError
}

// ValidateRows sanitizes every field, lower-cases emails and checks the
// required fields and formats.
func ValidateRows(rows []transport.ImportRow, region string) Validation {
	out := Validation{
		Valid:  make([]ValidRow, 0, len(rows)),
		Errors: make([]transport.RowError, 0),
	}

	for i, raw := range rows {
		row := transport.ImportRow{
			Name:           sanitize.Field(raw.Name),
			Phone:          sanitize.Field(raw.Phone),
			Email:          strings.ToLower(sanitize.Field(raw.Email)),
			SourcePlatform: sanitize.Field(raw.SourcePlatform),
			CampaignName:   sanitize.Field(raw.CampaignName),
		}

		var errs []string
		if row.Name == "" {
			errs = append(errs, MsgNameRequired)
		}
		if row.Phone == "" {
			errs = append(errs, MsgPhoneRequired)
		}
		if row.Email != "" && !validator.Validate.IsEmail(row.Email) {
			errs = append(errs, MsgInvalidEmail)
		}
		if row.Phone != "" && !phone.IsPlausible(row.Phone, region) {
			errs = append(errs, MsgInvalidPhone)
		}

		if len(errs) > 0 {
			out.Errors = append(out.Errors, transport.RowError{Row: i + 1, Data: row, Errors: errs})
			continue
		}
		row.Phone = phone.NormalizeE164(row.Phone, region)
		out.Valid = append(out.Valid, ValidRow{Row: i + 1, ImportRow: row})
	}
	return out
}
