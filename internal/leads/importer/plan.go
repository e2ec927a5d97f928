package importer

import (
	"github.com/google/uuid"

	"github.com/mehdirazajaffri/leads-management-system/internal/leads/repository"
	"github.com/mehdirazajaffri/leads-management-system/internal/leads/transport"
	"github.com/mehdirazajaffri/leads-management-system/platform/phone"
)

// Duplicate reasons.
const (
	ReasonPhone = "phone"
	ReasonEmail = "email"
	ReasonBatch = "batch"
)

// Update overwrites an existing lead with an imported row.
type Update struct {
	LeadID uuid.UUID
	Row    ValidRow
}

// Plan is what an import will write.
type Plan struct {
	Insert     []ValidRow
	Update     []Update
	Duplicates []transport.DuplicateRow
}

// BuildPlan classifies valid rows against stored leads and against earlier
// rows of the same file. A row matching a stored lead is a duplicate; with
// skipDuplicates false it also updates that lead. A row whose
// email/phone key was already seen in the file is a batch duplicate.
func BuildPlan(rows []ValidRow, existing []repository.ExistingMatch, skipDuplicates bool) Plan {
	byPhone := make(map[string]uuid.UUID, len(existing))
	byEmail := make(map[string]uuid.UUID, len(existing))
	for _, m := range existing {
		if _, ok := byPhone[m.PhoneDigits]; !ok && m.PhoneDigits != "" {
			byPhone[m.PhoneDigits] = m.LeadID
		}
		if _, ok := byEmail[m.Email]; !ok && m.Email != "" {
			byEmail[m.Email] = m.LeadID
		}
	}

	plan := Plan{
		Insert:     make([]ValidRow, 0, len(rows)),
		Duplicates: make([]transport.DuplicateRow, 0),
	}
	seen := make(map[string]struct{}, len(rows))

	for _, row := range rows {
		digits := phone.Digits(row.Phone)
		key := batchKey(row.Email, digits)

		if id, reason, ok := matchStored(byPhone, byEmail, digits, row.Email); ok {
			plan.Duplicates = append(plan.Duplicates, transport.DuplicateRow{Row: row.Row, Reason: reason, ExistingLeadID: &id})
			if !skipDuplicates {
				plan.Update = append(plan.Update, Update{LeadID: id, Row: row})
			}
			continue
		}
		if _, dup := seen[key]; dup {
			plan.Duplicates = append(plan.Duplicates, transport.DuplicateRow{Row: row.Row, Reason: ReasonBatch})
			continue
		}

		seen[key] = struct{}{}
		plan.Insert = append(plan.Insert, row)
	}
	return plan
}

func matchStored(byPhone, byEmail map[string]uuid.UUID, digits, email string) (uuid.UUID, string, bool) {
	if id, ok := byPhone[digits]; ok && digits != "" {
		return id, ReasonPhone, true
	}
	if id, ok := byEmail[email]; ok && email != "" {
		return id, ReasonEmail, true
	}
	return uuid.Nil, "", false
}

func batchKey(email, digits string) string {
	return email + "_" + digits
}

// lookupKeys returns the distinct phone digits and non-empty emails of rows.
func lookupKeys(rows []ValidRow) (digits, emails []string) {
	seenDigits := make(map[string]struct{}, len(rows))
	seenEmails := make(map[string]struct{}, len(rows))
	digits = make([]string, 0, len(rows))
	emails = make([]string, 0, len(rows))

	for _, row := range rows {
		d := phone.Digits(row.Phone)
		if _, ok := seenDigits[d]; !ok && d != "" {
			seenDigits[d] = struct{}{}
			digits = append(digits, d)
		}
		if _, ok := seenEmails[row.Email]; !ok && row.Email != "" {
			seenEmails[row.Email] = struct{}{}
			emails = append(emails, row.Email)
		}
	}
	return digits, emails
}
