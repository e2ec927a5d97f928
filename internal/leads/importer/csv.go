// Package importer turns CSV uploads into leads: parse, validate, dedupe,
// then insert in one transaction.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/mehdirazajaffri/leads-management-system/internal/leads/transport"
	"github.com/mehdirazajaffri/leads-management-system/platform/apperr"
)

// Column headers, matched case-insensitively.
const (
	ColumnName           = "Name"
	ColumnPhone          = "Phone"
	ColumnEmail          = "Email"
	ColumnSourcePlatform = "Source Platform"
	ColumnCampaignName   = "Campaign Name"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ParseCSV reads the header row and every data row. Unknown columns are
// ignored, missing optional columns read as empty. A file without a Name or
// Phone column is rejected.
func ParseCSV(data []byte) ([]transport.ImportRow, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, apperr.Validation("CSV file is empty")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "invalid CSV file", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}
	for _, required := range []string{ColumnName, ColumnPhone} {
		if _, ok := index[strings.ToLower(required)]; !ok {
			return nil, apperr.Validation("CSV must contain a " + required + " column")
		}
	}

	cell := func(record []string, column string) string {
		i, ok := index[strings.ToLower(column)]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	rows := make([]transport.ImportRow, 0)
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.KindValidation, "invalid CSV file", err)
		}
		if isBlank(record) {
			continue
		}
		rows = append(rows, transport.ImportRow{
			Name:           cell(record, ColumnName),
			Phone:          cell(record, ColumnPhone),
			Email:          cell(record, ColumnEmail),
			SourcePlatform: cell(record, ColumnSourcePlatform),
			CampaignName:   cell(record, ColumnCampaignName),
		})
	}
	return rows, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
