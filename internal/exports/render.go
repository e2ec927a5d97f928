package exports

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	leadsSheet    = "Leads"
	historySep    = " | "
	isoTimeLayout = "2006-01-02T15:04:05.000Z"
)

// writeQuotedCSV writes every field wrapped in double quotes with embedded
// quotes doubled. Records are separated by a bare newline.
func writeQuotedCSV(w io.Writer, records [][]string) error {
	bw := bufio.NewWriter(w)
	for i, record := range records {
		if i > 0 {
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
		}
		for j, field := range record {
			if j > 0 {
				if err := bw.WriteByte(','); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(`"` + strings.ReplaceAll(field, `"`, `""`) + `"`); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// writeXLSX renders records into a single-sheet workbook, first record as header.
func writeXLSX(w io.Writer, sheet string, records [][]string) error {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for ri, record := range records {
		cellRef, err := excelize.CoordinatesToCellName(1, ri+1)
		if err != nil {
			return err
		}
		row := make([]interface{}, len(record))
		for i, v := range record {
			row[i] = v
		}
		if err := xl.SetSheetRow(sheet, cellRef, &row); err != nil {
			return fmt.Errorf("write row %d: %w", ri+1, err)
		}
	}
	if len(records) > 0 {
		if err := xl.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return err
		}
	}
	_, err := xl.WriteTo(w)
	return err
}
