package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/bizdesk/internal/domain/models"
	"github.com/mamadbah2/bizdesk/internal/query"
)

// LogsSheet is the name of the worksheet holding exported logs.
const LogsSheet = "Logs"

// ContentType is the MIME type of the produced workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var logHeaders = []string{
	"Date", "Worker", "Username", "Absent", "Starting time", "Finishing time",
	"Payment", "OTV", "Notes",
}

// WriteLogs renders a log listing as an xlsx workbook: one row per log
// followed by a totals row.
func WriteLogs(w io.Writer, page models.LogsPage) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(LogsSheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	if err := writeRow(f, 1, toCells(logHeaders)); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6FA"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, log := range page.Logs {
		absent := "no"
		if log.IsAbsent {
			absent = "yes"
		}
		row := []any{
			log.Date.Format(query.DateLayout),
			log.WorkerName,
			log.WorkerUsername,
			absent,
			log.StartingTime,
			log.FinishingTime,
			log.Payment,
			log.OTV,
			log.ExtraNotes,
		}
		if err := writeRow(f, i+2, row); err != nil {
			return err
		}
	}

	totalsRow := len(page.Logs) + 2
	totals := []any{
		"Total", fmt.Sprintf("%d days present", page.DaysCount), "", "", "", "",
		page.PaymentsSum, page.OTVSum, "",
	}
	if err := writeRow(f, totalsRow, totals); err != nil {
		return err
	}

	if err := f.SetRowStyle(LogsSheet, 1, 1, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := f.SetRowStyle(LogsSheet, totalsRow, totalsRow, bold); err != nil {
		return fmt.Errorf("style totals: %w", err)
	}
	if err := f.SetColWidth(LogsSheet, "A", "I", 16); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Filename names the workbook after the filter bounds.
func Filename(page models.LogsPage) string {
	from, to := "all", "all"
	if page.StartDate != nil {
		from = *page.StartDate
	}
	if page.EndDate != nil {
		to = *page.EndDate
	}
	return fmt.Sprintf("logs_%s_%s.xlsx", from, to)
}

func writeRow(f *excelize.File, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(LogsSheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
