package report

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/aemqa/packetcheck/internal/extract"
	"github.com/aemqa/packetcheck/internal/validate"
)

// writeAnomalyWorkbook renders only the problems: missing fields,
// out-of-range values, and cross-page inconsistencies. A clean document
// produces a workbook with just the header row.
func (w *Writer) writeAnomalyWorkbook(name string, rec *extract.Record, res validate.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Anomalies"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	headers := []string{"Field", "Problem", "Page", "Detail"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		_ = f.SetCellStyle(sheet, "A1", "D1", boldStyle)
	}

	row := 2
	write := func(field, problem, page, detail string) {
		set := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		set(1, field)
		set(2, problem)
		set(3, page)
		set(4, detail)
		row++
	}

	for _, field := range res.MissingFields {
		write(field, statusMissing, "-", "label not found on any page")
	}
	for field, v := range res.OutOfRange {
		fv := rec.Get(field)
		write(field, statusOutOfRange, fmt.Sprintf("%d", fv.PageIndex+1),
			fmt.Sprintf("value %q outside [%g, %g]", v.Value, v.Lo, v.Hi))
	}
	for field, inc := range res.Inconsistent {
		var detail string
		for i, pv := range inc.Values {
			if i > 0 {
				detail += "; "
			}
			detail += fmt.Sprintf("page %d: %q", pv.PageIndex+1, pv.Value)
		}
		write(field, statusInconsistent, "All Pages", detail)
	}

	_ = f.SetColWidth(sheet, "A", "A", 28) // field
	_ = f.SetColWidth(sheet, "B", "B", 16) // problem
	_ = f.SetColWidth(sheet, "C", "C", 10) // page
	_ = f.SetColWidth(sheet, "D", "D", 60) // detail

	if row > 2 {
		if err := f.AddTable(sheet, &excelize.Table{
			Range:     fmt.Sprintf("A1:D%d", row-1),
			Name:      "anomalies",
			StyleName: "TableStyleMedium9",
		}); err != nil {
			return err
		}
	}

	if err := f.SaveAs(filepath.Join(w.dir, name)); err != nil {
		return fmt.Errorf("saving workbook %s: %w", name, err)
	}
	return nil
}
