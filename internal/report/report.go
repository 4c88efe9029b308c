// Package report renders job outcomes into files an inspector can open:
// per-page and per-field CSVs, plus an anomaly workbook.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aemqa/packetcheck/internal/extract"
	"github.com/aemqa/packetcheck/internal/schema"
	"github.com/aemqa/packetcheck/internal/validate"
)

// Field statuses as they appear in report cells.
const (
	statusFound        = "Found"
	statusMissing      = "Missing"
	statusOutOfRange   = "Out of Range"
	statusInconsistent = "Inconsistent"
)

// Writer renders reports into a directory, typically the exports dir
// served by the download endpoint. File names are returned relative to
// that directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates the directory if needed.
func NewWriter(dir string, logger *slog.Logger) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating exports dir: %w", err)
	}
	return &Writer{dir: dir, logger: logger}, nil
}

// Write renders the per-page CSV, the field summary CSV, and the
// anomaly workbook for a finished job, against the schema the job was
// validated with.
func (w *Writer) Write(ctx context.Context, jobKey string, s *schema.Schema, rec *extract.Record, res validate.Result, pageCount int) ([]string, error) {
	files := make([]string, 0, 3)

	name := jobKey + "_pages.csv"
	if err := w.writePageCSV(name, s, rec, res, pageCount); err != nil {
		return nil, err
	}
	files = append(files, name)

	name = jobKey + "_fields.csv"
	if err := w.writeFieldCSV(name, s, rec, res); err != nil {
		return nil, err
	}
	files = append(files, name)

	name = jobKey + "_anomalies.xlsx"
	if err := w.writeAnomalyWorkbook(name, rec, res); err != nil {
		return nil, err
	}
	files = append(files, name)

	w.logger.Info("reports written", "key", jobKey, "files", len(files))
	return files, nil
}

// WriteError renders a single-row CSV describing a failed job, so the
// download link still produces something meaningful.
func (w *Writer) WriteError(_ context.Context, jobKey string, jobErr error) ([]string, error) {
	name := jobKey + "_error.csv"
	rows := [][]string{
		{"Job", "Failed At", "Error"},
		{jobKey, time.Now().UTC().Format(time.RFC3339), jobErr.Error()},
	}
	if err := w.writeCSV(name, rows); err != nil {
		return nil, err
	}
	return []string{name}, nil
}

// fieldStatus classifies one field's overall outcome.
func fieldStatus(name string, rec *extract.Record, res validate.Result) string {
	if _, ok := res.OutOfRange[name]; ok {
		return statusOutOfRange
	}
	if _, ok := res.Inconsistent[name]; ok {
		return statusInconsistent
	}
	if rec.Get(name).Method == extract.MethodMissing {
		return statusMissing
	}
	return statusFound
}

// writePageCSV lists every page/field pair with the value the page
// produced, matching the packet's reading order.
func (w *Writer) writePageCSV(name string, s *schema.Schema, rec *extract.Record, res validate.Result, pageCount int) error {
	rows := [][]string{{"Page", "Field", "Result", "Output"}}
	for page := 0; page < pageCount; page++ {
		for _, f := range s.Fields() {
			v, ok := rec.PageValue(f.Name, page)
			result := statusFound
			if !ok {
				result = statusMissing
			} else if _, bad := res.OutOfRange[f.Name]; bad && rec.Get(f.Name).Value == v {
				result = statusOutOfRange
			}
			rows = append(rows, []string{fmt.Sprintf("%d", page+1), f.Name, result, v})
		}
	}
	return w.writeCSV(name, rows)
}

// writeFieldCSV gives the document-level verdict per field, with every
// page's sighting joined into the output column.
func (w *Writer) writeFieldCSV(name string, s *schema.Schema, rec *extract.Record, res validate.Result) error {
	rows := [][]string{{"Field", "Status", "Output"}}
	for _, f := range s.Fields() {
		var outputs []string
		for _, pv := range rec.PageValues(f.Name) {
			outputs = append(outputs, pv.Value)
		}
		rows = append(rows, []string{f.Name, fieldStatus(f.Name, rec, res), strings.Join(outputs, "; ")})
	}
	return w.writeCSV(name, rows)
}

func (w *Writer) writeCSV(name string, rows [][]string) error {
	f, err := os.Create(filepath.Join(w.dir, name))
	if err != nil {
		return fmt.Errorf("creating report %s: %w", name, err)
	}
	cw := csv.NewWriter(f)
	if err := cw.WriteAll(rows); err != nil {
		f.Close()
		return fmt.Errorf("writing report %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing report %s: %w", name, err)
	}
	return nil
}
