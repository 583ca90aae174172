package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/robna/gepard-BlindCorr/domain/correction"
	"github.com/robna/gepard-BlindCorr/domain/particle"
	"github.com/robna/gepard-BlindCorr/internal"
	"github.com/robna/gepard-BlindCorr/internal/errors"
	"github.com/robna/gepard-BlindCorr/ports"
)

var tableHeaders = []string{
	"particle_id", "sample_name", "polymer_type", "color", "shape",
	"size_1_um", "size_2_um", "size_3_um", "size_geom_mean",
}

var logHeaders = []string{
	"control_particle_id", "control_sample", "eliminated_particle_id",
	"sample_name", "polymer_type", "color", "shape", "size_difference",
}

// Writer implements ports.TableExporter for xlsx and csv output.
type Writer struct {
	log *internal.Logger
}

// NewWriter creates a table exporter.
func NewWriter(logger *internal.Logger) ports.TableExporter {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Writer{log: logger.WithPrefix("Writer")}
}

// ExportTable writes a corrected particle table to path.
func (w *Writer) ExportTable(_ context.Context, t *particle.Table, path string, format ports.OutputFormat) error {
	rows := make([][]string, 0, t.Len())
	for _, p := range t.Particles {
		rows = append(rows, []string{
			p.ID.String(), p.SampleName, p.Polymer, p.Color, p.Shape,
			formatSize(p.Size1), formatSize(p.Size2), formatSize(p.Size3),
			formatSize(p.SizeGeomMean),
		})
	}
	if err := w.write(path, format, tableHeaders, rows); err != nil {
		return err
	}
	w.log.Info("exported %d particles to %s", t.Len(), path)
	return nil
}

// ExportLog writes an elimination log to path.
func (w *Writer) ExportLog(_ context.Context, log *correction.Log, path string, format ports.OutputFormat) error {
	rows := make([][]string, 0, log.Len())
	for _, e := range log.Eliminations {
		rows = append(rows, []string{
			e.ControlID.String(), e.ControlSample, e.EliminatedID.String(),
			e.SampleName, e.Polymer, e.Color, e.Shape,
			strconv.FormatFloat(e.SizeDiff, 'f', 4, 64),
		})
	}
	if err := w.write(path, format, logHeaders, rows); err != nil {
		return err
	}
	w.log.Info("exported elimination log with %d records to %s", log.Len(), path)
	return nil
}

func (w *Writer) write(path string, format ports.OutputFormat, headers []string, rows [][]string) error {
	if !format.IsValid() {
		return errors.ExportError(path, fmt.Errorf("unsupported format: %s", format))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.ExportError(path, err)
	}

	switch format {
	case ports.FormatCSV:
		return w.writeCSV(path, headers, rows)
	default:
		return w.writeXLSX(path, headers, rows)
	}
}

func (w *Writer) writeCSV(path string, headers []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.ExportError(path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	defer cw.Flush()

	if err := cw.Write(headers); err != nil {
		return errors.ExportError(path, err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return errors.ExportError(path, err)
		}
	}
	if err := cw.Error(); err != nil {
		return errors.ExportError(path, err)
	}
	return nil
}

func (w *Writer) writeXLSX(path string, headers []string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return errors.ExportError(path, err)
		}
	}

	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return errors.ExportError(path, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return errors.ExportError(path, err)
	}
	return nil
}

func formatSize(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
