package ports

import (
	"context"

	"github.com/robna/gepard-BlindCorr/domain/correction"
	"github.com/robna/gepard-BlindCorr/domain/particle"
)

// OutputFormat enumerates the supported export formats.
type OutputFormat string

const (
	// FormatXLSX writes a tabular spreadsheet.
	FormatXLSX OutputFormat = "xlsx"
	// FormatCSV writes delimited text.
	FormatCSV OutputFormat = "csv"
)

// IsValid reports whether the format is one of the enumerated values.
func (f OutputFormat) IsValid() bool {
	return f == FormatXLSX || f == FormatCSV
}

// Extension returns the file extension for the format.
func (f OutputFormat) Extension() string { return string(f) }

// TableExporter persists corrected particle tables and elimination logs as
// tabular files.
type TableExporter interface {
	ExportTable(ctx context.Context, t *particle.Table, path string, format OutputFormat) error
	ExportLog(ctx context.Context, log *correction.Log, path string, format OutputFormat) error
}
