// Package excel loads particle tables from spreadsheet and delimited-text
// files and writes corrected tables and elimination logs back out.
package excel

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/robna/gepard-BlindCorr/domain/core"
	"github.com/robna/gepard-BlindCorr/domain/particle"
	"github.com/robna/gepard-BlindCorr/internal"
	"github.com/robna/gepard-BlindCorr/internal/config"
	"github.com/robna/gepard-BlindCorr/internal/errors"
	"github.com/robna/gepard-BlindCorr/ports"
)

// Loader implements ports.TableLoader for xlsx and csv particle files.
type Loader struct {
	mapping config.ColumnMapping
	log     *internal.Logger
}

// NewLoader creates a loader using the given column mapping.
func NewLoader(mapping config.ColumnMapping, logger *internal.Logger) ports.TableLoader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Loader{mapping: mapping, log: logger.WithPrefix("Loader")}
}

// Load reads one particle file into a Table. The sample-name column is
// populated from the file when present, otherwise from the filename stem.
func (l *Loader) Load(_ context.Context, path string) (*particle.Table, error) {
	l.log.Info("loading particle data from %s", path)

	data, err := NewDataReader(path).ReadData()
	if err != nil {
		return nil, errors.DataInvalid(path, err)
	}

	if err := l.validateColumns(path, data); err != nil {
		return nil, err
	}

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	hasSize3 := data.HasColumn(l.mapping.Size3)

	particles := make([]particle.Particle, 0, len(data.Rows))
	seen := make(map[core.ParticleID]struct{}, len(data.Rows))
	for i, row := range data.Rows {
		p, err := l.mapRow(row, stem, hasSize3)
		if err != nil {
			return nil, errors.DataInvalid(path, fmt.Errorf("row %d: %w", i+2, err))
		}
		if _, dup := seen[p.ID]; dup {
			return nil, errors.DataInvalid(path, fmt.Errorf("duplicate particle id %s", p.ID))
		}
		seen[p.ID] = struct{}{}
		particles = append(particles, p)
	}

	l.log.Info("loaded %d particles from sample file %s", len(particles), stem)
	return particle.NewTable(path, particles), nil
}

// validateColumns checks the required columns are present, reporting the
// missing ones by name so the user can fix the source.
func (l *Loader) validateColumns(path string, data *FileData) error {
	required := []string{
		l.mapping.ParticleID,
		l.mapping.PolymerType,
		l.mapping.Color,
		l.mapping.Shape,
		l.mapping.Size1,
		l.mapping.Size2,
	}

	var missing []string
	for _, col := range required {
		if !data.HasColumn(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return errors.DataInvalid(path, core.NewMissingColumnError(path, missing))
	}
	return nil
}

func (l *Loader) mapRow(row RawRowData, stem string, hasSize3 bool) (particle.Particle, error) {
	id := row[l.mapping.ParticleID]
	if id == "" {
		return particle.Particle{}, fmt.Errorf("empty particle id")
	}

	sample := row[l.mapping.SampleName]
	if sample == "" {
		sample = stem
	}

	size1, err := parseSize(row[l.mapping.Size1], l.mapping.Size1)
	if err != nil {
		return particle.Particle{}, err
	}
	size2, err := parseSize(row[l.mapping.Size2], l.mapping.Size2)
	if err != nil {
		return particle.Particle{}, err
	}

	size3 := math.NaN()
	if hasSize3 && row[l.mapping.Size3] != "" {
		size3, err = parseSize(row[l.mapping.Size3], l.mapping.Size3)
		if err != nil {
			return particle.Particle{}, err
		}
	}

	fraction := math.NaN()
	if raw := row[l.mapping.FractionAnalysed]; raw != "" {
		fraction, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return particle.Particle{}, fmt.Errorf("invalid fraction %q in column %s", raw, l.mapping.FractionAnalysed)
		}
	}

	return particle.Particle{
		ID:               core.ParticleID(id),
		SampleName:       sample,
		Polymer:          row[l.mapping.PolymerType],
		Color:            row[l.mapping.Color],
		Shape:            row[l.mapping.Shape],
		Size1:            size1,
		Size2:            size2,
		Size3:            size3,
		LibraryEntry:     row[l.mapping.LibraryEntry],
		FractionAnalysed: fraction,
	}, nil
}

func parseSize(value, column string) (float64, error) {
	if value == "" {
		return 0, fmt.Errorf("empty value in column %s", column)
	}
	size, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q in column %s", value, column)
	}
	if size < 0 {
		return 0, fmt.Errorf("negative size %q in column %s", value, column)
	}
	return size, nil
}
