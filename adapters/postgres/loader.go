// Package postgres loads particle tables from the particle database using
// the SQL column mapping. It serves surveys whose measurements live in a
// shared database rather than per-sample spreadsheet exports.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/jmoiron/sqlx"

	"github.com/robna/gepard-BlindCorr/domain/core"
	"github.com/robna/gepard-BlindCorr/domain/particle"
	"github.com/robna/gepard-BlindCorr/internal"
	"github.com/robna/gepard-BlindCorr/internal/config"
	"github.com/robna/gepard-BlindCorr/internal/errors"
	"github.com/robna/gepard-BlindCorr/ports"
)

// Loader implements ports.TableLoader against a particle table in Postgres.
// The "path" passed to Load is the sample name to select.
type Loader struct {
	db      *sqlx.DB
	table   string
	mapping config.ColumnMapping
	log     *internal.Logger
}

// NewLoader creates a database-backed particle loader.
func NewLoader(db *sqlx.DB, table string, mapping config.ColumnMapping, logger *internal.Logger) ports.TableLoader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Loader{db: db, table: table, mapping: mapping, log: logger.WithPrefix("SQLLoader")}
}

// Load selects all particles of one sample, in stored order.
func (l *Loader) Load(ctx context.Context, sampleName string) (*particle.Table, error) {
	l.log.Info("loading particles for sample %s from table %s", sampleName, l.table)

	query := fmt.Sprintf(
		`SELECT %q, %q, %q, %q, %q, %q, %q, COALESCE(%q, ''), %q FROM %q WHERE %q = $1 ORDER BY %q`,
		l.mapping.ParticleID, l.mapping.SampleName, l.mapping.PolymerType,
		l.mapping.Color, l.mapping.Shape, l.mapping.Size1, l.mapping.Size2,
		l.mapping.LibraryEntry, l.mapping.Size3,
		l.table, l.mapping.SampleName, l.mapping.ParticleID,
	)

	rows, err := l.db.QueryContext(ctx, query, sampleName)
	if err != nil {
		return nil, errors.DataInvalid(sampleName, err)
	}
	defer rows.Close()

	var particles []particle.Particle
	seen := make(map[core.ParticleID]struct{})
	for rows.Next() {
		var (
			id, sample, polymer, color, shape, library string
			size1, size2                               float64
			size3                                      sql.NullFloat64
		)
		if err := rows.Scan(&id, &sample, &polymer, &color, &shape, &size1, &size2, &library, &size3); err != nil {
			return nil, errors.DataInvalid(sampleName, err)
		}

		pid := core.ParticleID(id)
		if _, dup := seen[pid]; dup {
			return nil, errors.DataInvalid(sampleName, fmt.Errorf("duplicate particle id %s", pid))
		}
		seen[pid] = struct{}{}

		s3 := math.NaN()
		if size3.Valid {
			s3 = size3.Float64
		}
		particles = append(particles, particle.Particle{
			ID:               pid,
			SampleName:       sample,
			Polymer:          polymer,
			Color:            color,
			Shape:            shape,
			Size1:            size1,
			Size2:            size2,
			Size3:            s3,
			LibraryEntry:     library,
			FractionAnalysed: math.NaN(),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.DataInvalid(sampleName, err)
	}

	l.log.Info("loaded %d particles for sample %s", len(particles), sampleName)
	return particle.NewTable(sampleName, particles), nil
}
