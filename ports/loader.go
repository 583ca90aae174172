package ports

import (
	"context"

	"github.com/robna/gepard-BlindCorr/domain/particle"
)

// TableLoader produces a raw particle table from a named source file. The
// returned table has the sample-name column populated (the file stem when the
// source carries none) and the required columns validated; a missing or
// unreadable file is a fatal error for that load.
type TableLoader interface {
	Load(ctx context.Context, path string) (*particle.Table, error)
}

// Preprocessor turns a raw particle table into the processed pool the
// correction engine operates on: excluded polymers removed, replica
// amplification applied, geometric-mean size computed, size-range filtering
// applied and color/shape categories standardized.
type Preprocessor interface {
	Process(raw *particle.Table) (*particle.Table, error)
}
