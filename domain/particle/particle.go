// Package particle defines the in-memory data model for particle-measurement
// records and the pools (tables) the correction engine operates on.
package particle

import (
	"math"

	"github.com/robna/gepard-BlindCorr/domain/core"
)

// SizeDimension names the size measure used for match-difference computation.
type SizeDimension string

const (
	// DimGeomMean is the sentinel for the derived geometric-mean size, the
	// default matching dimension.
	DimGeomMean SizeDimension = "size_geom_mean"
	DimSize1    SizeDimension = "size_1"
	DimSize2    SizeDimension = "size_2"
	DimSize3    SizeDimension = "size_3"
)

// IsValid reports whether the dimension is one of the recognized values.
func (d SizeDimension) IsValid() bool {
	switch d {
	case DimGeomMean, DimSize1, DimSize2, DimSize3:
		return true
	}
	return false
}

// geomMeanFloor prevents a zero size product from collapsing the derived
// size to zero.
const geomMeanFloor = 0.01

// Phenotype is the (polymer type, color, shape) identity triple. It is used
// only as an equality key; there are no ordering or distance semantics.
type Phenotype struct {
	Polymer string
	Color   string
	Shape   string
}

// Particle is one measured particle record after preprocessing.
type Particle struct {
	ID         core.ParticleID
	SampleName string
	Polymer    string
	Color      string
	Shape      string

	// Linear size measurements in micrometers. Size3 is NaN when the source
	// data carries only two dimensions.
	Size1 float64
	Size2 float64
	Size3 float64

	// SizeGeomMean is sqrt(max(Size1*Size2, floor)), computed by the
	// preprocessing pipeline.
	SizeGeomMean float64

	// LibraryEntry is the spectral-library identification, checked against
	// the polymer exclusion list alongside the polymer type. Empty when the
	// source lacks the column.
	LibraryEntry string

	// FractionAnalysed is the analysed share of the whole sample; replica
	// amplification extrapolates by 1/FractionAnalysed. NaN when absent,
	// which amplification treats as 1 (whole sample analysed).
	FractionAnalysed float64
}

// Phenotype returns the particle's identity triple.
func (p Particle) Phenotype() Phenotype {
	return Phenotype{Polymer: p.Polymer, Color: p.Color, Shape: p.Shape}
}

// GeomMean derives the geometric-mean size from two linear measurements.
func GeomMean(size1, size2 float64) float64 {
	return math.Sqrt(math.Max(size1*size2, geomMeanFloor))
}

// SizeValue returns the particle's value for the given dimension. The second
// return is false when the dimension is absent on this particle (e.g. a
// two-dimensional record asked for size_3), in which case the caller falls
// back to the geometric mean.
func (p Particle) SizeValue(dim SizeDimension) (float64, bool) {
	switch dim {
	case DimGeomMean:
		return p.SizeGeomMean, true
	case DimSize1:
		if math.IsNaN(p.Size1) {
			return 0, false
		}
		return p.Size1, true
	case DimSize2:
		if math.IsNaN(p.Size2) {
			return 0, false
		}
		return p.Size2, true
	case DimSize3:
		if math.IsNaN(p.Size3) {
			return 0, false
		}
		return p.Size3, true
	}
	return 0, false
}

// ControlParticle is a blank or blind reference particle. ControlSize holds
// the relabeled matching-dimension value so that control and environmental
// size columns stay structurally distinct and self-matches are impossible.
type ControlParticle struct {
	Particle
	ControlSize float64
}

// NewControl relabels a processed particle's value for dim into the control
// size field. Absent dimensions fall back to the geometric mean; the caller
// is responsible for logging that fallback.
func NewControl(p Particle, dim SizeDimension) ControlParticle {
	size, ok := p.SizeValue(dim)
	if !ok {
		size = p.SizeGeomMean
	}
	return ControlParticle{Particle: p, ControlSize: size}
}
