package particle

import (
	"github.com/robna/gepard-BlindCorr/domain/core"
)

// Table is an ordered, in-memory pool of particle records. Iteration order is
// the natural order particles entered the pool; the correction engine's
// tie-break depends on it, so mutating operations preserve it.
type Table struct {
	Name      string
	Particles []Particle
}

// NewTable creates a named table from a particle slice.
func NewTable(name string, particles []Particle) *Table {
	return &Table{Name: name, Particles: particles}
}

// Len returns the number of particles in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Particles)
}

// IsEmpty reports whether the table holds no particles.
func (t *Table) IsEmpty() bool { return t.Len() == 0 }

// Clone returns a deep copy sharing no particle storage with the receiver.
// The engine corrects clones so callers retain the pre-correction pool.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	cp := make([]Particle, len(t.Particles))
	copy(cp, t.Particles)
	return &Table{Name: t.Name, Particles: cp}
}

// IDs returns the particle ids in iteration order.
func (t *Table) IDs() []core.ParticleID {
	ids := make([]core.ParticleID, 0, t.Len())
	for _, p := range t.Particles {
		ids = append(ids, p.ID)
	}
	return ids
}

// ContainsID reports whether a particle with the given id is present.
func (t *Table) ContainsID(id core.ParticleID) bool {
	for _, p := range t.Particles {
		if p.ID == id {
			return true
		}
	}
	return false
}

// ByID returns the particle with the given id.
func (t *Table) ByID(id core.ParticleID) (Particle, bool) {
	for _, p := range t.Particles {
		if p.ID == id {
			return p, true
		}
	}
	return Particle{}, false
}

// RemoveID removes the particle with the given id, preserving the order of
// the remaining particles. It reports whether a particle was removed.
func (t *Table) RemoveID(id core.ParticleID) bool {
	for i, p := range t.Particles {
		if p.ID == id {
			t.Particles = append(t.Particles[:i], t.Particles[i+1:]...)
			return true
		}
	}
	return false
}

// Append adds particles to the end of the table.
func (t *Table) Append(particles ...Particle) {
	t.Particles = append(t.Particles, particles...)
}

// SampleGroup is one sample's slice of a table, in pool order.
type SampleGroup struct {
	SampleName string
	Particles  []Particle
}

// GroupBySample partitions the table by sample name. Groups appear in
// first-seen order so grouped correction passes stay deterministic.
func (t *Table) GroupBySample() []SampleGroup {
	var order []string
	byName := make(map[string][]Particle)
	for _, p := range t.Particles {
		if _, seen := byName[p.SampleName]; !seen {
			order = append(order, p.SampleName)
		}
		byName[p.SampleName] = append(byName[p.SampleName], p)
	}
	groups := make([]SampleGroup, 0, len(order))
	for _, name := range order {
		groups = append(groups, SampleGroup{SampleName: name, Particles: byName[name]})
	}
	return groups
}

// DistinctSamples counts the distinct sample names present.
func (t *Table) DistinctSamples() int {
	seen := make(map[string]struct{})
	for _, p := range t.Particles {
		seen[p.SampleName] = struct{}{}
	}
	return len(seen)
}

// ControlPool is an ordered pool of control particles.
type ControlPool struct {
	Name      string
	Particles []ControlParticle
}

// Len returns the number of control particles in the pool.
func (c *ControlPool) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Particles)
}

// IsEmpty reports whether the pool holds no particles.
func (c *ControlPool) IsEmpty() bool { return c.Len() == 0 }

// DistinctSamples counts the distinct control sample names present.
func (c *ControlPool) DistinctSamples() int {
	seen := make(map[string]struct{})
	for _, p := range c.Particles {
		seen[p.SampleName] = struct{}{}
	}
	return len(seen)
}

// Relabel converts a processed table into a control pool by moving each
// particle's value for dim into the control size field. It returns the pool
// and the number of particles that lacked dim and fell back to the geometric
// mean.
func Relabel(t *Table, dim SizeDimension) (*ControlPool, int) {
	pool := &ControlPool{Name: t.Name, Particles: make([]ControlParticle, 0, t.Len())}
	fallbacks := 0
	for _, p := range t.Particles {
		if _, ok := p.SizeValue(dim); !ok {
			fallbacks++
		}
		pool.Particles = append(pool.Particles, NewControl(p, dim))
	}
	return pool, fallbacks
}

// Concat merges control pools into one, preserving per-pool order.
func Concat(name string, pools ...*ControlPool) *ControlPool {
	merged := &ControlPool{Name: name}
	for _, pool := range pools {
		if pool == nil {
			continue
		}
		merged.Particles = append(merged.Particles, pool.Particles...)
	}
	return merged
}
