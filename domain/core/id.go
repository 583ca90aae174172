package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	// RunID identifies one workflow execution
	RunID ID
	// ParticleID identifies a particle within its origin table. Unlike RunID it
	// is not generated here: it comes from the source data (replica
	// amplification disambiguates duplicates with a numeric suffix before
	// particles reach the correction engine).
	ParticleID string
)

// String conversions for domain IDs
func (id RunID) String() string      { return ID(id).String() }
func (id ParticleID) String() string { return string(id) }

// NewRunID creates a fresh run identifier
func NewRunID() RunID {
	return RunID(NewID())
}

// ParseParticleID parses a string into a ParticleID
func ParseParticleID(s string) (ParticleID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("particle ID cannot be empty")
	}
	return ParticleID(s), nil
}
