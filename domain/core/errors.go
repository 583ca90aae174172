package core

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrFileNotFound     = fmt.Errorf("%w: data file", ErrNotFound)
	ErrParticleNotFound = fmt.Errorf("%w: particle", ErrNotFound)

	// Configuration errors
	ErrConfigInvalid  = errors.New("invalid correction configuration")
	ErrCycleDetected  = errors.New("circular correction dependency")
	ErrSelfCorrection = errors.New("file cannot correct itself")

	// Data errors
	ErrMissingColumn = errors.New("required column missing")
	ErrEmptyTable    = errors.New("particle table is empty")

	// Matching contract errors
	ErrEmptyMatchSet = errors.New("closest-candidate query on empty match set")
)

// Error constructors with context
func NewMissingColumnError(file string, columns []string) error {
	return fmt.Errorf("%w: file %s lacks %v", ErrMissingColumn, file, columns)
}

func NewCycleError(path []string) error {
	return fmt.Errorf("%w: %s", ErrCycleDetected, strings.Join(path, " -> "))
}

func NewSelfCorrectionError(node string) error {
	return fmt.Errorf("%w: %s", ErrSelfCorrection, node)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfigInvalid) ||
		errors.Is(err, ErrCycleDetected) ||
		errors.Is(err, ErrSelfCorrection)
}
