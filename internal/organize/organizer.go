// Package organize sorts raw dataset files into per-type directories so
// workflow declarations can reference controls by predictable paths.
package organize

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/robna/gepard-BlindCorr/internal"
	"github.com/robna/gepard-BlindCorr/internal/config"
	apperrors "github.com/robna/gepard-BlindCorr/internal/errors"
)

// Move is one planned file relocation.
type Move struct {
	Source string
	Dest   string
	Type   string
}

const (
	typeEnvironmental = "environmental"
	typeBlank         = "blank"
	typeBlind         = "blind"
)

// Organizer plans and executes sorting of dataset files by sample type,
// inferred from file names via the configured blank and blind patterns.
type Organizer struct {
	cfg *config.ProcessingConfig
	log *internal.Logger
}

// NewOrganizer creates a file organizer.
func NewOrganizer(cfg *config.ProcessingConfig, logger *internal.Logger) *Organizer {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Organizer{cfg: cfg, log: logger.WithPrefix("Organizer")}
}

// Plan scans dir for dataset files and returns the moves that would sort
// them into environmental/, blank/ and blind/ subdirectories. Files already
// inside those subdirectories are left alone.
func (o *Organizer) Plan(dir string) ([]Move, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.Wrapf(err, "cannot scan directory %s", dir)
	}

	var moves []Move
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".xlsx" && ext != ".csv" {
			continue
		}
		fileType := o.classify(name)
		moves = append(moves, Move{
			Source: filepath.Join(dir, name),
			Dest:   filepath.Join(dir, fileType, name),
			Type:   fileType,
		})
	}
	sort.Slice(moves, func(i, j int) bool { return moves[i].Source < moves[j].Source })
	return moves, nil
}

// classify infers the sample type from the file name. Blind patterns win
// over blank patterns, mirroring how sample names are classified during
// processing.
func (o *Organizer) classify(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	fileType := typeEnvironmental
	for _, pattern := range o.cfg.BlankSamplePatterns {
		if strings.Contains(stem, pattern) {
			fileType = typeBlank
			break
		}
	}
	for _, pattern := range o.cfg.BlindSamplePatterns {
		if strings.Contains(stem, pattern) {
			fileType = typeBlind
			break
		}
	}
	return fileType
}

// Apply executes a move plan. With dryRun set it only logs what would
// happen.
func (o *Organizer) Apply(moves []Move, dryRun bool) error {
	if dryRun {
		for _, m := range moves {
			o.log.Info("would move %s to %s", m.Source, m.Dest)
		}
		return nil
	}

	for _, m := range moves {
		if err := os.MkdirAll(filepath.Dir(m.Dest), 0o755); err != nil {
			return apperrors.Wrapf(err, "cannot create directory for %s", m.Dest)
		}
		if _, err := os.Stat(m.Dest); err == nil {
			return apperrors.ValidationError(fmt.Sprintf("destination already exists: %s", m.Dest))
		}
		if err := os.Rename(m.Source, m.Dest); err != nil {
			return apperrors.Wrapf(err, "cannot move %s", m.Source)
		}
		o.log.Info("moved %s to %s/", filepath.Base(m.Source), m.Type)
	}
	return nil
}
