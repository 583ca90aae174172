// Package correction defines the records produced by blank/blind correction
// passes and the declarative configuration that drives the workflow.
package correction

import (
	"fmt"
	"strings"
	"time"

	"github.com/robna/gepard-BlindCorr/domain/core"
	"github.com/robna/gepard-BlindCorr/domain/particle"
)

// Kind distinguishes the two correction procedures.
type Kind string

const (
	// KindBlank removes suspected laboratory contamination using a single
	// control file.
	KindBlank Kind = "blank"
	// KindBlind validates method reliability using a synthetic control built
	// from several control files.
	KindBlind Kind = "blind"
)

// Elimination is one successful match-and-remove action. ControlSample is
// populated only for blind-style passes where the synthetic control mixes
// several control samples.
type Elimination struct {
	ControlID     core.ParticleID
	ControlSample string
	EliminatedID  core.ParticleID
	SampleName    string
	Polymer       string
	Color         string
	Shape         string
	SizeDiff      float64
}

// Phenotype returns the eliminated particle's identity triple.
func (e Elimination) Phenotype() particle.Phenotype {
	return particle.Phenotype{Polymer: e.Polymer, Color: e.Color, Shape: e.Shape}
}

// Log is the append-only ordered sequence of eliminations from one
// correction pass.
type Log struct {
	Kind         Kind
	Eliminations []Elimination
}

// NewLog creates an empty log for the given pass kind.
func NewLog(kind Kind) *Log {
	return &Log{Kind: kind}
}

// Append records an elimination at the end of the log.
func (l *Log) Append(e Elimination) {
	l.Eliminations = append(l.Eliminations, e)
}

// Len returns the number of recorded eliminations.
func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Eliminations)
}

// EliminatedIDs returns the eliminated particle ids in log order.
func (l *Log) EliminatedIDs() []core.ParticleID {
	ids := make([]core.ParticleID, 0, l.Len())
	for _, e := range l.Eliminations {
		ids = append(ids, e.EliminatedID)
	}
	return ids
}

// Fingerprint serializes the log into a deterministic hash so identical runs
// can be verified to have produced bit-identical elimination sequences.
func (l *Log) Fingerprint() core.LogHash {
	var b strings.Builder
	for _, e := range l.Eliminations {
		fmt.Fprintf(&b, "%s|%s|%s|%s|%s|%s|%s|%.6f\n",
			e.ControlID, e.ControlSample, e.EliminatedID, e.SampleName,
			e.Polymer, e.Color, e.Shape, e.SizeDiff)
	}
	return core.NewLogHash([]byte(b.String()))
}

// Summary aggregates one pass's elimination log. It is derived from the log
// alone, never by re-matching.
type Summary struct {
	TotalEliminated int
	BySample        map[string]int
	ByControlSample map[string]int
	ByPolymer       map[string]int
	ByColor         map[string]int
	ByShape         map[string]int
	MeanSizeDiff    float64
	MedianSizeDiff  float64
}

// StepResult captures one executed correction step of a workflow run.
type StepResult struct {
	TargetFile        string
	ControlFiles      []string
	Kind              Kind
	OriginalParticles int
	FinalParticles    int
	Eliminated        int
	OutputFile        string
	LogFile           string
	Log               *Log
	LogHash           core.LogHash
}

// RunResult is the terminal output of one workflow execution.
type RunResult struct {
	RunID            core.RunID
	StartedAt        time.Time
	FinishedAt       time.Time
	Steps            []StepResult
	TotalCorrections int
	TotalEliminated  int
}
