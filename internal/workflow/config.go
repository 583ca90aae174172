// Package workflow resolves and executes declarative correction runs: a
// YAML file names which datasets correct which, the dependency graph is
// validated and ordered, and each step runs the matched-elimination engine.
package workflow

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/robna/gepard-BlindCorr/domain/particle"
	apperrors "github.com/robna/gepard-BlindCorr/internal/errors"
	"github.com/robna/gepard-BlindCorr/ports"
)

// ControlList is the value side of a correction entry. The YAML form accepts
// either a single scalar path or a sequence of paths.
type ControlList []string

// UnmarshalYAML accepts `target: control` and `target: [c1, c2]` shapes and
// rejects everything else.
func (c *ControlList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		*c = ControlList{single}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := value.Decode(&many); err != nil {
			return err
		}
		*c = ControlList(many)
		return nil
	default:
		return fmt.Errorf("correction value must be a file path or a list of file paths (line %d)", value.Line)
	}
}

// Settings tunes the matching behavior for every step of a run.
type Settings struct {
	SizeMatchingDimension particle.SizeDimension `yaml:"size_matching_dimension"`
	MatchOnSample         *bool                  `yaml:"match_on_sample"`
}

// Output controls where and how corrected tables are written.
type Output struct {
	Directory string             `yaml:"directory"`
	Suffix    string             `yaml:"suffix"`
	Format    ports.OutputFormat `yaml:"format"`
}

// CorrectionConfig is a full workflow declaration.
type CorrectionConfig struct {
	Corrections map[string]ControlList `yaml:"corrections"`
	Settings    Settings               `yaml:"settings"`
	Output      Output                 `yaml:"output"`
}

// LoadCorrectionConfig reads and validates a workflow declaration. All
// configuration errors are surfaced here, before any dataset I/O happens.
func LoadCorrectionConfig(path string) (*CorrectionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &apperrors.AppError{
			Code:    apperrors.CodeConfigInvalid,
			Message: fmt.Sprintf("cannot read workflow config %s", path),
			Cause:   err,
		}
	}

	var cfg CorrectionConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &apperrors.AppError{
			Code:    apperrors.CodeConfigInvalid,
			Message: "workflow config is not valid YAML",
			Cause:   err,
		}
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *CorrectionConfig) applyDefaults() {
	if c.Settings.SizeMatchingDimension == "" {
		c.Settings.SizeMatchingDimension = particle.DimGeomMean
	}
	if c.Output.Suffix == "" {
		c.Output.Suffix = "_corrected"
	}
	if c.Output.Format == "" {
		c.Output.Format = ports.FormatXLSX
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "."
	}
}

// MatchOnSample resolves the sample-name matching policy for single-control
// steps; the historical default keeps sample identity in the match key.
func (c *CorrectionConfig) MatchOnSample() bool {
	if c.Settings.MatchOnSample == nil {
		return true
	}
	return *c.Settings.MatchOnSample
}

// Validate checks structural soundness: at least one correction, no empty
// control lists, a known size dimension and a known output format.
func (c *CorrectionConfig) Validate() error {
	if len(c.Corrections) == 0 {
		return apperrors.ConfigInvalid("workflow config declares no corrections")
	}
	for target, controls := range c.Corrections {
		if target == "" {
			return apperrors.ConfigInvalid("correction target must not be empty")
		}
		if len(controls) == 0 {
			return apperrors.ConfigInvalid(fmt.Sprintf("correction for %s has no control files", target))
		}
		for _, ctrl := range controls {
			if ctrl == "" {
				return apperrors.ConfigInvalid(fmt.Sprintf("correction for %s has an empty control path", target))
			}
		}
	}
	if !c.Settings.SizeMatchingDimension.IsValid() {
		return apperrors.ConfigInvalid(
			fmt.Sprintf("unknown size matching dimension %q", c.Settings.SizeMatchingDimension))
	}
	if !c.Output.Format.IsValid() {
		return apperrors.ConfigInvalid(fmt.Sprintf("unknown output format %q", c.Output.Format))
	}
	return nil
}
