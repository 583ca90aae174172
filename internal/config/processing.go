package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/robna/gepard-BlindCorr/domain/particle"
	"github.com/robna/gepard-BlindCorr/internal/errors"
)

// ProcessingConfig holds the per-particle preprocessing parameters and the
// matching policy. The categorical standardization tables are plain
// configuration data, never scattered literals.
type ProcessingConfig struct {
	// Size filtering, applied half-open: [Highpass, Lowpass)
	SizeFilterDimension particle.SizeDimension `yaml:"size_filter_dimension"`
	SizeFilterHighpass  float64                `yaml:"size_filter_highpass"`
	SizeFilterLowpass   float64                `yaml:"size_filter_lowpass"`

	// SizeMatchingDimension is the size field used for difference
	// computation; DimGeomMean is the sentinel default.
	SizeMatchingDimension particle.SizeDimension `yaml:"size_matching_dimension"`

	// MatchOnSample keys blank-style matching on sample name in addition to
	// the phenotype triple. The two historical blank variants disagree here;
	// the policy is explicit so audit logs can match either lineage.
	MatchOnSample bool `yaml:"match_on_sample"`

	// Polymer exclusion list (contamination and dyes)
	ExcludedPolymers []string `yaml:"excluded_polymers"`

	// Categorical synonym tables
	ColorStandardization map[string]string `yaml:"color_standardization"`
	ShapeStandardization map[string]string `yaml:"shape_standardization"`

	// Sample identification patterns
	BlankSamplePatterns []string `yaml:"blank_sample_patterns"`
	BlindSamplePatterns []string `yaml:"blind_sample_patterns"`
}

// DefaultProcessingConfig returns the standard survey configuration.
func DefaultProcessingConfig() *ProcessingConfig {
	return &ProcessingConfig{
		SizeFilterDimension:   particle.DimSize1,
		SizeFilterHighpass:    50.0,
		SizeFilterLowpass:     5000.0,
		SizeMatchingDimension: particle.DimGeomMean,
		MatchOnSample:         true,
		ExcludedPolymers: []string{
			"Poly (tetrafluoro ethylene)",
			"PV23",
			"Parafilm",
			"PR101",
			"PB15",
			"PW6",
			"PBr29",
			"PY17based",
			"PY74",
			"PB15 + PV23",
			"PV23 + PB15",
			"PB15 + TiO2",
			"PB23 + PY17based",
			"Parafilm/PE",
			"PB15+PY17",
			"PY17+PB15",
			"PV23+PB15+TiO2",
			"PB15+TiO2",
			"TiO2+PB15",
			"PB15+PV23",
		},
		ColorStandardization: map[string]string{
			"transparent":      "unspecific",
			"undetermined":     "unspecific",
			"white":            "unspecific",
			"non-determinable": "unspecific",
			"grey":             "unspecific",
			"brown":            "unspecific",
			"black":            "unspecific",
			"violet":           "blue",
		},
		ShapeStandardization: map[string]string{
			"spherule":     "irregular",
			"flake":        "irregular",
			"foam":         "irregular",
			"granule":      "irregular",
			"undetermined": "irregular",
		},
		BlankSamplePatterns: []string{"blank", "Blank", "BLANK"},
		BlindSamplePatterns: []string{"blind", "Blind", "BLIND"},
	}
}

// LoadProcessingConfig reads a ProcessingConfig from a YAML file, filling
// unset fields from the defaults.
func LoadProcessingConfig(path string) (*ProcessingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read processing config %s", path)
	}

	cfg := DefaultProcessingConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.ConfigInvalid("malformed processing config " + path + ": " + err.Error())
	}

	if !cfg.SizeMatchingDimension.IsValid() {
		return nil, errors.ConfigInvalid("unknown size_matching_dimension: " + string(cfg.SizeMatchingDimension))
	}
	if !cfg.SizeFilterDimension.IsValid() {
		return nil, errors.ConfigInvalid("unknown size_filter_dimension: " + string(cfg.SizeFilterDimension))
	}

	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *ProcessingConfig) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "failed to marshal processing config")
	}
	return os.WriteFile(path, data, 0o644)
}
