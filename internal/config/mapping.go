package config

// ColumnMapping translates between a source's column headers and the
// standardized field names the loaders produce. Different acquisition
// pipelines label the same measurements differently; loaders consult the
// mapping instead of hard-coding headers.
type ColumnMapping struct {
	ParticleID string
	SampleName string

	PolymerType string
	Color       string
	Shape       string

	Size1 string
	Size2 string
	Size3 string

	// Optional analysis metadata
	LibraryEntry     string
	FractionAnalysed string
}

// ExcelColumnMapping matches the spectroscopy export format.
func ExcelColumnMapping() ColumnMapping {
	return ColumnMapping{
		ParticleID:       "Spectrum ID",
		SampleName:       "Sample",
		PolymerType:      "Polymer Type",
		Color:            "Color",
		Shape:            "Shape",
		Size1:            "Long Size (µm)",
		Size2:            "Short Size (µm)",
		Size3:            "Height (µm)",
		LibraryEntry:     "Library Entry",
		FractionAnalysed: "Fraction Analysed",
	}
}

// SQLColumnMapping matches the particle database schema.
func SQLColumnMapping() ColumnMapping {
	return ColumnMapping{
		ParticleID:       "IDParticles",
		SampleName:       "Sample",
		PolymerType:      "polymer_type",
		Color:            "Colour",
		Shape:            "Shape",
		Size1:            "Size_1_[µm]",
		Size2:            "Size_2_[µm]",
		Size3:            "Size_3_[µm]",
		LibraryEntry:     "library_entry",
		FractionAnalysed: "Fraction_analysed",
	}
}
