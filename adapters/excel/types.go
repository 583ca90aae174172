package excel

// RawRowData maps column headers to cell values for one spreadsheet row
type RawRowData map[string]string

// FileData is the header-indexed content of one spreadsheet or CSV file
type FileData struct {
	Headers []string
	Rows    []RawRowData
}

// HasColumn reports whether the file carries the given header
func (d *FileData) HasColumn(name string) bool {
	for _, h := range d.Headers {
		if h == name {
			return true
		}
	}
	return false
}
