package workorder

// FieldSource is where a field value came from. Priority is
// manual > csv > excel.
type FieldSource string

const (
	SourceManual FieldSource = "manual"
	SourceCSV    FieldSource = "csv"
	SourceExcel  FieldSource = "excel"
)

func (s FieldSource) Rank() int {
	switch s {
	case SourceManual:
		return 3
	case SourceCSV:
		return 2
	case SourceExcel:
		return 1
	default:
		return 0
	}
}

func (s FieldSource) Valid() bool {
	return s.Rank() > 0
}

// CanOverwrite reports whether a write from s may replace a value that came
// from current.
func (s FieldSource) CanOverwrite(current FieldSource) bool {
	return s.Rank() >= current.Rank()
}
