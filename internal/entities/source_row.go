package entities

// SourceRow is one row of an uploaded recommendations table.
// It only lives for the duration of a pipeline pass.
type SourceRow struct {
	Index       int
	Title       string
	URL         string
	Author      string
	Category    string
	SubCategory string
	LinkedTo    string
	Country     string
	Picture     string
}
