package importers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/mrlokans/curator/internal/entities"
)

// Column names of the recommendations table, after whitespace is stripped.
const (
	ColumnCategory    = "Category"
	ColumnSubCategory = "SubCategory2"
	ColumnLinkedTo    = "Linkedto"
	ColumnCountry     = "Country"
	ColumnTitle       = "Title"
	ColumnURL         = "URL"
	ColumnAuthor      = "Author"
	ColumnPicture     = "picture-file-name.jpg"
)

var requiredColumns = []string{
	ColumnCategory,
	ColumnSubCategory,
	ColumnLinkedTo,
	ColumnCountry,
	ColumnTitle,
	ColumnURL,
	ColumnAuthor,
	ColumnPicture,
}

// Table is a parsed recommendations upload.
// Header and Records keep the raw cells for previewing.
type Table struct {
	Header  []string
	Records [][]string
	Rows    []entities.SourceRow
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// LoadTable parses a recommendations CSV. Whitespace is removed from column names
// and each row gets a zero-based index.
func LoadTable(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	headerIndex := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.Join(strings.Fields(strings.TrimPrefix(h, "\ufeff")), "")
		header[i] = name
		headerIndex[name] = i
	}

	for _, h := range requiredColumns {
		if _, ok := headerIndex[h]; !ok {
			return nil, fmt.Errorf("missing required column: %s", h)
		}
	}

	table := &Table{Header: header}

	for index := 0; ; {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", index, err)
		}

		table.Records = append(table.Records, record)
		table.Rows = append(table.Rows, entities.SourceRow{
			Index:       index,
			Title:       getCSVValue(record, headerIndex, ColumnTitle),
			URL:         getCSVValue(record, headerIndex, ColumnURL),
			Author:      getCSVValue(record, headerIndex, ColumnAuthor),
			Category:    getCSVValue(record, headerIndex, ColumnCategory),
			SubCategory: getCSVValue(record, headerIndex, ColumnSubCategory),
			LinkedTo:    getCSVValue(record, headerIndex, ColumnLinkedTo),
			Country:     getCSVValue(record, headerIndex, ColumnCountry),
			Picture:     getCSVValue(record, headerIndex, ColumnPicture),
		})
		index++
	}

	return table, nil
}

func getCSVValue(record []string, headerIndex map[string]int, header string) string {
	if idx, ok := headerIndex[header]; ok && idx < len(record) {
		return record[idx]
	}
	return ""
}
