package importers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "Category, Sub Category 2 ,Linked to,Country,Title,URL,Author,picture-file-name.jpg\n" +
	"Food & Drinks,Cafe,Bali,Indonesia,Sunset Cafe,https://sunset.example.com,Ann,sunset.jpg\n" +
	"Product,Gadgets,,,Travel Adapter,https://shop.example.com/adapter,Bob,adapter.png\n"

func TestLoadTable(t *testing.T) {
	table, err := LoadTable(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []string{
		"Category", "SubCategory2", "Linkedto", "Country", "Title", "URL", "Author", "picture-file-name.jpg",
	}, table.Header)
	require.Len(t, table.Records, 2)

	first := table.Rows[0]
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, "Sunset Cafe", first.Title)
	assert.Equal(t, "https://sunset.example.com", first.URL)
	assert.Equal(t, "Ann", first.Author)
	assert.Equal(t, "Food & Drinks", first.Category)
	assert.Equal(t, "Cafe", first.SubCategory)
	assert.Equal(t, "Bali", first.LinkedTo)
	assert.Equal(t, "Indonesia", first.Country)
	assert.Equal(t, "sunset.jpg", first.Picture)

	assert.Equal(t, 1, table.Rows[1].Index)
	assert.Equal(t, "", table.Rows[1].LinkedTo)
}

func TestLoadTable_ByteOrderMark(t *testing.T) {
	table, err := LoadTable(strings.NewReader("\ufeff" + sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, "Category", table.Header[0])
	assert.Equal(t, "Food & Drinks", table.Rows[0].Category)
}

func TestLoadTable_ShortRows(t *testing.T) {
	csv := "Category,SubCategory2,Linkedto,Country,Title,URL,Author,picture-file-name.jpg\n" +
		"Services,Spa\n"

	table, err := LoadTable(strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "Services", table.Rows[0].Category)
	assert.Equal(t, "", table.Rows[0].Title)
	assert.Equal(t, "", table.Rows[0].Picture)
}

func TestLoadTable_MissingColumn(t *testing.T) {
	csv := "Category,SubCategory2,Linkedto,Country,Title,Author,picture-file-name.jpg\n"

	_, err := LoadTable(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "URL")
}

func TestLoadTable_Empty(t *testing.T) {
	_, err := LoadTable(strings.NewReader(""))
	assert.Error(t, err)
}

func TestLoadTable_HeaderOnly(t *testing.T) {
	table, err := LoadTable(strings.NewReader("Category,SubCategory2,Linkedto,Country,Title,URL,Author,picture-file-name.jpg\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}

func TestTable_LenNil(t *testing.T) {
	var table *Table
	assert.Equal(t, 0, table.Len())
}
