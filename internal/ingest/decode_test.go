package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "csv", Format("report.CSV"))
	assert.Equal(t, "xlsx", Format("a.b.xlsx"))
	assert.Equal(t, "", Format("noext"))
	assert.Equal(t, "", Format("trailing."))
}

func TestValidExtension(t *testing.T) {
	allowed := map[string]bool{"csv": true, "json": true}
	assert.True(t, ValidExtension("data.csv", allowed))
	assert.False(t, ValidExtension("data.exe", allowed))
	assert.False(t, ValidExtension("data", allowed))
}

func TestDecodeUnsupportedFormat(t *testing.T) {
	_, err := Decode(strings.NewReader(""), "pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDecodeCSV(t *testing.T) {
	src := "date,revenue,notes\n2024-01,100,good\n2024-02,200,\n"
	records, err := Decode(strings.NewReader(src), "csv")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"date", "revenue", "notes"}, records[0].Fields())
	assert.Equal(t, "100", records[0].Value("revenue"))
	// empty cells come through as nil
	assert.Nil(t, records[1].Value("notes"))
}

func TestDecodeCSVStripsBOM(t *testing.T) {
	src := "\uFEFFdate,revenue\n2024-01,100\n"
	records, err := decodeCSV(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "revenue"}, records[0].Fields())
}

func TestDecodeJSONArray(t *testing.T) {
	src := `[{"date":"2024-01","revenue":100},{"date":"2024-02","revenue":200}]`
	records, err := Decode(strings.NewReader(src), "json")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"date", "revenue"}, records[0].Fields())
	assert.Equal(t, 100.0, records[0].Value("revenue"))
}

func TestDecodeJSONEnvelope(t *testing.T) {
	src := `{"data":[{"revenue":1},{"revenue":2}],"meta":{"count":2}}`
	records, err := decodeJSON(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, 2.0, records[1].Value("revenue"))
}

func TestDecodeJSONSingleObject(t *testing.T) {
	src := `{"revenue":1,"region":"north"}`
	records, err := decodeJSON(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "north", records[0].Value("region"))
}

func TestDecodeExcel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"date", "revenue"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"2024-01", 100}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"2024-02", 200}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	records, err := Decode(buf, "xlsx")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"date", "revenue"}, records[0].Fields())
	assert.Equal(t, "100", records[0].Value("revenue"))
}
