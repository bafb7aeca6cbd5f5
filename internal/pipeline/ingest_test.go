package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ucmr-pipeline/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testHeader = strings.Join([]string{
	"PWSID", "PWSName", "FacilityID", "FacilityName", "FacilityWaterType",
	"SamplePointID", "SamplePointType", "CollectionDate", "SampleID",
	"Contaminant", "MRL", "MethodID", "AnalyticalResultsSign",
	"AnalyticalResultValue(µg/L)", "Region", "State", "Size",
}, "\t")

func testRow(pwsid, date, contaminant, mrl, sign, value, region, state string) string {
	return strings.Join([]string{
		pwsid, "Test PWS", "F-1", "Plant 1", "SW",
		"SP-1", "EP", date, "S-1",
		contaminant, mrl, "EPA 200.8", sign,
		value, region, state, "L",
	}, "\t")
}

func writeTSV(t *testing.T, name string, rows ...string) string {
	t.Helper()
	// UCMR4 exports terminate records with a carriage return.
	content := testHeader + "\r" + strings.Join(rows, "\r") + "\r"
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTablesParsesRecords(t *testing.T) {
	path := writeTSV(t, "UCMR4_All_One.txt",
		testRow("CA1234567", "03/15/2018", "germanium", "0.3", "<", "", "9", "CA"),
		testRow("AZ0000042", "04/02/2018", "manganese", "0.4", "", "5.1", "9", "AZ"),
	)

	records, err := LoadTables([]string{path})
	require.NoError(t, err)
	require.Len(t, records, 2)

	nd := records[0]
	assert.Equal(t, "CA1234567", nd.PWSID)
	assert.Equal(t, "germanium", nd.Contaminant)
	assert.True(t, nd.IsNonDetect())
	require.NotNil(t, nd.MRL)
	assert.Equal(t, 0.3, *nd.MRL)
	assert.Nil(t, nd.Value)

	det := records[1]
	assert.False(t, det.IsNonDetect())
	require.NotNil(t, det.Value)
	assert.Equal(t, 5.1, *det.Value)
	assert.Equal(t, "04/02/2018", det.CollectionDate)
}

func TestLoadTablesConcatenates(t *testing.T) {
	a := writeTSV(t, "UCMR4_All_A.txt",
		testRow("CA1", "01/01/2018", "X", "1", "<", "", "9", "CA"))
	b := writeTSV(t, "UCMR4_All_B.txt",
		testRow("CA1", "01/01/2018", "X", "1", "<", "", "9", "CA"),
		testRow("CA2", "01/02/2018", "X", "1", "", "3", "9", "CA"))

	// Duplicate rows across tables are kept; no deduplication.
	records, err := LoadTables([]string{a, b})
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestLoadTablesGlob(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"UCMR4_All_A.txt", "UCMR4_All_B.txt"} {
		content := testHeader + "\r" + testRow("CA1", "01/01/2018", "X", "1", "", "2", "9", "CA") + "\r"
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	records, err := LoadTables([]string{filepath.Join(dir, "UCMR4_All_*.txt")})
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = LoadTables([]string{filepath.Join(dir, "UCMR4_Other_*.txt")})
	require.Error(t, err)
}

func TestLoadTablesSchemaMismatch(t *testing.T) {
	header := strings.ReplaceAll(testHeader, "MRL\t", "")
	content := header + "\r"
	path := filepath.Join(t.TempDir(), "bad.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadTables([]string{path})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrSchemaMismatch)
	assert.Contains(t, err.Error(), "MRL")
}

func TestLoadTablesRejectsNonNumericMRL(t *testing.T) {
	path := writeTSV(t, "bad.txt",
		testRow("CA1", "01/01/2018", "X", "n/a", "<", "", "9", "CA"))
	_, err := LoadTables([]string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MRL")
}

func TestLoadTablesRejectsNegativeMRL(t *testing.T) {
	path := writeTSV(t, "bad.txt",
		testRow("CA1", "01/01/2018", "X", "-1", "<", "", "9", "CA"))
	_, err := LoadTables([]string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "negative MRL")
}

func TestLoadTablesStripsHeaderBOM(t *testing.T) {
	content := "\uFEFF" + testHeader + "\r" +
		testRow("CA1", "01/01/2018", "X", "1", "<", "", "9", "CA") + "\r"
	path := filepath.Join(t.TempDir(), "bom.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := LoadTables([]string{path})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "CA1", records[0].PWSID)
}

func TestLoadTablesCRLFTerminators(t *testing.T) {
	content := testHeader + "\r\n" +
		testRow("CA1", "01/01/2018", "X", "1", "<", "", "9", "CA") + "\r\n"
	path := filepath.Join(t.TempDir(), "crlf.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := LoadTables([]string{path})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}
