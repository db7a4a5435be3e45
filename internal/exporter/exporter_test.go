package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"smbpulse/internal/dataprocessing"
)

func exportFixture(t *testing.T) *dataprocessing.Table {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "stats.csv")
	require.NoError(t, os.WriteFile(path, []byte(
		"생활밀접업종별(1),생활밀접업종별(2),운영점포수(개)\n"+
			"외식업,한식,\"1,200\"\n"+
			"외식업,중식,300\n"), 0644))

	table, _, err := dataprocessing.NewNormalizer(nil).Load(path)
	require.NoError(t, err)
	return table
}

func TestWriteCSV(t *testing.T) {
	table := exportFixture(t)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, table))

	data := buf.Bytes()
	require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "missing UTF-8 BOM")

	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})))
	rows, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"대분류", "소분류", "점포수"}, rows[0])
	// Coerced numeric value, no thousands separator.
	assert.Equal(t, "1200", rows[1][2])
	assert.Equal(t, "한식", rows[1][1])
}

func TestWriteCSVFile_CreatesDirectories(t *testing.T) {
	table := exportFixture(t)
	path := filepath.Join(t.TempDir(), "nested", "out.csv")

	require.NoError(t, WriteCSVFile(path, table))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "점포수"))
}

func TestWriteXLSX(t *testing.T) {
	table := exportFixture(t)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, table))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("데이터")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"대분류", "소분류", "점포수"}, rows[0])
	assert.Equal(t, "1200", rows[1][2])
}
