package exporter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnmail/internal/dataset"
	"churnmail/internal/shared/testutil"
)

func TestCSVWriter_Write(t *testing.T) {
	table := exportTable(t,
		[]string{dataset.ColumnPayer, dataset.ColumnCategory},
		[][]string{
			{"109", "PREÇO CARO CUSTO BENEFÍCIO"},
			{dataset.NumericNA, "QUEBRA CONSTANTE/FERRUGEM/ BARULHO"},
			{"107", "contains, comma"},
		})

	logger, _ := testutil.NewTestLogger(t)
	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(logger).Write(&buf, table))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}), "expected UTF-8 BOM prefix")

	records, err := csv.NewReader(bytes.NewReader(raw[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{dataset.ColumnPayer, dataset.ColumnCategory}, records[0])
	assert.Equal(t, []string{"109", "PREÇO CARO CUSTO BENEFÍCIO"}, records[1])

	// Coercion markers become empty cells, commas survive quoting.
	assert.Equal(t, []string{"", "QUEBRA CONSTANTE/FERRUGEM/ BARULHO"}, records[2])
	assert.Equal(t, []string{"107", "contains, comma"}, records[3])
	assert.Contains(t, string(raw), `"contains, comma"`)
}

func TestCSVWriter_WriteWithOptions_NoBOM(t *testing.T) {
	table := exportTable(t, []string{"A"}, [][]string{{"1"}})

	logger, _ := testutil.NewTestLogger(t)
	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(logger).WriteWithOptions(&buf, table, WriteOptions{}))

	assert.True(t, strings.HasPrefix(buf.String(), "A\n"))
}

func TestCSVWriter_Write_EmptyTable(t *testing.T) {
	table := exportTable(t, []string{"A", "B"}, nil)

	logger, _ := testutil.NewTestLogger(t)
	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(logger).WriteWithOptions(&buf, table, WriteOptions{}))

	assert.Equal(t, "A,B\n", buf.String())
}
