package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestXLSXExporterRender(t *testing.T) {
	data := Dataset{
		Sheet:   "CEP Report",
		Headers: []string{"uid", "name", "hours"},
		Rows: [][]string{
			{"24BIT003", "Asha", "12"},
			{"24BIT015", "Ravi", "8"},
		},
	}

	payload, err := NewXLSXExporter().Render(data)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	rows, err := f.GetRows("CEP Report")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"uid", "name", "hours"}, rows[0])
	assert.Equal(t, []string{"24BIT003", "Asha", "12"}, rows[1])
}

func TestXLSXExporterShortRowsPadded(t *testing.T) {
	data := Dataset{
		Headers: []string{"a", "b", "c"},
		Rows:    [][]string{{"only"}},
	}
	payload, err := NewXLSXExporter().Render(data)
	require.NoError(t, err)
	assert.NotEmpty(t, payload)
}

func TestXLSXExporterRequiresHeaders(t *testing.T) {
	_, err := NewXLSXExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestCSVExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"uid", "name"},
		Rows:    [][]string{{"24BIT100", "Meera"}},
	}
	payload, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "uid,name\n24BIT100,Meera\n", string(payload))
}

func TestPDFExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"uid", "name"},
		Rows:    [][]string{{"24BIT100", "Meera"}},
	}
	payload, err := NewPDFExporter().Render(data, "Attendance")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(payload, []byte("%PDF")))
}
