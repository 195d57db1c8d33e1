package input

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"netalloc/pkg/apperror"
	"netalloc/pkg/domain"
)

const yamlNetwork = `
name: triangle
capacity:
  - [0, 10, ""]
  - ["10", 0, 5]
  - [null, 5, 0]
demands:
  - {source: 1, destination: 3, bandwidth: 4}
  - {source: 2, destination: 3, bandwidth: 0}
  - {source: 3, destination: 1, bandwidth: "2.5"}
`

func TestParse_YAML(t *testing.T) {
	net, err := Parse([]byte(yamlNetwork), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, "triangle", net.Name)
	assert.Equal(t, domain.IndexBaseOne, net.IndexBase)
	assert.Equal(t, [][]float64{{0, 10, 0}, {10, 0, 5}, {0, 5, 0}}, net.Capacity)

	require.Len(t, net.Demands, 2)
	assert.Equal(t, domain.Demand{Source: 0, Destination: 2, Bandwidth: 4}, net.Demands[0])
	assert.Equal(t, domain.Demand{Source: 2, Destination: 0, Bandwidth: 2.5}, net.Demands[1])

	require.Len(t, net.Dropped, 1)
	assert.Equal(t, 2, net.Dropped[0].Position)
	assert.Equal(t, 2, net.Dropped[0].Source)
}

func TestParse_JSONZeroBased(t *testing.T) {
	data := `{"index_base": 0, "capacity": [[0, 3], [3, 0]], "demands": [{"source": 0, "destination": 1, "bandwidth": 2}]}`

	net, err := Parse([]byte(data), FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, domain.IndexBaseZero, net.IndexBase)
	assert.Equal(t, []domain.Demand{{Source: 0, Destination: 1, Bandwidth: 2}}, net.Demands)
}

func TestParse_TOML(t *testing.T) {
	data := `
name = "line"
capacity = [[0, 7.5], [7.5, ""]]

[[demands]]
source = 1
destination = 2
bandwidth = 3

[[demands]]
source = 2
destination = 1
bandwidth = -1
`
	net, err := Parse([]byte(data), FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, "line", net.Name)
	assert.Equal(t, [][]float64{{0, 7.5}, {7.5, 0}}, net.Capacity)
	assert.Equal(t, []domain.Demand{{Source: 0, Destination: 1, Bandwidth: 3}}, net.Demands)
	require.Len(t, net.Dropped, 1)
	assert.Equal(t, -1.0, net.Dropped[0].Bandwidth)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantCode  apperror.ErrorCode
		wantField string
	}{
		{
			name:      "unparseable cell",
			data:      "capacity: [[0, abc], [1, 0]]",
			wantCode:  apperror.CodeInvalidCapacity,
			wantField: "capacity[0][1]",
		},
		{
			name:      "negative cell",
			data:      "capacity: [[0, 1], [-2, 0]]",
			wantCode:  apperror.CodeInvalidCapacity,
			wantField: "capacity[1][0]",
		},
		{
			name:      "infinite cell",
			data:      "capacity: [[0, .inf], [1, 0]]",
			wantCode:  apperror.CodeInvalidCapacity,
			wantField: "capacity[0][1]",
		},
		{
			name:      "ragged matrix",
			data:      "capacity: [[0, 1], [1]]",
			wantCode:  apperror.CodeInvalidTopology,
			wantField: "capacity[1]",
		},
		{
			name:      "bad bandwidth",
			data:      "capacity: [[0, 1], [1, 0]]\ndemands: [{source: 1, destination: 2, bandwidth: lots}]",
			wantCode:  apperror.CodeInvalidDemand,
			wantField: "demands[0].bandwidth",
		},
		{
			name:      "bad index base",
			data:      "index_base: 2\ncapacity: []",
			wantCode:  apperror.CodeInvalidArgument,
			wantField: "index_base",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), FormatYAML)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperror.Code(err))

			var appErr *apperror.Error
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.wantField, appErr.Field)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	_, err := Parse([]byte("capacity: [[0, 1"), FormatYAML)
	assert.Equal(t, apperror.CodeInvalidArgument, apperror.Code(err))

	_, err = Parse([]byte("x"), Format("ini"))
	assert.Equal(t, apperror.CodeUnsupportedFormat, apperror.Code(err))
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"net.yaml":  FormatYAML,
		"net.YML":   FormatYAML,
		"net.json":  FormatJSON,
		"net.toml":  FormatTOML,
		"net.xlsx":  FormatXLSX,
		"/a/b.json": FormatJSON,
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFromPath("net.csv")
	assert.True(t, apperror.Is(err, apperror.CodeUnsupportedFormat))
}

func TestLoadFile_UsesFileName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backbone.yaml")
	require.NoError(t, os.WriteFile(path, []byte("capacity: [[0, 1], [1, 0]]"), 0o644))

	net, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "backbone", net.Name)
	assert.Empty(t, net.Demands)
}

func TestParse_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", SheetCapacity))
	rows := [][]any{
		{0, 12, nil},
		{12, 0, 4},
		{nil, 4, nil},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(SheetCapacity, cell, &row))
	}

	_, err := f.NewSheet(SheetDemands)
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow(SheetDemands, "A1", &[]any{"source", "destination", "bandwidth"}))
	require.NoError(t, f.SetSheetRow(SheetDemands, "A2", &[]any{1, 3, 3}))
	require.NoError(t, f.SetSheetRow(SheetDemands, "A3", &[]any{3, 2, 0}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	net, err := Parse(buf.Bytes(), FormatXLSX)
	require.NoError(t, err)

	assert.Equal(t, [][]float64{{0, 12, 0}, {12, 0, 4}, {0, 4, 0}}, net.Capacity)
	assert.Equal(t, []domain.Demand{{Source: 0, Destination: 2, Bandwidth: 3}}, net.Demands)
	assert.Len(t, net.Dropped, 1)
}

func TestParse_XLSXTrailingBlankRow(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", SheetCapacity))
	require.NoError(t, f.SetSheetRow(SheetCapacity, "A1", &[]any{"", 10, ""}))
	require.NoError(t, f.SetSheetRow(SheetCapacity, "A2", &[]any{"", "", 10}))
	// третья строка пустая: узел 3 без исходящих каналов

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	net, err := Parse(buf.Bytes(), FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{0, 10, 0}, {0, 0, 10}, {0, 0, 0}}, net.Capacity)
	assert.Empty(t, net.Demands)
}

func TestEncode_RoundTrip(t *testing.T) {
	for _, format := range []Format{FormatYAML, FormatTOML} {
		t.Run(string(format), func(t *testing.T) {
			data, err := Encode(Example(), format)
			require.NoError(t, err)

			net, err := Parse(data, format)
			require.NoError(t, err)
			assert.Equal(t, Example().Capacity, net.Capacity)
			assert.Equal(t, Example().Demands, net.Demands)
		})
	}
}

func TestExample(t *testing.T) {
	net := Example()

	topo, err := net.Topology()
	require.NoError(t, err)

	assert.Equal(t, 5, topo.Nodes())
	assert.Equal(t, 5, topo.TotalLinks())
	assert.Equal(t, 86.0, topo.TotalCapacity())
	assert.True(t, topo.Connected())
	assert.Equal(t, 12.0, topo.OriginalAt(1, 0))
}

func TestDiagnostics(t *testing.T) {
	net := &Network{
		Capacity: [][]float64{
			{0, 1, 0},
			{1, 0, 0},
			{0, 0, 0},
		},
		Demands: []domain.Demand{
			{Source: 0, Destination: 1, Bandwidth: 1},
			{Source: 0, Destination: 2, Bandwidth: 1},
			{Source: 1, Destination: 1, Bandwidth: 1},
			{Source: 5, Destination: 1, Bandwidth: 1},
			{Source: 0, Destination: -1, Bandwidth: 1},
		},
	}

	report, err := Diagnostics(net)
	require.NoError(t, err)

	assert.False(t, report.Connected)
	assert.Equal(t, 1, report.Links)
	assert.Equal(t, 4, report.Unreachable)

	reasons := make([]string, len(report.Demands))
	for i, d := range report.Demands {
		reasons[i] = d.Reason
	}
	assert.Equal(t, []string{"", ReasonNoPath, ReasonSameEndpoints, ReasonSourceOutOfRange, ReasonDestinationOutOfRange}, reasons)
	assert.True(t, report.Demands[0].Reachable)
}
