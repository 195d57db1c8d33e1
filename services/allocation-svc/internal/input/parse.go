package input

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"netalloc/pkg/apperror"
)

// Format формат входного файла
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatXLSX Format = "xlsx"
)

// Листы книги XLSX
const (
	SheetCapacity = "Capacity"
	SheetDemands  = "Demands"
)

// FormatFromPath определяет формат по расширению файла
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", apperror.Newf(apperror.CodeUnsupportedFormat,
			"unsupported network file extension %q", filepath.Ext(path))
	}
}

// LoadFile читает сеть из файла. Если в документе нет имени, берётся имя файла.
func LoadFile(path string) (*Network, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidArgument, "failed to read network file").
			WithDetails("path", path)
	}

	net, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	if net.Name == "" {
		net.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return net, nil
}

// Parse разбирает сеть из data в указанном формате
func Parse(data []byte, format Format) (*Network, error) {
	doc, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return FromDocument(doc)
}

// Decode читает документ без проверки значений
func Decode(data []byte, format Format) (*Document, error) {
	doc := &Document{}

	switch format {
	case FormatYAML, FormatJSON:
		// JSON является подмножеством YAML
		if err := yaml.Unmarshal(data, doc); err != nil {
			return nil, decodeError(format, err)
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), doc); err != nil {
			return nil, decodeError(format, err)
		}
	case FormatXLSX:
		return decodeWorkbook(data)
	default:
		return nil, apperror.Newf(apperror.CodeUnsupportedFormat, "unsupported network format %q", format)
	}

	return doc, nil
}

func decodeError(format Format, err error) error {
	return apperror.Wrap(err, apperror.CodeInvalidArgument,
		fmt.Sprintf("failed to decode %s network: %v", format, err))
}

// decodeWorkbook читает книгу: лист Capacity целиком матрица,
// лист Demands строки source, destination, bandwidth под строкой заголовка.
func decodeWorkbook(data []byte) (*Document, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, decodeError(FormatXLSX, err)
	}
	defer f.Close()

	capRows, err := f.GetRows(SheetCapacity)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidTopology,
			fmt.Sprintf("sheet %q not found", SheetCapacity))
	}

	// GetRows отрезает пустые ячейки в конце строки и пустые строки в конце
	// листа, поэтому размер матрицы берём по самой длинной стороне
	n := len(capRows)
	for _, row := range capRows {
		n = max(n, len(row))
	}

	doc := &Document{Capacity: make([][]any, n)}
	for i := range doc.Capacity {
		cells := make([]any, n)
		if i < len(capRows) {
			for j, v := range capRows[i] {
				cells[j] = v
			}
		}
		doc.Capacity[i] = cells
	}

	demandRows, err := f.GetRows(SheetDemands)
	if err != nil {
		return doc, nil
	}
	if len(demandRows) > 0 {
		demandRows = demandRows[1:]
	}

	for i, row := range demandRows {
		if isBlankRow(row) {
			continue
		}
		if len(row) < 3 {
			return nil, apperror.Newf(apperror.CodeInvalidDemand,
				"demand row %d must have source, destination and bandwidth", i+2).
				WithField(fmt.Sprintf("demands[%d]", i))
		}

		src, err := strconv.Atoi(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, apperror.NewWithField(apperror.CodeInvalidDemand,
				fmt.Sprintf("invalid source %q", row[0]), fmt.Sprintf("demands[%d].source", i))
		}
		dst, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			return nil, apperror.NewWithField(apperror.CodeInvalidDemand,
				fmt.Sprintf("invalid destination %q", row[1]), fmt.Sprintf("demands[%d].destination", i))
		}

		doc.Demands = append(doc.Demands, DemandEntry{
			Source:      src,
			Destination: dst,
			Bandwidth:   row[2],
		})
	}

	return doc, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Encode сериализует сеть в текстовый формат
func Encode(n *Network, format Format) ([]byte, error) {
	doc := n.ToDocument()

	switch format {
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, apperror.Wrap(err, apperror.CodeInternal, "failed to encode toml network")
		}
		return buf.Bytes(), nil
	default:
		return nil, apperror.Newf(apperror.CodeUnsupportedFormat, "cannot encode network as %q", format)
	}
}
