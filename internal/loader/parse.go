package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
	"github.com/xuri/excelize/v2"
)

const parquetBatchRows = 256

func parse(r io.Reader, format Format) (*Table, error) {
	switch format {
	case FormatCSV:
		return parseCSV(r)
	case FormatExcel:
		return parseExcel(r)
	case FormatParquet:
		return parseParquet(r)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

func parseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty csv file")
	}
	return newTable(records[0], records[1:])
}

// parseExcel reads the first sheet of a workbook. The first row is the header. Cells
// are read as stored values rather than display text, and date-formatted serials
// become "2006-01-02 15:04:05" timestamps.
func parseExcel(r io.Reader) (*Table, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = workbook.Close() }()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	sheet := sheets[0]
	rows, err := workbook.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	dates := newExcelDates(workbook)
	for i := 1; i < len(rows); i++ {
		for j, raw := range rows[i] {
			if strings.TrimSpace(raw) == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			value, err := dates.convert(sheet, cell, raw)
			if err != nil {
				return nil, fmt.Errorf("read cell %s!%s: %w", sheet, cell, err)
			}
			rows[i][j] = value
		}
	}
	return newTable(rows[0], rows[1:])
}

const excelTimeLayout = "2006-01-02 15:04:05"

// excelDates caches, per style index, whether a cell's number format renders a date.
type excelDates struct {
	workbook *excelize.File
	date1904 bool
	styles   map[int]bool
}

func newExcelDates(workbook *excelize.File) *excelDates {
	d := &excelDates{workbook: workbook, styles: map[int]bool{}}
	if props, err := workbook.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}
	return d
}

func (d *excelDates) convert(sheet, cell, raw string) (string, error) {
	styleID, err := d.workbook.GetCellStyle(sheet, cell)
	if err != nil {
		return "", err
	}
	isDate, ok := d.styles[styleID]
	if !ok {
		style, err := d.workbook.GetStyle(styleID)
		if err != nil {
			return "", err
		}
		isDate = isDateStyle(style)
		d.styles[styleID] = isDate
	}
	if !isDate {
		return raw, nil
	}
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return raw, nil
	}
	t, err := excelize.ExcelDateToTime(serial, d.date1904)
	if err != nil {
		return raw, nil
	}
	return t.Format(excelTimeLayout), nil
}

// Built-in number formats that display dates or times.
var builtinDateFormats = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 18: true, 19: true, 20: true, 21: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true, 32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
	50: true, 51: true, 52: true, 53: true, 54: true, 55: true, 56: true, 57: true, 58: true,
}

func isDateStyle(style *excelize.Style) bool {
	if style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return isDateFormatCode(*style.CustomNumFmt)
	}
	return builtinDateFormats[style.NumFmt]
}

// isDateFormatCode reports whether a custom format code uses date or time tokens
// outside quoted text, escapes and bracketed sections such as [Red] or [$-409].
func isDateFormatCode(code string) bool {
	code = strings.ToLower(code)
	if section, _, found := strings.Cut(code, ";"); found {
		code = section
	}
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		c := code[i]
		switch {
		case inQuote:
			inQuote = c != '"'
		case inBracket:
			if c == ']' {
				inBracket = false
			}
		case c == '"':
			inQuote = true
		case c == '[':
			if strings.HasPrefix(code[i:], "[h]") || strings.HasPrefix(code[i:], "[m]") || strings.HasPrefix(code[i:], "[s]") {
				return true
			}
			inBracket = true
		case c == '\\' || c == '_' || c == '*':
			i++
		case strings.IndexByte("ymdhs", c) >= 0:
			return true
		}
	}
	return false
}

// parseParquet reads a flat parquet file. Leaf column paths become column names.
func parseParquet(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read parquet data: %w", err)
	}
	file, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}

	paths := file.Schema().Columns()
	header := make([]string, len(paths))
	for i, path := range paths {
		header[i] = strings.Join(path, ".")
	}

	reader := parquet.NewReader(file)
	defer func() { _ = reader.Close() }()

	records := make([][]string, 0, file.NumRows())
	buf := make([]parquet.Row, parquetBatchRows)
	for {
		n, err := reader.ReadRows(buf)
		for _, row := range buf[:n] {
			record := make([]string, len(header))
			for _, value := range row {
				column := value.Column()
				if column < 0 || column >= len(record) {
					continue
				}
				cell := parquetCell(value)
				if record[column] != "" && cell != "" {
					cell = record[column] + "," + cell
				}
				if cell != "" {
					record[column] = cell
				}
			}
			records = append(records, record)
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read parquet rows: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return newTable(header, records)
}

func parquetCell(value parquet.Value) string {
	if value.IsNull() {
		return ""
	}
	switch value.Kind() {
	case parquet.Boolean:
		return strconv.FormatBool(value.Boolean())
	case parquet.Int32:
		return strconv.FormatInt(int64(value.Int32()), 10)
	case parquet.Int64:
		return strconv.FormatInt(value.Int64(), 10)
	case parquet.Float:
		return strconv.FormatFloat(float64(value.Float()), 'g', -1, 32)
	case parquet.Double:
		return strconv.FormatFloat(value.Double(), 'g', -1, 64)
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return string(value.ByteArray())
	default:
		return value.String()
	}
}
