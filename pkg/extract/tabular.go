package extract

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// fromCSV linearizes header/rows into "Row N: col: val" lines so row-level
// facts survive chunking on the embedding side.
func fromCSV(data []byte) (*Result, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1 // tolerate ragged rows

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error parsing CSV: %v", err)
	}
	if len(records) == 0 {
		return &Result{Text: ""}, nil
	}

	return &Result{Text: linearizeRows(records[0], records[1:])}, nil
}

// fromXLSX linearizes every sheet the same way as CSV, prefixed with the
// sheet name when the workbook has more than one.
func fromXLSX(data []byte) (*Result, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error opening workbook: %v", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	var sb strings.Builder
	for _, sheet := range sheets {
		rows, err := file.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		if len(sheets) > 1 {
			sb.WriteString(fmt.Sprintf("Sheet: %s\n", sheet))
		}
		sb.WriteString(linearizeRows(rows[0], rows[1:]))
	}

	return &Result{Text: sb.String()}, nil
}

func linearizeRows(header []string, rows [][]string) string {
	var sb strings.Builder

	sb.WriteString("Columns: ")
	sb.WriteString(strings.Join(header, ", "))
	sb.WriteString("\n")

	for i, row := range rows {
		pairs := make([]string, 0, len(row))
		for j, val := range row {
			if j >= len(header) || strings.TrimSpace(val) == "" {
				continue
			}
			pairs = append(pairs, fmt.Sprintf("%s: %s", header[j], val))
		}
		sb.WriteString(fmt.Sprintf("Row %d: %s\n", i+1, strings.Join(pairs, ", ")))
	}

	return sb.String()
}
