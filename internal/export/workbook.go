package export

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"
)

type SheetSpec struct {
	Title  string
	Header []string
	Rows   [][]any
}

// NewWorkbook собирает книгу из листов: жирная шапка, автофильтр, ширина колонок по содержимому.
func NewWorkbook(sheets []SheetSpec) (*excelize.File, error) {
	f := excelize.NewFile()
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	for i, s := range sheets {
		name := s.Title
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("new sheet: %w", err)
		}

		header := make([]any, len(s.Header))
		for c, h := range s.Header {
			header[c] = h
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return nil, fmt.Errorf("%s header: %w", name, err)
		}
		for r, row := range s.Rows {
			row := row
			cell := fmt.Sprintf("A%d", r+2)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				return nil, fmt.Errorf("%s row %d: %w", name, r+2, err)
			}
		}

		if len(s.Header) == 0 {
			continue
		}
		end := colName(len(s.Header)) + "1"
		_ = f.SetCellStyle(name, "A1", end, bold)
		_ = f.AutoFilter(name, "A1:"+end, nil)
		fitColumns(f, name, s)
	}
	return f, nil
}

// fitColumns — эвристическая ширина по заголовку и первым 50 строкам.
func fitColumns(f *excelize.File, sheet string, s SheetSpec) {
	for c := range s.Header {
		width := visualLen(s.Header[c]) + 2
		for r := 0; r < min(50, len(s.Rows)); r++ {
			if c < len(s.Rows[r]) {
				if l := visualLen(fmt.Sprint(s.Rows[r][c])); l > width {
					width = l
				}
			}
		}
		w := float64(width) * 1.1
		if w < 10 {
			w = 10
		}
		if w > 50 {
			w = 50
		}
		col := colName(c + 1)
		_ = f.SetColWidth(sheet, col, col, w)
	}
}

// Bytes — книга целиком, для отправки документом без временных файлов.
func Bytes(f *excelize.File) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func colName(n int) string {
	// 1 -> A; 27 -> AA
	s := ""
	for n > 0 {
		n--
		s = string(rune('A'+(n%26))) + s
		n /= 26
	}
	return s
}

func visualLen(s string) int {
	n := 0
	for _, r := range s {
		if r == '\t' {
			n += 4
		} else {
			n++
		}
	}
	return n
}

var invalidFileRe = regexp.MustCompile(`[\\/:*?"<>|]+`)

func sanitizeFileName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Join(strings.Fields(s), " ")
	return invalidFileRe.ReplaceAllString(s, "_")
}
