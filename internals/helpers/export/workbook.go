package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type SheetSpec struct {
	Title  string
	Header []string
	Rows   [][]any
}

// Build renders a one-sheet workbook with a bold, filtered header row.
func Build(s SheetSpec) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	name := sheetName(s.Title)
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for col, h := range s.Header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellStr(name, cell, h); err != nil {
			return nil, fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	if len(s.Header) > 0 {
		end, _ := excelize.CoordinatesToCellName(len(s.Header), 1)
		if bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
			_ = f.SetCellStyle(name, "A1", end, bold)
		}
		_ = f.AutoFilter(name, "A1:"+end, nil)
	}

	widths := make([]float64, len(s.Header))
	for i, h := range s.Header {
		widths[i] = float64(len(h)) + 2
	}
	for r, row := range s.Rows {
		for c, val := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if d, ok := val.(decimal.Decimal); ok {
				val = d.InexactFloat64()
			}
			if err := f.SetCellValue(name, cell, val); err != nil {
				return nil, fmt.Errorf("set cell %s: %w", cell, err)
			}
			if c < len(widths) {
				if w := float64(len(fmt.Sprint(val))) + 2; w > widths[c] {
					widths[c] = min(w, 60)
				}
			}
		}
	}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth(name, col, col, max(w, 10))
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

// Send writes the workbook as an attachment.
func Send(c *fiber.Ctx, filename string, s SheetSpec) error {
	buf, err := Build(s)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(buf.Bytes())
}

func sheetName(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Sheet1"
	}
	r := strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", " ", "]", " ")
	title = r.Replace(title)
	if len(title) > 31 {
		title = title[:31]
	}
	return title
}
