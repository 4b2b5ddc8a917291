package artifacts

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	pkgerrors "github.com/shreeglass/erp-backend/pkg/errors"
)

// ExcelReport renders a single-sheet workbook from headers plus rows. Used
// by the report export endpoints.
func ExcelReport(sheetName string, headers []string, rows [][]any) ([]byte, error) {
	if sheetName == "" {
		sheetName = "Report"
	}

	file := excelize.NewFile()
	defer file.Close()

	index, err := file.NewSheet(sheetName)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create report sheet")
	}
	file.SetActiveSheet(index)
	if err := file.DeleteSheet("Sheet1"); err != nil && sheetName != "Sheet1" {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "drop default sheet")
	}

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create header style")
	}

	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "address header cell")
		}
		if err := file.SetCellValue(sheetName, cell, header); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write header cell")
		}
		if err := file.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "style header cell")
		}
	}

	for i, row := range rows {
		for col, value := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "address data cell")
			}
			if err := file.SetCellValue(sheetName, cell, value); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err,
					fmt.Sprintf("write cell %s", cell))
			}
		}
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "serialize workbook")
	}
	return buf.Bytes(), nil
}
