package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"maintenance-app/tracking-service/internal/models"
)

// exportHeader is shared by the CSV and Excel exports.
var exportHeader = []string{
	"ID",
	"Branch",
	"Room/Location",
	"Category",
	"Priority",
	"Status",
	"Description",
	"Author",
	"Comments",
	"Photo URL",
	"Created At",
	"Updated At",
}

const exportTimeLayout = "2006-01-02 15:04:05"

// IssuesCSV renders issues as CSV text, one row per issue in the order
// given (callers pass pipeline output so exports match the screen).
func IssuesCSV(issues []models.Issue) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportHeader); err != nil {
		return "", err
	}

	for _, issue := range issues {
		if err := w.Write(exportRow(issue)); err != nil {
			return "", err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// IssuesWorkbook renders issues as an Excel workbook.
func IssuesWorkbook(issues []models.Issue) ([]byte, error) {
	f := excelize.NewFile()

	sheetName := "Issues"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, title := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
	}

	for rowIdx, issue := range issues {
		for col, value := range exportRow(issue) {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				f.Close()
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				f.Close()
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, err
	}

	if err := f.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func exportRow(issue models.Issue) []string {
	return []string{
		issue.ID.Hex(),
		issue.BranchID,
		issue.Place(),
		string(issue.Category),
		string(issue.Priority),
		string(issue.Status),
		issue.Description,
		issue.AuthorName,
		strconv.Itoa(len(issue.Comments)),
		issue.PhotoURL,
		formatExportTime(issue.CreatedAt),
		formatExportTime(issue.UpdatedAt),
	}
}

func formatExportTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(exportTimeLayout)
}
