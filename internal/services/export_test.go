package services

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"maintenance-app/tracking-service/internal/models"
)

func exportIssue(room string, status models.IssueStatus) models.Issue {
	created := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	return models.Issue{
		ID:          primitive.NewObjectID(),
		BranchID:    "branch-1",
		RoomNumber:  room,
		Category:    models.CategoryElectrical,
		Description: "flickering light",
		Priority:    models.PriorityMedium,
		Status:      status,
		AuthorName:  "Dana",
		Comments: []models.Comment{
			{CommentID: "c1", Text: "checked breaker", Author: "Dana", Timestamp: created},
		},
		CreatedAt: created,
		UpdatedAt: created.Add(time.Hour),
	}
}

func TestIssuesCSV(t *testing.T) {
	first := exportIssue("101", models.StatusNew)
	second := exportIssue("102", models.StatusCompleted)
	second.RoomNumber = ""
	second.Location = "Lobby"

	out, err := IssuesCSV([]models.Issue{first, second})
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	require.Equal(t, exportHeader, records[0])

	require.Equal(t, first.ID.Hex(), records[1][0])
	require.Equal(t, "101", records[1][2])
	require.Equal(t, "Electrical", records[1][3])
	require.Equal(t, "New", records[1][5])
	require.Equal(t, "1", records[1][8])
	require.Equal(t, "2025-03-10 09:30:00", records[1][10])

	// Location replaces the room number when the issue is area-scoped.
	require.Equal(t, "Lobby", records[2][2])
	require.Equal(t, "Completed", records[2][5])
}

func TestIssuesCSVEmpty(t *testing.T) {
	out, err := IssuesCSV(nil)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, exportHeader, records[0])
}

func TestIssuesCSVEscapesFields(t *testing.T) {
	issue := exportIssue("101", models.StatusNew)
	issue.Description = `leaking, badly ("again")`

	out, err := IssuesCSV([]models.Issue{issue})
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Equal(t, issue.Description, records[1][6])
}

func TestIssuesWorkbook(t *testing.T) {
	issue := exportIssue("305", models.StatusInProgress)

	data, err := IssuesWorkbook([]models.Issue{issue})
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	require.Contains(t, f.GetSheetList(), "Issues")

	for col, want := range exportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		require.NoError(t, err)
		got, err := f.GetCellValue("Issues", cell)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	got, err := f.GetCellValue("Issues", "C2")
	require.NoError(t, err)
	require.Equal(t, "305", got)

	got, err = f.GetCellValue("Issues", "F2")
	require.NoError(t, err)
	require.Equal(t, "In Progress", got)

	got, err = f.GetCellValue("Issues", "A2")
	require.NoError(t, err)
	require.Equal(t, issue.ID.Hex(), got)
}

func TestIssuesWorkbookRowPerIssue(t *testing.T) {
	issues := []models.Issue{
		exportIssue("101", models.StatusNew),
		exportIssue("102", models.StatusNew),
		exportIssue("103", models.StatusNew),
	}

	data, err := IssuesWorkbook(issues)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Issues")
	require.NoError(t, err)
	require.Len(t, rows, 4)
}
