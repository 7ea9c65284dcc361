package export

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/recruit-cli/internal/model"
)

func readBack(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.NotEmpty(t, f.Sheets)

	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		var cells []string
		for _, cell := range row.Cells {
			cells = append(cells, cell.String())
		}
		rows = append(rows, cells)
	}
	return rows
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candidates.xlsx")

	records := []model.Candidate{
		{
			FullName:   "Alice",
			Email:      "alice@x.com",
			Status:     model.StatusInterview,
			IsFavorite: true,
			Analysis: &model.Analysis{
				Summary:            "strong",
				Strengths:          []string{"depth", "clarity"},
				Rating:             8.5,
				SuggestedQuestions: []string{"q1"},
			},
			Notes: []model.Note{{
				Text:      "phone screen done",
				Timestamp: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
			}},
		},
		{FullName: "Bob", Email: "bob@x.com", Status: model.StatusNew},
	}

	require.NoError(t, WriteXLSX(path, records))

	rows := readBack(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "Full Name", rows[0][0])

	alice := rows[1]
	assert.Equal(t, "Alice", alice[0])
	assert.Equal(t, "Interview", alice[3])
	assert.Equal(t, "yes", alice[4])
	assert.Equal(t, "8.5", alice[5])
	assert.Equal(t, "depth; clarity", alice[7])
	assert.Contains(t, alice[18], "phone screen done")

	bob := rows[2]
	assert.Equal(t, "Bob", bob[0])
	assert.Equal(t, "", bob[4], "non-favorite is blank")
	assert.Equal(t, "", bob[5], "unscored rating is blank")
}

func TestWriteXLSXEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteXLSX(path, nil))

	rows := readBack(t, path)
	require.Len(t, rows, 1, "header only")
}
