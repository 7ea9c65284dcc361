package sheet

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sells-group/recruit-cli/internal/model"
)

// Placeholders applied when the identity columns are missing or blank, so
// downstream keying never operates on an empty key.
const (
	placeholderName  = "Unknown Candidate"
	placeholderEmail = "no-email@provided.com"
)

// listSeparator splits the flattened multi-value AI columns.
const listSeparator = ";"

// MapRecords turns decoded rows into candidate records. The first row is the
// header row. Rows shorter than the header still produce a record with empty
// strings for the missing cells.
func MapRecords(rows [][]string) []model.Candidate {
	if len(rows) < 2 {
		return nil
	}

	headerIndex := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		headerIndex[strings.TrimSpace(h)] = i
	}

	// Resolve each configured header to a column once, up front. Exact match
	// first, then a case-insensitive trimmed fallback. Later mappings for the
	// same field overwrite earlier ones.
	columns := make(map[field]int)
	for _, m := range headerMappings {
		if idx, ok := headerIndex[strings.TrimSpace(m.header)]; ok {
			columns[m.field] = idx
			continue
		}
		if idx, ok := foldedLookup(headerIndex, m.header); ok {
			columns[m.field] = idx
		}
	}

	records := make([]model.Candidate, 0, len(rows)-1)
	for i, row := range rows[1:] {
		records = append(records, materialize(i, row, columns))
	}
	return records
}

// foldedLookup finds a header by case-insensitive, whitespace-trimmed match.
func foldedLookup(headerIndex map[string]int, header string) (int, bool) {
	want := strings.ToLower(strings.TrimSpace(header))
	for h, idx := range headerIndex {
		if strings.ToLower(h) == want {
			return idx, true
		}
	}
	return 0, false
}

func materialize(rowIdx int, row []string, columns map[field]int) model.Candidate {
	cell := func(f field) string {
		idx, ok := columns[f]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	c := model.Candidate{
		// Positional handle only. Unstable across syncs; never persisted.
		ID:        fmt.Sprintf("row_%d", rowIdx),
		Timestamp: cell(fieldTimestamp),
		FullName:  cell(fieldFullName),
		Email:     cell(fieldEmail),
		Phone:     cell(fieldPhone),
		LinkedIn:  cell(fieldLinkedIn),
		GitHub:    cell(fieldGitHub),
		Portfolio: cell(fieldPortfolio),

		RatingTypeScript: cell(fieldRatingTypeScript),
		RatingNode:       cell(fieldRatingNode),
		RatingReact:      cell(fieldRatingReact),
		RatingSQL:        cell(fieldRatingSQL),
		RatingETL:        cell(fieldRatingETL),

		ScenarioIngestion: cell(fieldScenarioIngestion),
		CloudProviders:    cell(fieldCloudProviders),
		ScenarioIsolation: cell(fieldScenarioIsolation),
		ScenarioState:     cell(fieldScenarioState),

		Compensation: cell(fieldCompensation),
		Availability: cell(fieldAvailability),
		ResumeURL:    cell(fieldResumeURL),

		Comments:    cell(fieldComments),
		CallLog:     cell(fieldCallLog),
		CurrentComp: cell(fieldCurrentComp),

		Status:     model.StatusNew,
		IsFavorite: false,
		Notes:      []model.Note{},
	}

	if c.FullName == "" {
		c.FullName = placeholderName
	}
	if c.Email == "" {
		c.Email = placeholderEmail
	}

	// Reconstruct a nested analysis from the flattened AI columns, but only
	// when both a rating and a summary survived mapping.
	rating := cell(fieldAIRating)
	summary := cell(fieldAISummary)
	if rating != "" && summary != "" {
		r, err := strconv.ParseFloat(rating, 64)
		if err != nil {
			r = 0
		}
		c.Analysis = &model.Analysis{
			Rating:             r,
			Summary:            summary,
			Strengths:          splitList(cell(fieldAIStrengths)),
			Weaknesses:         splitList(cell(fieldAIWeaknesses)),
			SuggestedQuestions: splitList(cell(fieldAIQuestions)),
		}
	}

	return c
}

// splitList splits a flattened multi-value cell, trimming and discarding
// empty entries.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, listSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
