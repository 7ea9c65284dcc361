// Package export writes candidate reports for sharing outside the tool.
package export

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/recruit-cli/internal/model"
)

var reportHeader = []string{
	"Full Name", "Email", "Phone", "Status", "Favorite",
	"AI Rating", "AI Summary", "Strengths", "Weaknesses", "Suggested Questions",
	"Compensation Ask", "Current Comp", "Availability",
	"LinkedIn", "GitHub", "Resume", "Comments", "Call Log", "Notes",
}

// WriteXLSX writes the candidate list as a single-sheet workbook at path.
// Records are written in the order given; sort upstream.
func WriteXLSX(path string, records []model.Candidate) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Candidates")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range reportHeader {
		header.AddCell().SetString(h)
	}

	for _, c := range records {
		row := sheet.AddRow()
		for _, v := range reportRow(c) {
			row.AddCell().SetString(v)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func reportRow(c model.Candidate) []string {
	rating := ""
	summary := ""
	strengths := ""
	weaknesses := ""
	questions := ""
	if c.Analysis != nil {
		if c.Analysis.Scored() {
			rating = fmt.Sprintf("%.1f", c.Analysis.Rating)
		}
		summary = c.Analysis.Summary
		strengths = strings.Join(c.Analysis.Strengths, "; ")
		weaknesses = strings.Join(c.Analysis.Weaknesses, "; ")
		questions = strings.Join(c.Analysis.SuggestedQuestions, "; ")
	}

	favorite := ""
	if c.IsFavorite {
		favorite = "yes"
	}

	notes := make([]string, 0, len(c.Notes))
	for _, n := range c.Notes {
		notes = append(notes, fmt.Sprintf("[%s] %s", n.Timestamp.Format("2006-01-02"), n.Text))
	}

	return []string{
		c.FullName, c.Email, c.Phone, string(c.Status), favorite,
		rating, summary, strengths, weaknesses, questions,
		c.Compensation, c.CurrentComp, c.Availability,
		c.LinkedIn, c.GitHub, c.ResumeURL, c.Comments, c.CallLog,
		strings.Join(notes, "\n"),
	}
}
