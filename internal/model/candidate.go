// Package model defines the candidate domain types shared across the pipeline.
package model

import (
	"fmt"
	"time"
)

// Status represents a candidate's position in the hiring workflow.
type Status string

const (
	StatusNew       Status = "New"
	StatusReviewing Status = "Reviewing"
	StatusInterview Status = "Interview"
	StatusOffer     Status = "Offer"
	StatusHired     Status = "Hired"
	StatusRejected  Status = "Rejected"
)

// Valid reports whether s is one of the known workflow statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusReviewing, StatusInterview, StatusOffer, StatusHired, StatusRejected:
		return true
	}
	return false
}

// Note is a recruiter note attached to a candidate. Notes are append-only:
// the pipeline merges whole sequences and never mutates existing entries.
type Note struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
}

// NewNote creates a Note with a time-derived unique ID.
func NewNote(text, author string) Note {
	now := time.Now().UTC()
	return Note{
		ID:        fmt.Sprintf("note_%d", now.UnixNano()),
		Text:      text,
		Author:    author,
		Timestamp: now,
	}
}

// Analysis holds the AI scoring result for a candidate. ResumeSummary is
// filled by a separate on-demand path and is merged additively with the
// scoring fields, never overwritten by them.
type Analysis struct {
	Summary            string   `json:"summary"`
	Strengths          []string `json:"strengths"`
	Weaknesses         []string `json:"weaknesses"`
	Rating             float64  `json:"rating"` // 1-10
	SuggestedQuestions []string `json:"suggested_questions"`
	ResumeSummary      string   `json:"resume_summary,omitempty"`
}

// Scored reports whether a carries a scoring result. An Analysis holding only
// a resume summary does not count: the queue still owes that candidate a pass.
func (a *Analysis) Scored() bool {
	return a != nil && a.Summary != ""
}

// Candidate is one applicant row from the export, reconciled with the
// override store. ID is a per-sync display handle derived from row position;
// it is never persisted and never compared across syncs. Email is the only
// stable identity key.
type Candidate struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`

	// Profile
	FullName  string `json:"full_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	LinkedIn  string `json:"linkedin"`
	GitHub    string `json:"github"`
	Portfolio string `json:"portfolio"`

	// Self-reported skill ratings (free text, straight from the form)
	RatingTypeScript string `json:"rating_typescript"`
	RatingNode       string `json:"rating_node"`
	RatingReact      string `json:"rating_react"`
	RatingSQL        string `json:"rating_sql"`
	RatingETL        string `json:"rating_etl"`

	// Scenario answers
	ScenarioIngestion string `json:"scenario_ingestion"`
	CloudProviders    string `json:"cloud_providers"`
	ScenarioIsolation string `json:"scenario_isolation"`
	ScenarioState     string `json:"scenario_state"`

	Compensation string `json:"compensation"`
	Availability string `json:"availability"`
	ResumeURL    string `json:"resume_url"`

	// Recruiter-editable free text
	Comments    string `json:"comments"`
	CallLog     string `json:"call_log"`
	CurrentComp string `json:"current_comp"`

	// Augmented fields
	Status     Status    `json:"status"`
	IsFavorite bool      `json:"is_favorite"`
	Notes      []Note    `json:"notes"`
	Analysis   *Analysis `json:"analysis,omitempty"`
}

// Override is the locally persisted augmentation blob for one email. The
// editable free-text fields are pointers so an explicit empty-string override
// stays distinguishable from "never edited".
type Override struct {
	Status      Status    `json:"status"`
	IsFavorite  bool      `json:"is_favorite"`
	Analysis    *Analysis `json:"analysis,omitempty"`
	Notes       []Note    `json:"notes"`
	Comments    *string   `json:"comments,omitempty"`
	CallLog     *string   `json:"call_log,omitempty"`
	CurrentComp *string   `json:"current_comp,omitempty"`
}

// OverrideBlob builds the full override blob from a candidate's current
// augmented-field set. Every mutation path writes the whole blob: the store
// has no merge semantics of its own.
func (c *Candidate) OverrideBlob() Override {
	comments := c.Comments
	callLog := c.CallLog
	currentComp := c.CurrentComp
	return Override{
		Status:      c.Status,
		IsFavorite:  c.IsFavorite,
		Analysis:    c.Analysis,
		Notes:       c.Notes,
		Comments:    &comments,
		CallLog:     &callLog,
		CurrentComp: &currentComp,
	}
}
