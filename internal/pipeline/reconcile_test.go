package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/recruit-cli/internal/model"
)

func strPtr(s string) *string { return &s }

func TestReconcileNoOverrides(t *testing.T) {
	remote := []model.Candidate{
		{Email: "a@x.com", FullName: "Alice", Status: model.StatusNew},
	}

	out := Reconcile(remote, nil)

	require.Len(t, out, 1)
	assert.Equal(t, remote[0], out[0])
}

func TestReconcileOverrideAuthority(t *testing.T) {
	remote := []model.Candidate{{
		Email:        "a@x.com",
		FullName:     "Alice Updated",
		Compensation: "150k",
		Status:       model.StatusNew,
		Comments:     "remote comment",
	}}
	overrides := map[string]model.Override{
		"a@x.com": {
			Status:     model.StatusHired,
			IsFavorite: true,
			Analysis:   &model.Analysis{Summary: "strong", Rating: 8},
			Notes:      []model.Note{{ID: "note_1", Text: "called them"}},
			Comments:   strPtr("local comment"),
		},
	}

	out := Reconcile(remote, overrides)

	require.Len(t, out, 1)
	c := out[0]
	// Remote fields always win.
	assert.Equal(t, "Alice Updated", c.FullName)
	assert.Equal(t, "150k", c.Compensation)
	// Augmented fields come from the override.
	assert.Equal(t, model.StatusHired, c.Status)
	assert.True(t, c.IsFavorite)
	require.NotNil(t, c.Analysis)
	assert.Equal(t, 8.0, c.Analysis.Rating)
	require.Len(t, c.Notes, 1)
	assert.Equal(t, "local comment", c.Comments)
}

func TestReconcileEmptyStatusFallsBack(t *testing.T) {
	remote := []model.Candidate{{Email: "a@x.com", Status: model.StatusNew}}
	overrides := map[string]model.Override{
		"a@x.com": {IsFavorite: true}, // blob predates the status field
	}

	out := Reconcile(remote, overrides)

	require.Len(t, out, 1)
	assert.Equal(t, model.StatusNew, out[0].Status)
	assert.True(t, out[0].IsFavorite)
}

func TestReconcileExplicitEmptyEditableWins(t *testing.T) {
	remote := []model.Candidate{{
		Email:       "a@x.com",
		Comments:    "remote comment",
		CallLog:     "remote log",
		CurrentComp: "remote comp",
	}}
	overrides := map[string]model.Override{
		"a@x.com": {
			Status:   model.StatusNew,
			Comments: strPtr(""), // recruiter cleared the field
			// CallLog absent: remote value stands
			CurrentComp: strPtr("120k"),
		},
	}

	out := Reconcile(remote, overrides)

	require.Len(t, out, 1)
	assert.Equal(t, "", out[0].Comments)
	assert.Equal(t, "remote log", out[0].CallLog)
	assert.Equal(t, "120k", out[0].CurrentComp)
}

func TestReconcileDropsRecordsRemovedFromRemote(t *testing.T) {
	remote := []model.Candidate{{Email: "kept@x.com"}}
	overrides := map[string]model.Override{
		"kept@x.com": {Status: model.StatusReviewing},
		"gone@x.com": {Status: model.StatusHired},
	}

	out := Reconcile(remote, overrides)

	require.Len(t, out, 1)
	assert.Equal(t, "kept@x.com", out[0].Email)
}

func TestReconcileIdempotent(t *testing.T) {
	remote := []model.Candidate{
		{Email: "a@x.com", FullName: "Alice", Status: model.StatusNew},
		{Email: "b@x.com", FullName: "Bob", Status: model.StatusNew},
	}
	overrides := map[string]model.Override{
		"a@x.com": {
			Status:     model.StatusInterview,
			IsFavorite: true,
			Comments:   strPtr("notes"),
		},
	}

	once := Reconcile(remote, overrides)
	twice := Reconcile(remote, overrides)

	assert.Equal(t, once, twice)
}

func TestReconcilePreservesRemoteOrder(t *testing.T) {
	remote := []model.Candidate{
		{Email: "c@x.com"}, {Email: "a@x.com"}, {Email: "b@x.com"},
	}

	out := Reconcile(remote, map[string]model.Override{})

	require.Len(t, out, 3)
	assert.Equal(t, "c@x.com", out[0].Email)
	assert.Equal(t, "a@x.com", out[1].Email)
	assert.Equal(t, "b@x.com", out[2].Email)
}
