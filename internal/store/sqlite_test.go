package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/recruit-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func strPtr(s string) *string { return &s }

func TestSQLite_GetOverride_Absent(t *testing.T) {
	st := newTestSQLiteStore(t)

	ov, err := st.GetOverride(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	assert.Nil(t, ov)
}

func TestSQLite_PutAndGetOverride(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	in := model.Override{
		Status:     model.StatusHired,
		IsFavorite: true,
		Notes:      []model.Note{model.NewNote("great call", "sandeep")},
		Analysis:   &model.Analysis{Summary: "strong", Rating: 8},
		Comments:   strPtr(""),
		CallLog:    strPtr("called twice"),
	}
	require.NoError(t, st.PutOverride(ctx, "a@x.com", in))

	out, err := st.GetOverride(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, model.StatusHired, out.Status)
	assert.True(t, out.IsFavorite)
	require.Len(t, out.Notes, 1)
	assert.Equal(t, "great call", out.Notes[0].Text)
	assert.Equal(t, 8.0, out.Analysis.Rating)

	// Explicit empty-string override survives the round trip as present.
	require.NotNil(t, out.Comments)
	assert.Equal(t, "", *out.Comments)
	require.NotNil(t, out.CallLog)
	assert.Equal(t, "called twice", *out.CallLog)
	assert.Nil(t, out.CurrentComp)
}

func TestSQLite_PutOverride_Replaces(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, st.PutOverride(ctx, "a@x.com", model.Override{Status: model.StatusNew}))
	require.NoError(t, st.PutOverride(ctx, "a@x.com", model.Override{Status: model.StatusOffer}))

	out, err := st.GetOverride(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, model.StatusOffer, out.Status)
}

func TestSQLite_ListOverrides(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	out, err := st.ListOverrides(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)

	require.NoError(t, st.PutOverride(ctx, "a@x.com", model.Override{Status: model.StatusHired}))
	require.NoError(t, st.PutOverride(ctx, "b@x.com", model.Override{IsFavorite: true}))

	out, err = st.ListOverrides(ctx)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, model.StatusHired, out["a@x.com"].Status)
	assert.True(t, out["b@x.com"].IsFavorite)
}
