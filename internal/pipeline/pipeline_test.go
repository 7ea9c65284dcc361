package pipeline

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/recruit-cli/internal/config"
	"github.com/sells-group/recruit-cli/internal/model"
	"github.com/sells-group/recruit-cli/internal/store"
)

// stubSource returns fixed export text.
type stubSource struct {
	text string
	err  error
}

func (s *stubSource) Fetch(context.Context) (string, error) { return s.text, s.err }

// fakeScorer returns a canned analysis per email, or an error.
type fakeScorer struct {
	results map[string]*model.Analysis
	err     error
	calls   []string
}

func (f *fakeScorer) Score(_ context.Context, c model.Candidate) (*model.Analysis, error) {
	f.calls = append(f.calls, c.Email)
	if f.err != nil {
		return nil, f.err
	}
	if a, ok := f.results[c.Email]; ok {
		return a, nil
	}
	return &model.Analysis{Summary: "scored " + c.Email, Rating: 5}, nil
}

func (f *fakeScorer) SummarizeResume(_ context.Context, c model.Candidate, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "resume overview for " + c.Email, nil
}

func (f *fakeScorer) DraftEmail(_ context.Context, c model.Candidate, kind EmailKind) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return string(kind) + " email for " + c.Email, nil
}

// recordingNotifier captures write-back calls.
type recordingNotifier struct {
	emails []string
	err    error
}

func (n *recordingNotifier) NotifyAnalysis(_ context.Context, email string, _ *model.Analysis) error {
	n.emails = append(n.emails, email)
	return n.err
}

const exportCSV = "Timestamp,Email Address,Full Name\n" +
	"2024-01-01,alice@x.com,Alice\n" +
	"2024-01-02,bob@x.com,Bob\n"

func newTestPipeline(t *testing.T, source *stubSource, scorer *fakeScorer, notifier Notifier) (*Pipeline, store.Store) {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	cfg := &config.Config{Queue: config.QueueConfig{ThrottleMS: 1}}
	return New(cfg, source, st, scorer, notifier), st
}

func TestSyncReconcilesAndEnqueues(t *testing.T) {
	ctx := context.Background()
	p, st := newTestPipeline(t, &stubSource{text: exportCSV}, &fakeScorer{}, nil)

	// Pre-existing override for bob: hired, favorite, already scored.
	require.NoError(t, st.PutOverride(ctx, "bob@x.com", model.Override{
		Status:     model.StatusHired,
		IsFavorite: true,
		Analysis:   &model.Analysis{Summary: "great", Rating: 9},
	}))

	records := p.Sync(ctx)
	require.Len(t, records, 2)

	alice, ok := p.Candidate("alice@x.com")
	require.True(t, ok)
	assert.Equal(t, "Alice", alice.FullName)
	assert.Nil(t, alice.Analysis)

	bob, ok := p.Candidate("bob@x.com")
	require.True(t, ok)
	assert.Equal(t, model.StatusHired, bob.Status)
	assert.True(t, bob.IsFavorite)
	require.NotNil(t, bob.Analysis)

	// Only the unscored record is queued.
	assert.Equal(t, []string{"alice@x.com"}, p.QueuedEmails())
}

func TestSyncFetchFailureYieldsEmptySet(t *testing.T) {
	p, _ := newTestPipeline(t, &stubSource{err: eris.New("network down")}, &fakeScorer{}, nil)

	records := p.Sync(context.Background())
	assert.Empty(t, records)
	assert.Equal(t, 0, p.QueueLen())
}

func TestSyncIsRepeatable(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPipeline(t, &stubSource{text: exportCSV}, &fakeScorer{}, nil)

	p.Sync(ctx)
	p.Sync(ctx)

	// Re-sync does not double-enqueue.
	assert.Equal(t, 2, p.QueueLen())
}

func TestProcessNextScoresPersistsAndNotifies(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	scorer := &fakeScorer{results: map[string]*model.Analysis{
		"alice@x.com": {Summary: "solid", Rating: 7, Strengths: []string{"s1"}},
	}}
	p, st := newTestPipeline(t, &stubSource{text: exportCSV}, scorer, notifier)
	p.Sync(ctx)

	require.True(t, p.ProcessNext(ctx))

	alice, ok := p.Candidate("alice@x.com")
	require.True(t, ok)
	require.NotNil(t, alice.Analysis)
	assert.Equal(t, 7.0, alice.Analysis.Rating)

	// Persisted as a full blob.
	ov, err := st.GetOverride(ctx, "alice@x.com")
	require.NoError(t, err)
	require.NotNil(t, ov)
	require.NotNil(t, ov.Analysis)
	assert.Equal(t, "solid", ov.Analysis.Summary)

	assert.Equal(t, []string{"alice@x.com"}, notifier.emails)
}

func TestProcessNextEmptyQueue(t *testing.T) {
	p, _ := newTestPipeline(t, &stubSource{}, &fakeScorer{}, nil)
	assert.False(t, p.ProcessNext(context.Background()))
}

func TestProcessNextFailureDoesNotBlockQueue(t *testing.T) {
	ctx := context.Background()
	scorer := &fakeScorer{err: eris.New("rate limited")}
	p, _ := newTestPipeline(t, &stubSource{text: exportCSV}, scorer, nil)
	p.Sync(ctx)
	require.Equal(t, 2, p.QueueLen())

	// First tick fails; the item is dropped, not retried.
	assert.True(t, p.ProcessNext(ctx))
	assert.Equal(t, 1, p.QueueLen())

	// Next tick moves on to the second item.
	scorer.err = nil
	assert.True(t, p.ProcessNext(ctx))
	assert.Equal(t, 0, p.QueueLen())

	alice, _ := p.Candidate("alice@x.com")
	assert.Nil(t, alice.Analysis)
	bob, _ := p.Candidate("bob@x.com")
	require.NotNil(t, bob.Analysis)
}

func TestProcessNextFailedNotificationStillPersists(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{err: eris.New("webhook 500")}
	p, st := newTestPipeline(t, &stubSource{text: exportCSV}, &fakeScorer{}, notifier)
	p.Sync(ctx)

	require.True(t, p.ProcessNext(ctx))

	ov, err := st.GetOverride(ctx, "alice@x.com")
	require.NoError(t, err)
	require.NotNil(t, ov)
	require.NotNil(t, ov.Analysis)
}

func TestDrainEmptiesQueue(t *testing.T) {
	ctx := context.Background()
	scorer := &fakeScorer{}
	p, _ := newTestPipeline(t, &stubSource{text: exportCSV}, scorer, nil)
	p.Sync(ctx)

	p.Drain(ctx)

	assert.Equal(t, 0, p.QueueLen())
	assert.Equal(t, []string{"alice@x.com", "bob@x.com"}, scorer.calls)
}

func TestDrainStopsOnCancel(t *testing.T) {
	p, _ := newTestPipeline(t, &stubSource{text: exportCSV}, &fakeScorer{}, nil)
	p.Sync(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Drain(ctx)

	assert.Equal(t, 2, p.QueueLen(), "cancelled drain must leave the queue intact")
}

func TestAnalyzeNow(t *testing.T) {
	ctx := context.Background()
	notifier := &recordingNotifier{}
	scorer := &fakeScorer{results: map[string]*model.Analysis{
		"alice@x.com": {Summary: "regenerated", Rating: 6},
	}}
	p, _ := newTestPipeline(t, &stubSource{text: exportCSV}, scorer, notifier)
	p.Sync(ctx)

	cand, err := p.AnalyzeNow(ctx, "alice@x.com")
	require.NoError(t, err)
	require.NotNil(t, cand.Analysis)
	assert.Equal(t, "regenerated", cand.Analysis.Summary)
	assert.Equal(t, []string{"alice@x.com"}, notifier.emails)
}

func TestAnalyzeNowUnknownEmail(t *testing.T) {
	p, _ := newTestPipeline(t, &stubSource{text: exportCSV}, &fakeScorer{}, nil)
	p.Sync(context.Background())

	_, err := p.AnalyzeNow(context.Background(), "nobody@x.com")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrCandidateNotFound))
}

func TestAnalyzeNowRejectsConcurrentRequest(t *testing.T) {
	p, _ := newTestPipeline(t, &stubSource{text: exportCSV}, &fakeScorer{}, nil)
	p.Sync(context.Background())

	// Simulate the queue path holding alice mid-enrichment.
	require.True(t, p.queue.beginAdhoc("alice@x.com"))
	defer p.queue.endAdhoc("alice@x.com")

	_, err := p.AnalyzeNow(context.Background(), "alice@x.com")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrAnalysisInProgress))
}

func TestResumeSummaryMergesWithScoring(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPipeline(t, &stubSource{text: exportCSV}, &fakeScorer{}, nil)
	p.Sync(ctx)

	// Resume summary arrives first.
	summary, err := p.SummarizeResume(ctx, "alice@x.com", "raw resume text")
	require.NoError(t, err)
	assert.Equal(t, "resume overview for alice@x.com", summary)

	alice, _ := p.Candidate("alice@x.com")
	require.NotNil(t, alice.Analysis)
	assert.False(t, alice.Analysis.Scored(), "resume summary alone is not a scoring result")
	assert.Contains(t, p.QueuedEmails(), "alice@x.com", "alice still owed a scoring pass")

	// Scoring lands on top without erasing the resume summary.
	require.True(t, p.ProcessNext(ctx))
	alice, _ = p.Candidate("alice@x.com")
	assert.True(t, alice.Analysis.Scored())
	assert.Equal(t, "resume overview for alice@x.com", alice.Analysis.ResumeSummary)
}

func TestMutationHelpers(t *testing.T) {
	ctx := context.Background()
	p, st := newTestPipeline(t, &stubSource{text: exportCSV}, &fakeScorer{}, nil)
	p.Sync(ctx)

	require.NoError(t, p.SetStatus(ctx, "alice@x.com", model.StatusInterview))
	require.NoError(t, p.ToggleFavorite(ctx, "alice@x.com"))
	require.NoError(t, p.AddNote(ctx, "alice@x.com", "strong phone screen", "sam"))
	require.NoError(t, p.AddNote(ctx, "alice@x.com", "sent invite", "sam"))

	alice, _ := p.Candidate("alice@x.com")
	assert.Equal(t, model.StatusInterview, alice.Status)
	assert.True(t, alice.IsFavorite)
	require.Len(t, alice.Notes, 2)
	assert.Equal(t, "sent invite", alice.Notes[0].Text, "newest note first")

	ov, err := st.GetOverride(ctx, "alice@x.com")
	require.NoError(t, err)
	require.NotNil(t, ov)
	assert.Equal(t, model.StatusInterview, ov.Status)
	require.Len(t, ov.Notes, 2)
}

func TestSetStatusRejectsInvalid(t *testing.T) {
	p, _ := newTestPipeline(t, &stubSource{text: exportCSV}, &fakeScorer{}, nil)
	p.Sync(context.Background())

	err := p.SetStatus(context.Background(), "alice@x.com", model.Status("Ghosted"))
	require.Error(t, err)
}

func TestAddNoteRequiresText(t *testing.T) {
	p, _ := newTestPipeline(t, &stubSource{text: exportCSV}, &fakeScorer{}, nil)
	p.Sync(context.Background())

	require.Error(t, p.AddNote(context.Background(), "alice@x.com", "", "sam"))
}

func TestUpdateEditableExplicitEmpty(t *testing.T) {
	ctx := context.Background()
	p, st := newTestPipeline(t, &stubSource{text: exportCSV}, &fakeScorer{}, nil)
	p.Sync(ctx)

	empty := ""
	comp := "140k"
	require.NoError(t, p.UpdateEditable(ctx, "alice@x.com", &empty, nil, &comp))

	alice, _ := p.Candidate("alice@x.com")
	assert.Equal(t, "", alice.Comments)
	assert.Equal(t, "140k", alice.CurrentComp)

	ov, err := st.GetOverride(ctx, "alice@x.com")
	require.NoError(t, err)
	require.NotNil(t, ov.Comments)
	assert.Equal(t, "", *ov.Comments)
	require.NotNil(t, ov.CurrentComp)
	assert.Equal(t, "140k", *ov.CurrentComp)
}

func TestEditsSurviveResync(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPipeline(t, &stubSource{text: exportCSV}, &fakeScorer{}, nil)
	p.Sync(ctx)

	require.NoError(t, p.SetStatus(ctx, "alice@x.com", model.StatusOffer))
	require.NoError(t, p.AddNote(ctx, "alice@x.com", "negotiating", "sam"))

	p.Sync(ctx)

	alice, ok := p.Candidate("alice@x.com")
	require.True(t, ok)
	assert.Equal(t, model.StatusOffer, alice.Status)
	require.Len(t, alice.Notes, 1)
}

func TestDraftEmailUnknownCandidate(t *testing.T) {
	p, _ := newTestPipeline(t, &stubSource{text: exportCSV}, &fakeScorer{}, nil)
	p.Sync(context.Background())

	_, err := p.DraftEmail(context.Background(), "nobody@x.com", EmailInterview)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrCandidateNotFound))
}
