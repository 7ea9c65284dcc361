// Package pipeline reconciles spreadsheet exports with the override store
// and drives the throttled AI enrichment queue.
package pipeline

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/recruit-cli/internal/config"
	"github.com/sells-group/recruit-cli/internal/fetcher"
	"github.com/sells-group/recruit-cli/internal/model"
	"github.com/sells-group/recruit-cli/internal/sheet"
	"github.com/sells-group/recruit-cli/internal/store"
)

// ErrAnalysisInProgress is returned when an on-demand analysis targets a
// candidate already being enriched by either path.
var ErrAnalysisInProgress = eris.New("analysis already in progress for candidate")

// ErrCandidateNotFound is returned when an email is absent from the current
// record set.
var ErrCandidateNotFound = eris.New("candidate not found")

// Pipeline owns the reconciled record set, the override store and the
// enrichment queue. All entry points are total with respect to failure:
// they return values, empty results or explicit errors, never panic.
type Pipeline struct {
	cfg      *config.Config
	source   fetcher.Source
	store    store.Store
	scorer   Scorer
	notifier Notifier
	limiter  *rate.Limiter

	mu      sync.RWMutex
	records []model.Candidate
	index   map[string]int

	queue *queue
}

// New creates a Pipeline with all dependencies injected.
func New(cfg *config.Config, source fetcher.Source, st store.Store, scorer Scorer, notifier Notifier) *Pipeline {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &Pipeline{
		cfg:      cfg,
		source:   source,
		store:    st,
		scorer:   scorer,
		notifier: notifier,
		limiter:  rate.NewLimiter(rate.Every(cfg.Queue.Throttle()), 1),
		index:    make(map[string]int),
		queue:    newQueue(),
	}
}

// Sync fetches the export, decodes and maps it, reconciles against the
// override store, replaces the record set and enqueues every record still
// lacking a scoring result. Fetch or store-read failures degrade to an
// empty/unaugmented set; Sync never fails.
func (p *Pipeline) Sync(ctx context.Context) []model.Candidate {
	log := zap.L().With(zap.String("sync_id", uuid.NewString()))

	text, err := p.source.Fetch(ctx)
	if err != nil {
		log.Warn("export fetch failed, continuing with empty export", zap.Error(err))
		text = ""
	}

	remote := sheet.MapRecords(sheet.Decode(text))

	overrides, err := p.store.ListOverrides(ctx)
	if err != nil {
		log.Error("override store read failed, using remote values only", zap.Error(err))
		overrides = nil
	}

	records := Reconcile(remote, overrides)

	p.mu.Lock()
	p.records = records
	p.index = indexByEmail(records)
	p.mu.Unlock()

	queued := p.queue.enqueueMissing(records)
	log.Info("sync complete",
		zap.Int("records", len(records)),
		zap.Int("enqueued", queued),
		zap.Int("queue_len", p.queue.len()),
	)
	return p.Records()
}

// Records returns a copy of the current reconciled record list.
func (p *Pipeline) Records() []model.Candidate {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]model.Candidate, len(p.records))
	copy(out, p.records)
	return out
}

// Candidate looks up a record by email.
func (p *Pipeline) Candidate(email string) (model.Candidate, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	idx, ok := p.index[email]
	if !ok {
		return model.Candidate{}, false
	}
	return p.records[idx], true
}

// QueueLen returns the number of ids waiting for enrichment.
func (p *Pipeline) QueueLen() int { return p.queue.len() }

// QueuedEmails returns the pending enrichment ids in FIFO order.
func (p *Pipeline) QueuedEmails() []string { return p.queue.snapshot() }

// ProcessNext handles one queue tick. It is a no-op when the queue is empty
// or an item is already in flight. Scoring failures drop the item without
// retry and never affect subsequent items. Returns true when a head item was
// handled (success, failure or skip) so the scheduler can observe the
// throttle floor before the next tick.
func (p *Pipeline) ProcessNext(ctx context.Context) bool {
	email, busy, ok := p.queue.pop()
	if !ok {
		return false
	}
	if busy {
		// Held by a concurrent on-demand request; it will be scored there.
		zap.L().Debug("enrichment skipped, on-demand analysis in progress", zap.String("email", email))
		return true
	}
	defer p.queue.finish(email)

	cand, found := p.Candidate(email)
	if !found || cand.Analysis.Scored() {
		zap.L().Debug("enrichment skipped", zap.String("email", email), zap.Bool("found", found))
		return true
	}

	analysis, err := p.scorer.Score(ctx, cand)
	if err != nil {
		zap.L().Warn("scoring failed, dropping item",
			zap.String("email", email),
			zap.Error(err),
		)
		return true
	}

	p.applyAnalysis(ctx, email, analysis)
	zap.L().Info("enrichment complete",
		zap.String("email", email),
		zap.Float64("rating", analysis.Rating),
		zap.Int("queue_len", p.queue.len()),
	)
	return true
}

// Drain processes the queue until it is empty or ctx is cancelled, observing
// the throttle floor between ticks. Cancellation stops the pending wait, so
// teardown never leaves an orphaned tick.
func (p *Pipeline) Drain(ctx context.Context) {
	for p.queue.len() > 0 {
		if err := p.limiter.Wait(ctx); err != nil {
			return
		}
		p.ProcessNext(ctx)
	}
}

// RunScheduler ticks the queue until ctx is cancelled. Used by the server,
// where syncs keep appending work.
func (p *Pipeline) RunScheduler(ctx context.Context) {
	for {
		if err := p.limiter.Wait(ctx); err != nil {
			return
		}
		p.ProcessNext(ctx)
	}
}

// AnalyzeNow scores one candidate outside FIFO order for interactive
// regenerate requests. A request for an email already being enriched by
// either path is rejected with ErrAnalysisInProgress.
func (p *Pipeline) AnalyzeNow(ctx context.Context, email string) (model.Candidate, error) {
	cand, found := p.Candidate(email)
	if !found {
		return model.Candidate{}, eris.Wrapf(ErrCandidateNotFound, "analyze %s", email)
	}

	if !p.queue.beginAdhoc(email) {
		return model.Candidate{}, eris.Wrapf(ErrAnalysisInProgress, "analyze %s", email)
	}
	defer p.queue.endAdhoc(email)

	analysis, err := p.scorer.Score(ctx, cand)
	if err != nil {
		return model.Candidate{}, eris.Wrapf(err, "analyze %s", email)
	}

	p.applyAnalysis(ctx, email, analysis)
	updated, _ := p.Candidate(email)
	return updated, nil
}

// SummarizeResume generates a Markdown resume overview and stores it on the
// candidate's analysis without touching any scoring fields.
func (p *Pipeline) SummarizeResume(ctx context.Context, email, resumeText string) (string, error) {
	cand, found := p.Candidate(email)
	if !found {
		return "", eris.Wrapf(ErrCandidateNotFound, "summarize resume %s", email)
	}

	summary, err := p.scorer.SummarizeResume(ctx, cand, resumeText)
	if err != nil {
		return "", err
	}

	err = p.mutate(ctx, email, func(c *model.Candidate) {
		c.Analysis = withResumeSummary(c.Analysis, summary)
	})
	return summary, err
}

// DraftEmail drafts an interview or rejection email for a candidate. No
// state is mutated.
func (p *Pipeline) DraftEmail(ctx context.Context, email string, kind EmailKind) (string, error) {
	cand, found := p.Candidate(email)
	if !found {
		return "", eris.Wrapf(ErrCandidateNotFound, "draft email %s", email)
	}
	return p.scorer.DraftEmail(ctx, cand, kind)
}

// Save writes the candidate's full augmented-field blob through the store
// and updates the in-memory record. When the candidate carries a scoring
// result, a best-effort write-back notification is sent.
func (p *Pipeline) Save(ctx context.Context, cand model.Candidate) error {
	p.mu.Lock()
	if idx, ok := p.index[cand.Email]; ok {
		cand.ID = p.records[idx].ID
		p.records[idx] = cand
	}
	p.mu.Unlock()

	if err := p.store.PutOverride(ctx, cand.Email, cand.OverrideBlob()); err != nil {
		zap.L().Error("override write failed",
			zap.String("email", cand.Email),
			zap.Error(err),
		)
		return eris.Wrapf(err, "save %s", cand.Email)
	}

	if cand.Analysis.Scored() {
		p.notify(ctx, cand.Email, cand.Analysis)
	}
	return nil
}

// SetStatus moves a candidate to a new workflow status.
func (p *Pipeline) SetStatus(ctx context.Context, email string, s model.Status) error {
	if !s.Valid() {
		return eris.Errorf("invalid status %q", s)
	}
	return p.mutate(ctx, email, func(c *model.Candidate) { c.Status = s })
}

// ToggleFavorite flips the favorite flag.
func (p *Pipeline) ToggleFavorite(ctx context.Context, email string) error {
	return p.mutate(ctx, email, func(c *model.Candidate) { c.IsFavorite = !c.IsFavorite })
}

// AddNote prepends a note, keeping the sequence newest first.
func (p *Pipeline) AddNote(ctx context.Context, email, text, author string) error {
	if text == "" {
		return eris.New("note text is required")
	}
	return p.mutate(ctx, email, func(c *model.Candidate) {
		c.Notes = append([]model.Note{model.NewNote(text, author)}, c.Notes...)
	})
}

// UpdateEditable sets the recruiter-editable free-text fields. Nil leaves a
// field untouched; an empty string is an explicit edit.
func (p *Pipeline) UpdateEditable(ctx context.Context, email string, comments, callLog, currentComp *string) error {
	return p.mutate(ctx, email, func(c *model.Candidate) {
		if comments != nil {
			c.Comments = *comments
		}
		if callLog != nil {
			c.CallLog = *callLog
		}
		if currentComp != nil {
			c.CurrentComp = *currentComp
		}
	})
}

func (p *Pipeline) mutate(ctx context.Context, email string, fn func(*model.Candidate)) error {
	cand, found := p.Candidate(email)
	if !found {
		return eris.Wrapf(ErrCandidateNotFound, "mutate %s", email)
	}
	fn(&cand)
	return p.Save(ctx, cand)
}

// applyAnalysis merges a fresh scoring result into the record, preserving
// any resume summary set by the independent on-demand path, persists the
// full blob and sends the best-effort write-back.
func (p *Pipeline) applyAnalysis(ctx context.Context, email string, fresh *model.Analysis) {
	p.mu.Lock()
	idx, ok := p.index[email]
	if !ok {
		p.mu.Unlock()
		return
	}
	cand := p.records[idx]
	cand.Analysis = mergeAnalysis(cand.Analysis, fresh)
	p.records[idx] = cand
	p.mu.Unlock()

	if err := p.store.PutOverride(ctx, email, cand.OverrideBlob()); err != nil {
		zap.L().Error("override write failed after enrichment",
			zap.String("email", email),
			zap.Error(err),
		)
	}
	p.notify(ctx, email, cand.Analysis)
}

func (p *Pipeline) notify(ctx context.Context, email string, a *model.Analysis) {
	if err := p.notifier.NotifyAnalysis(ctx, email, a); err != nil {
		zap.L().Warn("write-back notification failed",
			zap.String("email", email),
			zap.Error(err),
		)
	}
}

// mergeAnalysis replaces scoring fields with the fresh result while keeping
// an existing resume summary: the two are merged additively, never
// overwritten against each other.
func mergeAnalysis(existing, fresh *model.Analysis) *model.Analysis {
	out := *fresh
	if existing != nil && existing.ResumeSummary != "" && out.ResumeSummary == "" {
		out.ResumeSummary = existing.ResumeSummary
	}
	return &out
}

// withResumeSummary sets the resume summary, keeping existing scoring fields.
func withResumeSummary(existing *model.Analysis, summary string) *model.Analysis {
	if existing == nil {
		return &model.Analysis{ResumeSummary: summary}
	}
	out := *existing
	out.ResumeSummary = summary
	return &out
}

// indexByEmail maps email to record position. Duplicate emails in one export
// are unsupported upstream; the last row wins here, matching the store's
// keying, and earlier rows remain visible in the list.
func indexByEmail(records []model.Candidate) map[string]int {
	idx := make(map[string]int, len(records))
	for i, c := range records {
		idx[c.Email] = i
	}
	return idx
}
