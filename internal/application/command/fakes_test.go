package command

import (
	"context"
	"sync"
	"time"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/commitment"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practice"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practicelog"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/pkg/dateutil"
)

// In-memory repositories mirroring the storage contracts, including the
// uniqueness rules normally enforced by database constraints.

type fakeTemplateRepo struct {
	mu        sync.Mutex
	templates map[string]*practice.Template
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: make(map[string]*practice.Template)}
}

func (r *fakeTemplateRepo) Create(_ context.Context, t *practice.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[t.ID]; ok {
		return shared.ErrPracticeExists
	}
	cp := *t
	r.templates[t.ID] = &cp
	return nil
}

func (r *fakeTemplateRepo) GetByID(_ context.Context, id string) (*practice.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok {
		return nil, shared.ErrPracticeNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTemplateRepo) Update(_ context.Context, t *practice.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[t.ID]; !ok {
		return shared.ErrPracticeNotFound
	}
	cp := *t
	r.templates[t.ID] = &cp
	return nil
}

func (r *fakeTemplateRepo) List(_ context.Context, filter practice.Filter) ([]*practice.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*practice.Template
	for _, t := range r.templates {
		if !filter.IncludeDisabled && t.Disabled {
			continue
		}
		if filter.Category != "" && t.Category != filter.Category {
			continue
		}
		if filter.CreatorID != "" && t.CreatorID != filter.CreatorID {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeTemplateRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.templates[id]; !ok {
		return shared.ErrPracticeNotFound
	}
	delete(r.templates, id)
	return nil
}

type fakeCommitmentRepo struct {
	mu          sync.Mutex
	commitments map[string]*commitment.Commitment
}

func newFakeCommitmentRepo() *fakeCommitmentRepo {
	return &fakeCommitmentRepo{commitments: make(map[string]*commitment.Commitment)}
}

func (r *fakeCommitmentRepo) Create(_ context.Context, c *commitment.Commitment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Same rule as the partial unique index: one non-archived commitment
	// per (user, template).
	for _, existing := range r.commitments {
		if existing.UserID == c.UserID && existing.TemplateID == c.TemplateID &&
			existing.Status != commitment.StatusArchived {
			return shared.ErrCommitmentExists
		}
	}
	cp := *c
	r.commitments[c.ID] = &cp
	return nil
}

func (r *fakeCommitmentRepo) GetByID(_ context.Context, id string) (*commitment.Commitment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.commitments[id]
	if !ok {
		return nil, shared.ErrCommitmentNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCommitmentRepo) Update(_ context.Context, c *commitment.Commitment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.commitments[c.ID]; !ok {
		return shared.ErrCommitmentNotFound
	}
	cp := *c
	r.commitments[c.ID] = &cp
	return nil
}

func (r *fakeCommitmentRepo) ListForUser(_ context.Context, userID string, filter commitment.ListFilter) ([]*commitment.Commitment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*commitment.Commitment
	for _, c := range r.commitments {
		if c.UserID != userID {
			continue
		}
		if !filter.IncludeArchived && c.Status == commitment.StatusArchived {
			continue
		}
		if filter.Window != nil && !c.IntersectsWindow(*filter.Window) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeCommitmentRepo) CountByTemplate(_ context.Context, templateID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.commitments {
		if c.TemplateID == templateID {
			n++
		}
	}
	return n, nil
}

type fakeLogRepo struct {
	mu      sync.Mutex
	entries map[string]*practicelog.Entry // commitmentID + "|" + date key
}

func newFakeLogRepo() *fakeLogRepo {
	return &fakeLogRepo{entries: make(map[string]*practicelog.Entry)}
}

func logKey(commitmentID string, date time.Time) string {
	return commitmentID + "|" + dateutil.Key(date)
}

func (r *fakeLogRepo) Upsert(_ context.Context, commitmentID string, date time.Time, p practicelog.Payload) (*practicelog.Entry, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := logKey(commitmentID, date)
	if existing, ok := r.entries[key]; ok {
		existing.Apply(p)
		cp := *existing
		return &cp, false, nil
	}
	e := practicelog.New(commitmentID, date, p)
	r.entries[key] = e
	cp := *e
	return &cp, true, nil
}

func (r *fakeLogRepo) GetForDate(_ context.Context, commitmentID string, date time.Time) (*practicelog.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[logKey(commitmentID, date)]
	if !ok {
		return nil, shared.ErrLogNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeLogRepo) List(_ context.Context, commitmentID string, from, to time.Time) ([]*practicelog.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*practicelog.Entry
	for _, e := range r.entries {
		if e.CommitmentID != commitmentID {
			continue
		}
		if !from.IsZero() && dateutil.BeforeDay(e.Date, from) {
			continue
		}
		if !to.IsZero() && dateutil.AfterDay(e.Date, to) {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

// fakeEventBus records published events for assertions.
type fakeEventBus struct {
	mu     sync.Mutex
	events []shared.Event
}

func newFakeEventBus() *fakeEventBus {
	return &fakeEventBus{}
}

func (b *fakeEventBus) Publish(event shared.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
	return nil
}

func (b *fakeEventBus) Subscribe(shared.EventType, shared.EventHandler) error { return nil }
func (b *fakeEventBus) SubscribeAll(shared.EventHandler) error                { return nil }
func (b *fakeEventBus) Close() error                                          { return nil }

func (b *fakeEventBus) published(t shared.EventType) []shared.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []shared.Event
	for _, e := range b.events {
		if e.EventType() == t {
			out = append(out, e)
		}
	}
	return out
}
