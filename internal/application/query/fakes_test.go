package query

import (
	"context"
	"sort"
	"time"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/analytics"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/commitment"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practice"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practicelog"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/pkg/dateutil"
)

type fakeTemplateRepo struct {
	templates map[string]*practice.Template
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: make(map[string]*practice.Template)}
}

func (r *fakeTemplateRepo) Create(_ context.Context, t *practice.Template) error {
	r.templates[t.ID] = t
	return nil
}

func (r *fakeTemplateRepo) GetByID(_ context.Context, id string) (*practice.Template, error) {
	t, ok := r.templates[id]
	if !ok {
		return nil, shared.ErrPracticeNotFound
	}
	return t, nil
}

func (r *fakeTemplateRepo) Update(_ context.Context, t *practice.Template) error {
	r.templates[t.ID] = t
	return nil
}

func (r *fakeTemplateRepo) List(_ context.Context, filter practice.Filter) ([]*practice.Template, error) {
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
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeTemplateRepo) Delete(_ context.Context, id string) error {
	delete(r.templates, id)
	return nil
}

type fakeCommitmentRepo struct {
	commitments map[string]*commitment.Commitment
}

func newFakeCommitmentRepo() *fakeCommitmentRepo {
	return &fakeCommitmentRepo{commitments: make(map[string]*commitment.Commitment)}
}

func (r *fakeCommitmentRepo) Create(_ context.Context, c *commitment.Commitment) error {
	r.commitments[c.ID] = c
	return nil
}

func (r *fakeCommitmentRepo) GetByID(_ context.Context, id string) (*commitment.Commitment, error) {
	c, ok := r.commitments[id]
	if !ok {
		return nil, shared.ErrCommitmentNotFound
	}
	return c, nil
}

func (r *fakeCommitmentRepo) Update(_ context.Context, c *commitment.Commitment) error {
	r.commitments[c.ID] = c
	return nil
}

func (r *fakeCommitmentRepo) ListForUser(_ context.Context, userID string, filter commitment.ListFilter) ([]*commitment.Commitment, error) {
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
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if filter.Page != nil {
		off := filter.Page.Offset()
		if off > len(out) {
			off = len(out)
		}
		end := off + filter.Page.Limit()
		if end > len(out) {
			end = len(out)
		}
		out = out[off:end]
	}
	return out, nil
}

func (r *fakeCommitmentRepo) CountByTemplate(_ context.Context, templateID string) (int, error) {
	n := 0
	for _, c := range r.commitments {
		if c.TemplateID == templateID {
			n++
		}
	}
	return n, nil
}

type fakeLogRepo struct {
	entries []*practicelog.Entry
}

func (r *fakeLogRepo) Upsert(_ context.Context, commitmentID string, date time.Time, p practicelog.Payload) (*practicelog.Entry, bool, error) {
	for _, e := range r.entries {
		if e.CommitmentID == commitmentID && dateutil.SameDay(e.Date, date) {
			e.Apply(p)
			return e, false, nil
		}
	}
	e := practicelog.New(commitmentID, date, p)
	r.entries = append(r.entries, e)
	return e, true, nil
}

func (r *fakeLogRepo) GetForDate(_ context.Context, commitmentID string, date time.Time) (*practicelog.Entry, error) {
	for _, e := range r.entries {
		if e.CommitmentID == commitmentID && dateutil.SameDay(e.Date, date) {
			return e, nil
		}
	}
	return nil, shared.ErrLogNotFound
}

func (r *fakeLogRepo) List(_ context.Context, commitmentID string, from, to time.Time) ([]*practicelog.Entry, error) {
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
		out = append(out, e)
	}
	return out, nil
}

// fakeStatsCache is a map-backed StatsCache counting hits and sets.
type fakeStatsCache struct {
	stats map[string]analytics.ProgressStats
	hits  int
	sets  int
}

func newFakeStatsCache() *fakeStatsCache {
	return &fakeStatsCache{stats: make(map[string]analytics.ProgressStats)}
}

func statsKey(commitmentID string, window shared.DateRange, today time.Time) string {
	return commitmentID + "|" + dateutil.Key(window.Start) + "|" + dateutil.Key(window.End) + "|" + dateutil.Key(today)
}

func (c *fakeStatsCache) Get(_ context.Context, commitmentID string, window shared.DateRange, today time.Time) (*analytics.ProgressStats, bool) {
	s, ok := c.stats[statsKey(commitmentID, window, today)]
	if !ok {
		return nil, false
	}
	c.hits++
	return &s, true
}

func (c *fakeStatsCache) Set(_ context.Context, commitmentID string, window shared.DateRange, today time.Time, stats analytics.ProgressStats) {
	c.stats[statsKey(commitmentID, window, today)] = stats
	c.sets++
}
