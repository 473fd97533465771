package query

import (
	"context"
	"fmt"
	"time"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/commitment"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practice"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
	"github.com/praxis-hub/praxis-practice-hub/pkg/dateutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// LIST COMMITMENTS QUERY
// Returns a user's commitments, by default the current (non-archived) ones.
// A viewing date narrows the list to commitments whose interval covers that
// day, which is what the history date-picker uses.
// ══════════════════════════════════════════════════════════════════════════════

// ListCommitmentsQuery contains listing parameters for one user.
type ListCommitmentsQuery struct {
	// UserID is the owner of the commitments.
	UserID string

	// ViewDate narrows to commitments covering that calendar day when
	// non-zero.
	ViewDate time.Time

	// IncludeArchived includes archived commitments (history views).
	IncludeArchived bool

	// Page and PageSize paginate the listing when either is positive;
	// zero values return the whole list.
	Page     int
	PageSize int
}

// Validate validates the query.
func (q ListCommitmentsQuery) Validate() error {
	if q.UserID == "" {
		return shared.NewDomainError("query", "ListCommitments", shared.ErrEmptyValue, "user_id is required")
	}
	return nil
}

// CommitmentView pairs a commitment with its resolved template.
type CommitmentView struct {
	Commitment *commitment.Commitment
	Template   *practice.Template
}

// ListCommitmentsResult contains the matching commitments.
type ListCommitmentsResult struct {
	Commitments []CommitmentView
}

// ListCommitmentsHandler handles the ListCommitmentsQuery.
type ListCommitmentsHandler struct {
	templates   practice.Repository
	commitments commitment.Repository
}

// NewListCommitmentsHandler creates a new ListCommitmentsHandler.
func NewListCommitmentsHandler(templates practice.Repository, commitments commitment.Repository) *ListCommitmentsHandler {
	return &ListCommitmentsHandler{templates: templates, commitments: commitments}
}

// Handle executes the list commitments query.
func (h *ListCommitmentsHandler) Handle(ctx context.Context, q ListCommitmentsQuery) (*ListCommitmentsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	filter := commitment.ListFilter{IncludeArchived: q.IncludeArchived}
	if q.Page > 0 || q.PageSize > 0 {
		page := shared.NewPagination(q.Page, q.PageSize)
		filter.Page = &page
	}
	if !q.ViewDate.IsZero() {
		day := dateutil.Normalize(q.ViewDate)
		window, err := shared.NewDateRange(day, day)
		if err != nil {
			return nil, err
		}
		filter.Window = &window
		// A historical day naturally includes commitments archived since.
		filter.IncludeArchived = true
	}

	cmts, err := h.commitments.ListForUser(ctx, q.UserID, filter)
	if err != nil {
		return nil, fmt.Errorf("list_commitments: %w", err)
	}

	// Template rows repeat across commitments; resolve each once.
	byTemplate := make(map[string]*practice.Template)
	views := make([]CommitmentView, 0, len(cmts))
	for _, c := range cmts {
		tpl, ok := byTemplate[c.TemplateID]
		if !ok {
			tpl, err = h.templates.GetByID(ctx, c.TemplateID)
			if err != nil {
				return nil, fmt.Errorf("list_commitments: template %s: %w", c.TemplateID, err)
			}
			byTemplate[c.TemplateID] = tpl
		}
		views = append(views, CommitmentView{Commitment: c, Template: tpl})
	}

	return &ListCommitmentsResult{Commitments: views}, nil
}
