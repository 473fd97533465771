// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"fmt"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practice"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// BROWSE PRACTICES QUERY
// Lists the public template catalog, optionally narrowed by category, or a
// user's own custom practices. Disabled templates stay hidden outside
// curator views.
// ══════════════════════════════════════════════════════════════════════════════

// BrowsePracticesQuery contains catalog listing parameters.
type BrowsePracticesQuery struct {
	// Category narrows the catalog to one tag when non-empty.
	Category string

	// CreatorID switches the listing to a user's custom practices.
	CreatorID string

	// IncludeDisabled includes soft-disabled templates (curator views).
	IncludeDisabled bool
}

// BrowsePracticesResult contains the matching templates.
type BrowsePracticesResult struct {
	Templates []*practice.Template
}

// BrowsePracticesHandler handles the BrowsePracticesQuery.
type BrowsePracticesHandler struct {
	templates practice.Repository
}

// NewBrowsePracticesHandler creates a new BrowsePracticesHandler.
func NewBrowsePracticesHandler(templates practice.Repository) *BrowsePracticesHandler {
	return &BrowsePracticesHandler{templates: templates}
}

// Handle executes the browse practices query.
func (h *BrowsePracticesHandler) Handle(ctx context.Context, q BrowsePracticesQuery) (*BrowsePracticesResult, error) {
	templates, err := h.templates.List(ctx, practice.Filter{
		Category:        q.Category,
		CreatorID:       q.CreatorID,
		IncludeDisabled: q.IncludeDisabled,
	})
	if err != nil {
		return nil, fmt.Errorf("browse_practices: %w", err)
	}
	return &BrowsePracticesResult{Templates: templates}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GET PRACTICE QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GetPracticeQuery fetches a single template by ID.
type GetPracticeQuery struct {
	TemplateID string
}

// GetPracticeResult contains the template.
type GetPracticeResult struct {
	Template *practice.Template
}

// GetPracticeHandler handles the GetPracticeQuery.
type GetPracticeHandler struct {
	templates practice.Repository
}

// NewGetPracticeHandler creates a new GetPracticeHandler.
func NewGetPracticeHandler(templates practice.Repository) *GetPracticeHandler {
	return &GetPracticeHandler{templates: templates}
}

// Handle executes the get practice query.
func (h *GetPracticeHandler) Handle(ctx context.Context, q GetPracticeQuery) (*GetPracticeResult, error) {
	if q.TemplateID == "" {
		return nil, shared.NewDomainError("query", "GetPractice", shared.ErrEmptyValue, "template_id is required")
	}
	tpl, err := h.templates.GetByID(ctx, q.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("get_practice: %w", err)
	}
	return &GetPracticeResult{Template: tpl}, nil
}
