package command

import (
	"context"
	"fmt"

	"github.com/praxis-hub/praxis-practice-hub/internal/domain/commitment"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/practice"
	"github.com/praxis-hub/praxis-practice-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// PRACTICE CATALOG COMMANDS
// Create, update, disable, and delete practice templates. Curated catalog
// entries have no creator; custom practices belong to a single user. A
// template referenced by any commitment is never hard-deleted, only
// disabled, so archived history keeps resolving.
// ══════════════════════════════════════════════════════════════════════════════

// CreatePracticeCommand contains the data for a new template or custom
// practice.
type CreatePracticeCommand struct {
	// Title is the display name.
	Title string

	// Description is optional free text.
	Description string

	// Category is the catalog tag.
	Category string

	// Tracking is BOOLEAN, NUMERIC, or TEXT; immutable after creation.
	Tracking string

	// CreatorID is empty for curated catalog templates and set to the
	// owning user for custom practices.
	CreatorID string
}

// CreatePracticeResult contains the created template.
type CreatePracticeResult struct {
	Template *practice.Template
}

// CreatePracticeHandler handles the CreatePracticeCommand.
type CreatePracticeHandler struct {
	templates practice.Repository
	events    shared.EventBus
}

// NewCreatePracticeHandler creates a new CreatePracticeHandler.
func NewCreatePracticeHandler(templates practice.Repository, events shared.EventBus) *CreatePracticeHandler {
	return &CreatePracticeHandler{templates: templates, events: events}
}

// Handle executes the create practice command.
func (h *CreatePracticeHandler) Handle(ctx context.Context, cmd CreatePracticeCommand) (*CreatePracticeResult, error) {
	tracking, err := practice.ParseTrackingType(cmd.Tracking)
	if err != nil {
		return nil, err
	}

	tpl, err := practice.New(cmd.Title, cmd.Description, cmd.Category, tracking, cmd.CreatorID)
	if err != nil {
		return nil, err
	}

	if err := h.templates.Create(ctx, tpl); err != nil {
		return nil, fmt.Errorf("create_practice: %w", err)
	}

	_ = h.events.Publish(shared.NewPracticeChangedEvent(shared.EventPracticeCreated, tpl.ID, tpl.Title))

	return &CreatePracticeResult{Template: tpl}, nil
}

// UpdatePracticeCommand replaces a template's editable fields. Tracking
// type is not among them.
type UpdatePracticeCommand struct {
	// TemplateID is the template to update.
	TemplateID string

	// ActorID must own the template when it is a custom practice; empty
	// means a curator acting on the public catalog.
	ActorID string

	Title       string
	Description string
	Category    string
}

// UpdatePracticeResult contains the updated template.
type UpdatePracticeResult struct {
	Template *practice.Template
}

// UpdatePracticeHandler handles the UpdatePracticeCommand.
type UpdatePracticeHandler struct {
	templates practice.Repository
	events    shared.EventBus
}

// NewUpdatePracticeHandler creates a new UpdatePracticeHandler.
func NewUpdatePracticeHandler(templates practice.Repository, events shared.EventBus) *UpdatePracticeHandler {
	return &UpdatePracticeHandler{templates: templates, events: events}
}

// Handle executes the update practice command.
func (h *UpdatePracticeHandler) Handle(ctx context.Context, cmd UpdatePracticeCommand) (*UpdatePracticeResult, error) {
	if cmd.TemplateID == "" {
		return nil, shared.NewDomainError("command", "UpdatePractice", shared.ErrEmptyValue, "template_id is required")
	}

	tpl, err := h.templates.GetByID(ctx, cmd.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("update_practice: %w", err)
	}
	if err := checkCatalogActor(tpl, cmd.ActorID); err != nil {
		return nil, err
	}

	if err := tpl.Update(cmd.Title, cmd.Description, cmd.Category); err != nil {
		return nil, err
	}
	if err := h.templates.Update(ctx, tpl); err != nil {
		return nil, fmt.Errorf("update_practice: %w", err)
	}

	_ = h.events.Publish(shared.NewPracticeChangedEvent(shared.EventPracticeUpdated, tpl.ID, tpl.Title))

	return &UpdatePracticeResult{Template: tpl}, nil
}

// RemovePracticeCommand disables or deletes a template. Templates with any
// referencing commitment are soft-disabled regardless of the Delete flag.
type RemovePracticeCommand struct {
	// TemplateID is the template to remove.
	TemplateID string

	// ActorID must own custom practices; empty means a curator.
	ActorID string

	// Delete requests a hard delete. Only honored when nothing
	// references the template.
	Delete bool
}

// RemovePracticeResult reports what actually happened.
type RemovePracticeResult struct {
	// Deleted is true when the row was removed; false means it was
	// disabled instead.
	Deleted bool
}

// RemovePracticeHandler handles the RemovePracticeCommand.
type RemovePracticeHandler struct {
	templates   practice.Repository
	commitments commitment.Repository
	events      shared.EventBus
}

// NewRemovePracticeHandler creates a new RemovePracticeHandler.
func NewRemovePracticeHandler(
	templates practice.Repository,
	commitments commitment.Repository,
	events shared.EventBus,
) *RemovePracticeHandler {
	return &RemovePracticeHandler{templates: templates, commitments: commitments, events: events}
}

// Handle executes the remove practice command.
func (h *RemovePracticeHandler) Handle(ctx context.Context, cmd RemovePracticeCommand) (*RemovePracticeResult, error) {
	if cmd.TemplateID == "" {
		return nil, shared.NewDomainError("command", "RemovePractice", shared.ErrEmptyValue, "template_id is required")
	}

	tpl, err := h.templates.GetByID(ctx, cmd.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("remove_practice: %w", err)
	}
	if err := checkCatalogActor(tpl, cmd.ActorID); err != nil {
		return nil, err
	}

	refs, err := h.commitments.CountByTemplate(ctx, cmd.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("remove_practice: %w", err)
	}

	if cmd.Delete && refs == 0 {
		if err := h.templates.Delete(ctx, cmd.TemplateID); err != nil {
			return nil, fmt.Errorf("remove_practice: %w", err)
		}
		return &RemovePracticeResult{Deleted: true}, nil
	}

	tpl.Disable()
	if err := h.templates.Update(ctx, tpl); err != nil {
		return nil, fmt.Errorf("remove_practice: %w", err)
	}

	_ = h.events.Publish(shared.NewPracticeChangedEvent(shared.EventPracticeDisabled, tpl.ID, tpl.Title))

	return &RemovePracticeResult{Deleted: false}, nil
}

// checkCatalogActor enforces write access to a template. Curated catalog
// entries accept only a curator (empty actor); custom practices accept
// only their owner.
func checkCatalogActor(tpl *practice.Template, actorID string) error {
	if tpl.CreatorID == "" {
		if actorID != "" {
			return shared.ErrForbidden
		}
		return nil
	}
	if !tpl.OwnedBy(actorID) {
		return shared.ErrForbidden
	}
	return nil
}
