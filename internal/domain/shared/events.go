// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Events are advisory: readers recompute analytics
// lazily, so the only in-process consumer today is stats-cache invalidation.
const (
	// Commitment events
	EventCommitmentJoined        EventType = "commitment.joined"
	EventCommitmentStatusChanged EventType = "commitment.status_changed"
	EventCommitmentDatesChanged  EventType = "commitment.dates_changed"
	EventCommitmentArchived      EventType = "commitment.archived"

	// Log ledger events
	EventLogUpserted EventType = "practicelog.upserted"

	// Catalog events
	EventPracticeCreated  EventType = "practice.created"
	EventPracticeUpdated  EventType = "practice.updated"
	EventPracticeDisabled EventType = "practice.disabled"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type        EventType `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	AggregateId string    `json:"aggregate_id"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
	}
}

// CommitmentJoinedEvent is emitted when a user joins a practice.
type CommitmentJoinedEvent struct {
	BaseEvent
	UserID     string `json:"user_id"`
	PracticeID string `json:"practice_id"`
	StartDate  string `json:"start_date"`
}

// Payload implements Event interface.
func (e CommitmentJoinedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":     e.UserID,
		"practice_id": e.PracticeID,
		"start_date":  e.StartDate,
	}
}

// NewCommitmentJoinedEvent creates a CommitmentJoinedEvent.
func NewCommitmentJoinedEvent(commitmentID, userID, practiceID, startDate string) CommitmentJoinedEvent {
	return CommitmentJoinedEvent{
		BaseEvent:  NewBaseEvent(EventCommitmentJoined, commitmentID),
		UserID:     userID,
		PracticeID: practiceID,
		StartDate:  startDate,
	}
}

// CommitmentStatusChangedEvent is emitted on any lifecycle transition,
// archival included.
type CommitmentStatusChangedEvent struct {
	BaseEvent
	UserID    string `json:"user_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// Payload implements Event interface.
func (e CommitmentStatusChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":    e.UserID,
		"old_status": e.OldStatus,
		"new_status": e.NewStatus,
	}
}

// NewCommitmentStatusChangedEvent creates a CommitmentStatusChangedEvent.
func NewCommitmentStatusChangedEvent(commitmentID, userID, oldStatus, newStatus string) CommitmentStatusChangedEvent {
	t := EventCommitmentStatusChanged
	if newStatus == "ARCHIVED" {
		t = EventCommitmentArchived
	}
	return CommitmentStatusChangedEvent{
		BaseEvent: NewBaseEvent(t, commitmentID),
		UserID:    userID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}
}

// CommitmentDatesChangedEvent is emitted when a commitment's window moves.
type CommitmentDatesChangedEvent struct {
	BaseEvent
	UserID    string `json:"user_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date,omitempty"`
}

// Payload implements Event interface.
func (e CommitmentDatesChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":    e.UserID,
		"start_date": e.StartDate,
		"end_date":   e.EndDate,
	}
}

// NewCommitmentDatesChangedEvent creates a CommitmentDatesChangedEvent.
func NewCommitmentDatesChangedEvent(commitmentID, userID, startDate, endDate string) CommitmentDatesChangedEvent {
	return CommitmentDatesChangedEvent{
		BaseEvent: NewBaseEvent(EventCommitmentDatesChanged, commitmentID),
		UserID:    userID,
		StartDate: startDate,
		EndDate:   endDate,
	}
}

// LogUpsertedEvent is emitted after every successful ledger write.
type LogUpsertedEvent struct {
	BaseEvent
	CommitmentID string `json:"commitment_id"`
	Date         string `json:"date"`
	Completed    bool   `json:"completed"`
	Created      bool   `json:"created"` // false when an existing entry was overwritten
}

// Payload implements Event interface.
func (e LogUpsertedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"commitment_id": e.CommitmentID,
		"date":          e.Date,
		"completed":     e.Completed,
		"created":       e.Created,
	}
}

// NewLogUpsertedEvent creates a LogUpsertedEvent. The aggregate is the
// owning commitment so cache invalidation can key off it directly.
func NewLogUpsertedEvent(commitmentID, date string, completed, created bool) LogUpsertedEvent {
	return LogUpsertedEvent{
		BaseEvent:    NewBaseEvent(EventLogUpserted, commitmentID),
		CommitmentID: commitmentID,
		Date:         date,
		Completed:    completed,
		Created:      created,
	}
}

// PracticeChangedEvent covers catalog create/update/disable.
type PracticeChangedEvent struct {
	BaseEvent
	Title string `json:"title"`
}

// Payload implements Event interface.
func (e PracticeChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"title": e.Title,
	}
}

// NewPracticeChangedEvent creates a PracticeChangedEvent of the given type.
func NewPracticeChangedEvent(eventType EventType, practiceID, title string) PracticeChangedEvent {
	return PracticeChangedEvent{
		BaseEvent: NewBaseEvent(eventType, practiceID),
		Title:     title,
	}
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventBus publishes domain events to subscribed handlers.
type EventBus interface {
	// Publish sends an event to all subscribed handlers.
	Publish(event Event) error

	// Subscribe registers a handler for a specific event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error

	// Close shuts the bus down and waits for in-flight handlers.
	Close() error
}
