package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventName identifies the kind of change carried by a ChangeEvent.
type EventName string

const (
	EventAnnouncementAdded   EventName = "announcement-added"
	EventAnnouncementEdited  EventName = "announcement-edited"
	EventAnnouncementDeleted EventName = "announcement-deleted"
	EventEntityAdded         EventName = "entity-added"
	EventEntityEdited        EventName = "entity-edited"
	EventEntityDeleted       EventName = "entity-deleted"
	EventEntityTypeAdded     EventName = "entity-type-added"
	EventEntityTypeEdited    EventName = "entity-type-edited"
	EventEntityTypeDeleted   EventName = "entity-type-deleted"
)

// Resource returns the record kind the event refers to.
func (n EventName) Resource() string {
	switch n {
	case EventAnnouncementAdded, EventAnnouncementEdited, EventAnnouncementDeleted:
		return "announcement"
	case EventEntityAdded, EventEntityEdited, EventEntityDeleted:
		return "entity"
	case EventEntityTypeAdded, EventEntityTypeEdited, EventEntityTypeDeleted:
		return "entity_type"
	}
	return "unknown"
}

// DeletedRef is the payload of every *-deleted event.
type DeletedRef struct {
	ID int64 `json:"id"`
}

// ChangeEvent is a committed mutation pushed to subscribers.
// Data holds the canonical row as stored after the write.
type ChangeEvent struct {
	ID         string          `json:"id"`
	Name       EventName       `json:"event"`
	ResourceID int64           `json:"resource_id"`
	Data       json.RawMessage `json:"data"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewChangeEvent serializes payload once so every sink shares the same bytes.
func NewChangeEvent(name EventName, resourceID int64, payload any, now time.Time) (ChangeEvent, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return ChangeEvent{}, fmt.Errorf("encode %s payload: %w", name, err)
	}
	return ChangeEvent{
		ID:         uuid.NewString(),
		Name:       name,
		ResourceID: resourceID,
		Data:       data,
		OccurredAt: now.UTC(),
	}, nil
}

// Key groups events of the same record, e.g. "announcement:12".
func (e ChangeEvent) Key() string {
	return fmt.Sprintf("%s:%d", e.Name.Resource(), e.ResourceID)
}
