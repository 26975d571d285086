package syncclient

import (
	"encoding/json"
	"time"
)

// Event names pushed by the server on /ws.
const (
	EventAnnouncementAdded   = "announcement-added"
	EventAnnouncementEdited  = "announcement-edited"
	EventAnnouncementDeleted = "announcement-deleted"
	EventEntityAdded         = "entity-added"
	EventEntityEdited        = "entity-edited"
	EventEntityDeleted       = "entity-deleted"
	EventEntityTypeAdded     = "entity-type-added"
	EventEntityTypeEdited    = "entity-type-edited"
	EventEntityTypeDeleted   = "entity-type-deleted"

	// EventSnapshot is reported to OnChange after the initial fetch seeds the view.
	EventSnapshot = "snapshot"
)

const dateLayout = "2006-01-02"

type Announcement struct {
	ID          int64   `json:"id"`
	Title       string  `json:"titulo"`
	Summary     string  `json:"resumen"`
	Description string  `json:"descripcion"`
	Priority    int     `json:"prioridad"`
	ExpiresOn   string  `json:"fechaCaducidad"`
	EntityIDs   []int64 `json:"entidad_ids"`
}

// ActiveOn reports whether the announcement is still shown on the calendar
// day of now. Dates are YYYY-MM-DD so they compare lexically.
func (a Announcement) ActiveOn(now time.Time) bool {
	return a.ExpiresOn >= now.Format(dateLayout)
}

type Entity struct {
	ID       int64   `json:"id"`
	Name     string  `json:"nombre"`
	TypeID   *int64  `json:"tipo_id"`
	TypeName *string `json:"tipo"`
}

type EntityType struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

// Event is one change notification as received from the stream.
type Event struct {
	ID         string          `json:"id"`
	Name       string          `json:"event"`
	ResourceID int64           `json:"resource_id"`
	Data       json.RawMessage `json:"data"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Snapshot is the result of the initial full fetch.
type Snapshot struct {
	Announcements []Announcement
	Entities      []Entity
	EntityTypes   []EntityType
}
