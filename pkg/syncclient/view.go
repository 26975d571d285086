package syncclient

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"
)

// View is the client-side replica of the board. Apply is idempotent, so
// events that raced with the initial fetch converge to the same state.
type View struct {
	mu            sync.RWMutex
	announcements *Collection[Announcement]
	entities      *Collection[Entity]
	types         *Collection[EntityType]
}

func NewView() *View {
	return &View{
		announcements: NewCollection(func(a Announcement) int64 { return a.ID }),
		entities:      NewCollection(func(e Entity) int64 { return e.ID }),
		types:         NewCollection(func(t EntityType) int64 { return t.ID }),
	}
}

func (v *View) Seed(s Snapshot) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.announcements.Seed(s.Announcements)
	v.entities.Seed(s.Entities)
	v.types.Seed(s.EntityTypes)
}

// Apply reconciles one event into the view. Adds of a known id and deletes
// of an unknown id are no-ops; an edit of an unknown id inserts it.
// Unknown event names are ignored.
func (v *View) Apply(ev Event) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	switch ev.Name {
	case EventAnnouncementAdded:
		return decodeInto(ev, func(a Announcement) { v.announcements.Add(a) })
	case EventAnnouncementEdited:
		return decodeInto(ev, v.announcements.Put)
	case EventAnnouncementDeleted:
		return v.remove(ev, v.announcements.Remove)

	case EventEntityAdded:
		return decodeInto(ev, func(e Entity) { v.entities.Add(e) })
	case EventEntityEdited:
		return decodeInto(ev, v.entities.Put)
	case EventEntityDeleted:
		return v.remove(ev, v.entities.Remove)

	case EventEntityTypeAdded:
		return decodeInto(ev, func(t EntityType) { v.types.Add(t) })
	case EventEntityTypeEdited:
		return decodeInto(ev, func(t EntityType) {
			v.types.Put(t)
			v.renameType(t)
		})
	case EventEntityTypeDeleted:
		return v.remove(ev, v.types.Remove)
	}
	return nil
}

// renameType copies a renamed type onto the cached entities that use it.
func (v *View) renameType(t EntityType) {
	for _, e := range v.entities.Items() {
		if e.TypeID == nil || *e.TypeID != t.ID {
			continue
		}
		name := t.Name
		e.TypeName = &name
		v.entities.Put(e)
	}
}

func (v *View) remove(ev Event, remove func(int64) bool) error {
	var ref struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(ev.Data, &ref); err != nil {
		return fmt.Errorf("decode %s: %w", ev.Name, err)
	}
	remove(ref.ID)
	return nil
}

func decodeInto[T any](ev Event, apply func(T)) error {
	var item T
	if err := json.Unmarshal(ev.Data, &item); err != nil {
		return fmt.Errorf("decode %s: %w", ev.Name, err)
	}
	apply(item)
	return nil
}

// Announcements returns every cached announcement, expired ones included,
// ordered by priority then id.
func (v *View) Announcements() []Announcement {
	v.mu.RLock()
	list := v.announcements.Items()
	v.mu.RUnlock()
	sortAnnouncements(list)
	return list
}

// ActiveAnnouncements returns the announcements not yet expired on the day
// of now. It is evaluated on every call.
func (v *View) ActiveAnnouncements(now time.Time) []Announcement {
	all := v.Announcements()
	active := all[:0]
	for _, a := range all {
		if a.ActiveOn(now) {
			active = append(active, a)
		}
	}
	return active
}

func (v *View) Entities() []Entity {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.entities.Items()
}

func (v *View) EntityTypes() []EntityType {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.types.Items()
}

func sortAnnouncements(list []Announcement) {
	slices.SortStableFunc(list, func(a, b Announcement) int {
		if a.Priority != b.Priority {
			return a.Priority - b.Priority
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}
