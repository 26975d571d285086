package syncclient

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func ev(t *testing.T, name string, data any) Event {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return Event{Name: name, Data: raw}
}

func ptr[T any](v T) *T { return &v }

func TestCollection(t *testing.T) {
	c := NewCollection(func(t EntityType) int64 { return t.ID })
	c.Seed([]EntityType{{ID: 2, Name: "Sede"}, {ID: 1, Name: "Área"}})

	if c.Add(EntityType{ID: 1, Name: "otro"}) {
		t.Fatalf("Add must not replace an existing id")
	}
	c.Put(EntityType{ID: 3, Name: "Departamento"})
	if !c.Remove(2) || c.Remove(2) {
		t.Fatalf("Remove must report presence once")
	}

	want := []EntityType{{ID: 1, Name: "Área"}, {ID: 3, Name: "Departamento"}}
	if diff := cmp.Diff(want, c.Items()); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestView_Reconciliation(t *testing.T) {
	a1 := Announcement{ID: 1, Title: "uno", Priority: 2, ExpiresOn: "2099-01-01", EntityIDs: []int64{}}
	a2 := Announcement{ID: 2, Title: "dos", Priority: 1, ExpiresOn: "2099-01-01", EntityIDs: []int64{}}

	tests := []struct {
		name   string
		seed   []Announcement
		events []Event
		want   []Announcement
	}{
		{
			name:   "add twice yields one entry",
			events: []Event{ev(t, EventAnnouncementAdded, a1), ev(t, EventAnnouncementAdded, a1)},
			want:   []Announcement{a1},
		},
		{
			name:   "add of a seeded row is ignored",
			seed:   []Announcement{a1},
			events: []Event{ev(t, EventAnnouncementAdded, Announcement{ID: 1, Title: "stale", Priority: 2})},
			want:   []Announcement{a1},
		},
		{
			name:   "edit replaces",
			seed:   []Announcement{a1},
			events: []Event{ev(t, EventAnnouncementEdited, Announcement{ID: 1, Title: "uno bis", Priority: 2, ExpiresOn: "2099-01-01", EntityIDs: []int64{}})},
			want:   []Announcement{{ID: 1, Title: "uno bis", Priority: 2, ExpiresOn: "2099-01-01", EntityIDs: []int64{}}},
		},
		{
			name:   "edit of unknown inserts",
			events: []Event{ev(t, EventAnnouncementEdited, a2)},
			want:   []Announcement{a2},
		},
		{
			name:   "delete of unknown is a no-op",
			seed:   []Announcement{a1},
			events: []Event{ev(t, EventAnnouncementDeleted, map[string]int64{"id": 9})},
			want:   []Announcement{a1},
		},
		{
			name:   "add then delete",
			events: []Event{ev(t, EventAnnouncementAdded, a1), ev(t, EventAnnouncementDeleted, map[string]int64{"id": 1})},
			want:   []Announcement{},
		},
		{
			name:   "ordered by priority then id",
			seed:   []Announcement{a1},
			events: []Event{ev(t, EventAnnouncementAdded, a2)},
			want:   []Announcement{a2, a1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewView()
			v.Seed(Snapshot{Announcements: tt.seed})
			for _, e := range tt.events {
				if err := v.Apply(e); err != nil {
					t.Fatalf("apply %s: %v", e.Name, err)
				}
			}
			if diff := cmp.Diff(tt.want, v.Announcements()); diff != "" {
				t.Fatalf("announcements mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestView_MalformedEventKeepsState(t *testing.T) {
	v := NewView()
	seed := []Announcement{{ID: 1, Title: "uno", Priority: 1, ExpiresOn: "2099-01-01"}}
	v.Seed(Snapshot{Announcements: seed})

	err := v.Apply(Event{Name: EventAnnouncementEdited, Data: json.RawMessage(`{"id":"x"}`)})
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if err := v.Apply(Event{Name: "something-new", Data: json.RawMessage(`{}`)}); err != nil {
		t.Fatalf("unknown events must be ignored, got %v", err)
	}
	if diff := cmp.Diff(seed, v.Announcements()); diff != "" {
		t.Fatalf("state changed (-want +got):\n%s", diff)
	}
}

func TestView_EntityTypeRenamePropagates(t *testing.T) {
	v := NewView()
	v.Seed(Snapshot{
		EntityTypes: []EntityType{{ID: 1, Name: "Área"}, {ID: 2, Name: "Sede"}},
		Entities: []Entity{
			{ID: 10, Name: "Sistemas", TypeID: ptr(int64(1)), TypeName: ptr("Área")},
			{ID: 11, Name: "Centro", TypeID: ptr(int64(2)), TypeName: ptr("Sede")},
			{ID: 12, Name: "Suelta"},
		},
	})

	if err := v.Apply(ev(t, EventEntityTypeEdited, EntityType{ID: 1, Name: "Dirección"})); err != nil {
		t.Fatalf("apply: %v", err)
	}

	want := []Entity{
		{ID: 10, Name: "Sistemas", TypeID: ptr(int64(1)), TypeName: ptr("Dirección")},
		{ID: 11, Name: "Centro", TypeID: ptr(int64(2)), TypeName: ptr("Sede")},
		{ID: 12, Name: "Suelta"},
	}
	if diff := cmp.Diff(want, v.Entities()); diff != "" {
		t.Fatalf("entities mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]EntityType{{ID: 1, Name: "Dirección"}, {ID: 2, Name: "Sede"}}, v.EntityTypes()); diff != "" {
		t.Fatalf("types mismatch (-want +got):\n%s", diff)
	}
}

func TestView_ActiveAnnouncements(t *testing.T) {
	v := NewView()
	v.Seed(Snapshot{Announcements: []Announcement{
		{ID: 1, Title: "yesterday", Priority: 1, ExpiresOn: "2026-05-09"},
		{ID: 2, Title: "today", Priority: 2, ExpiresOn: "2026-05-10"},
		{ID: 3, Title: "later", Priority: 1, ExpiresOn: "2026-06-01"},
	}})

	titles := func(list []Announcement) []string {
		out := make([]string, 0, len(list))
		for _, a := range list {
			out = append(out, a.Title)
		}
		return out
	}

	day := time.Date(2026, 5, 10, 23, 59, 0, 0, time.UTC)
	if diff := cmp.Diff([]string{"later", "today"}, titles(v.ActiveAnnouncements(day))); diff != "" {
		t.Fatalf("active mismatch (-want +got):\n%s", diff)
	}
	// Crossing midnight drops "today" without any event.
	if diff := cmp.Diff([]string{"later"}, titles(v.ActiveAnnouncements(day.Add(time.Minute)))); diff != "" {
		t.Fatalf("active after midnight mismatch (-want +got):\n%s", diff)
	}
	if got := len(v.Announcements()); got != 3 {
		t.Fatalf("expired rows must stay cached, got %d", got)
	}
}
