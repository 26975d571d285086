package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Priority orders announcements on the board; lower values come first.
type Priority int

const (
	PriorityHigh   Priority = 1
	PriorityMedium Priority = 2
	PriorityLow    Priority = 3
)

// PriorityMessage is returned to callers that send an out-of-range priority.
const PriorityMessage = "La prioridad debe ser 1 (Alta), 2 (Media) o 3 (Baja)."

func (p Priority) Valid() bool {
	return p >= PriorityHigh && p <= PriorityLow
}

func (p Priority) String() string {
	switch p {
	case PriorityHigh:
		return "alta"
	case PriorityMedium:
		return "media"
	case PriorityLow:
		return "baja"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

const dateLayout = "2006-01-02"

// Date is a calendar day without time of day or zone. The zero value is unset.
type Date struct {
	t time.Time
}

// NewDate returns the calendar day y-m-d.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate accepts YYYY-MM-DD as well as full RFC 3339 timestamps.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: expected YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Time() time.Time { return d.t }

func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

func (d Date) String() string { return d.t.Format(dateLayout) }

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Announcement is a bulletin-board entry ("novedad").
type Announcement struct {
	ID          int64    `json:"id"`
	Title       string   `json:"titulo"`
	Summary     string   `json:"resumen"`
	Description string   `json:"descripcion"`
	Priority    Priority `json:"prioridad"`
	ExpiresOn   Date     `json:"fechaCaducidad"`
	EntityIDs   []int64  `json:"entidad_ids"`
}

// IsActiveOn reports whether the announcement is still visible on day today.
// An announcement expiring today is active.
func (a Announcement) IsActiveOn(today Date) bool {
	return !a.ExpiresOn.Before(today)
}

// Validate checks the fields every write must carry.
func (a Announcement) Validate() error {
	var fields []string
	if strings.TrimSpace(a.Title) == "" {
		fields = append(fields, "titulo")
	}
	if strings.TrimSpace(a.Description) == "" {
		fields = append(fields, "descripcion")
	}
	if a.ExpiresOn.IsZero() {
		fields = append(fields, "fechaCaducidad")
	}
	if !a.Priority.Valid() {
		if len(fields) == 0 {
			return NewValidationError(PriorityMessage, "prioridad")
		}
		fields = append(fields, "prioridad")
	}
	if len(fields) > 0 {
		return NewValidationError("", fields...)
	}
	for _, id := range a.EntityIDs {
		if id <= 0 {
			return NewValidationError("entidad_ids must contain positive ids", "entidad_ids")
		}
	}
	return nil
}

// UniqueIDs drops repeated ids keeping first occurrence order.
func UniqueIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// SortAnnouncements orders by priority ascending, then id ascending.
func SortAnnouncements(list []Announcement) {
	slices.SortStableFunc(list, func(a, b Announcement) int {
		if a.Priority != b.Priority {
			return int(a.Priority) - int(b.Priority)
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
