package domain

import "strings"

// EntityType groups entities (e.g. "Área", "Sede").
type EntityType struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

// Entity is an organizational unit announcements can be linked to.
// TypeName is resolved from the entity type and is nil when TypeID is.
type Entity struct {
	ID       int64   `json:"id"`
	Name     string  `json:"nombre"`
	TypeID   *int64  `json:"tipo_id"`
	TypeName *string `json:"tipo"`
}

func (t EntityType) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return NewValidationError("nombre is required", "nombre")
	}
	return nil
}

func (e Entity) Validate() error {
	var fields []string
	if strings.TrimSpace(e.Name) == "" {
		fields = append(fields, "nombre")
	}
	if e.TypeID != nil && *e.TypeID <= 0 {
		fields = append(fields, "tipo_id")
	}
	if len(fields) > 0 {
		return NewValidationError("", fields...)
	}
	return nil
}
