package handler

import "github.com/cbtutils/novedades/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error  string   `json:"error"`
	Code   string   `json:"code"`
	Fields []string `json:"fields,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type credentialsRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type passwordRequest struct {
	Password string `json:"password" validate:"required"`
}

type deletedUserResponse struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

// --- Entities ---

type entityTypeRequest struct {
	Name string `json:"nombre" validate:"required,max=255"`
}

type entityRequest struct {
	Name   string `json:"nombre"  validate:"required,max=255"`
	TypeID *int64 `json:"tipo_id" validate:"omitempty,gt=0"`
}

// --- Announcements ---

type announcementRequest struct {
	Title       string      `json:"titulo"         validate:"required,max=255"`
	Summary     string      `json:"resumen"`
	Description string      `json:"descripcion"    validate:"required"`
	Priority    int         `json:"prioridad"      validate:"required,min=1,max=3"`
	ExpiresOn   domain.Date `json:"fechaCaducidad"`
	EntityIDs   []int64     `json:"entidad_ids"    validate:"omitempty,dive,gt=0"`
}

type listAnnouncementsQuery struct {
	Active bool `query:"active"`
}

// --- Health ---

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}
