package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cbtutils/novedades/internal/core/ports"
)

// EntityHandler serves /entidades.
type EntityHandler struct {
	service ports.EntityService
}

func NewEntityHandler(service ports.EntityService) *EntityHandler {
	return &EntityHandler{service: service}
}

// List handles GET /entidades.
//
// @Summary      List entities with their type name
// @Tags         entidades
// @Produce      json
// @Success      200  {array}   domain.Entity
// @Router       /entidades [get]
func (h *EntityHandler) List(c echo.Context) error {
	list, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Create handles POST /entidades.
//
// @Summary      Create an entity
// @Tags         entidades
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      entityRequest  true  "Entity"
// @Success      201   {object}  domain.Entity
// @Failure      400   {object}  errorResponse
// @Router       /entidades [post]
func (h *EntityHandler) Create(c echo.Context) error {
	var req entityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	created, err := h.service.Create(c.Request().Context(), toEntityInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// Update handles PUT /entidades/:id.
//
// @Summary      Update an entity
// @Tags         entidades
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int            true  "Entity id"
// @Param        body  body      entityRequest  true  "Entity"
// @Success      200   {object}  domain.Entity
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /entidades/{id} [put]
func (h *EntityHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req entityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	updated, err := h.service.Update(c.Request().Context(), id, toEntityInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /entidades/:id.
//
// @Summary      Delete an entity
// @Tags         entidades
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Entity id"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  errorResponse  "still linked to announcements"
// @Failure      404  {object}  errorResponse
// @Router       /entidades/{id} [delete]
func (h *EntityHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if _, err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Entidad eliminada"})
}

// EntityTypeHandler serves /tipos_entidades.
type EntityTypeHandler struct {
	service ports.EntityTypeService
}

func NewEntityTypeHandler(service ports.EntityTypeService) *EntityTypeHandler {
	return &EntityTypeHandler{service: service}
}

// List handles GET /tipos_entidades.
//
// @Summary      List entity types
// @Tags         tipos_entidades
// @Produce      json
// @Success      200  {array}  domain.EntityType
// @Router       /tipos_entidades [get]
func (h *EntityTypeHandler) List(c echo.Context) error {
	list, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Create handles POST /tipos_entidades.
//
// @Summary      Create an entity type
// @Tags         tipos_entidades
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      entityTypeRequest  true  "Entity type"
// @Success      201   {object}  domain.EntityType
// @Failure      400   {object}  errorResponse
// @Router       /tipos_entidades [post]
func (h *EntityTypeHandler) Create(c echo.Context) error {
	var req entityTypeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	created, err := h.service.Create(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// Update handles PUT /tipos_entidades/:id.
//
// @Summary      Rename an entity type
// @Tags         tipos_entidades
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "Entity type id"
// @Param        body  body      entityTypeRequest  true  "Entity type"
// @Success      200   {object}  domain.EntityType
// @Failure      404   {object}  errorResponse
// @Router       /tipos_entidades/{id} [put]
func (h *EntityTypeHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req entityTypeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	updated, err := h.service.Update(c.Request().Context(), id, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /tipos_entidades/:id.
//
// @Summary      Delete an entity type
// @Tags         tipos_entidades
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Entity type id"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  errorResponse  "still referenced by entities"
// @Failure      404  {object}  errorResponse
// @Router       /tipos_entidades/{id} [delete]
func (h *EntityTypeHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if _, err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Tipo de entidad eliminado"})
}
