package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/cbtutils/novedades/internal/core/ports"
)

// HeaderIdempotencyKey lets clients retry announcement creation safely.
const HeaderIdempotencyKey = "Idempotency-Key"

// AnnouncementHandler serves /novedades.
type AnnouncementHandler struct {
	service ports.AnnouncementService
}

func NewAnnouncementHandler(service ports.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{service: service}
}

// List handles GET /novedades.
//
// @Summary      List announcements
// @Description  Ordered by priority, then id. active=true hides announcements that expired before today.
// @Tags         novedades
// @Produce      json
// @Param        active  query     bool  false  "Only announcements that have not expired"
// @Success      200     {array}   domain.Announcement
// @Failure      500     {object}  errorResponse
// @Router       /novedades [get]
func (h *AnnouncementHandler) List(c echo.Context) error {
	var q listAnnouncementsQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return err
	}

	list, err := h.service.List(c.Request().Context(), ports.ListAnnouncementsInput{ActiveOnly: q.Active})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// Create handles POST /novedades.
//
// @Summary      Create an announcement
// @Tags         novedades
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header    string               false  "Idempotency key to prevent duplicate submissions"
// @Param        body             body      announcementRequest  true   "Announcement"
// @Success      200              {object}  domain.Announcement
// @Failure      400              {object}  errorResponse
// @Failure      500              {object}  errorResponse
// @Router       /novedades [post]
func (h *AnnouncementHandler) Create(c echo.Context) error {
	var req announcementRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	key := strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))

	created, err := h.service.Create(c.Request().Context(), toAnnouncementInput(req), key)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, created)
}

// Update handles PUT /novedades/:id. The link set is replaced as a whole;
// omitting entidad_ids clears it.
//
// @Summary      Update an announcement
// @Tags         novedades
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                  true  "Announcement id"
// @Param        body  body      announcementRequest  true  "Announcement"
// @Success      200   {object}  domain.Announcement
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /novedades/{id} [put]
func (h *AnnouncementHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req announcementRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	updated, err := h.service.Update(c.Request().Context(), id, toAnnouncementInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /novedades/:id.
//
// @Summary      Delete an announcement
// @Tags         novedades
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Announcement id"
// @Success      200  {object}  messageResponse
// @Failure      404  {object}  errorResponse
// @Router       /novedades/{id} [delete]
func (h *AnnouncementHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if _, err := h.service.Delete(c.Request().Context(), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Novedad eliminada"})
}
