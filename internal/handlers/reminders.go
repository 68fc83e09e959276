package handlers

import (
	"net/http"

	"remindme/internal/auth"
	"remindme/internal/dto"
	"remindme/internal/service"
	"remindme/internal/validate"

	"github.com/gin-gonic/gin"
)

type ReminderHandler struct {
	svc *service.ReminderService
}

func NewReminderHandler(svc *service.ReminderService) *ReminderHandler {
	return &ReminderHandler{svc: svc}
}

func formFromRequest(req dto.ReminderRequest) validate.ReminderForm {
	return validate.ReminderForm{
		Title:     req.Title,
		DateLabel: req.DateLabel,
		TimeLabel: req.TimeLabel,
		Notes:     req.Notes,
		Pinned:    req.Pinned,
		Done:      req.Done,
	}
}

// Home godoc
// @Summary      Home feed
// @Description  Reminders sorted pinned first, then by date and time label, with the next reminder and date groups.
// @Tags         reminders
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.HomeResponse
// @Failure      500  {object}  map[string]string
// @Router       /reminders [get]
func (h *ReminderHandler) Home(c *gin.Context) {
	home, err := h.svc.Home(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, homeToResponse(home))
}

// Create godoc
// @Summary      Create a reminder
// @Tags         reminders
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        body  body      dto.ReminderRequest  true  "Reminder form"
// @Success      201   {object}  dto.ReminderResponse
// @Failure      400   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /reminders [post]
func (h *ReminderHandler) Create(c *gin.Context) {
	var req dto.ReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r, err := h.svc.Save(c.Request.Context(), auth.UserIDFromContext(c), "", formFromRequest(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reminderToResponse(r))
}

// Get godoc
// @Summary      Get a reminder
// @Tags         reminders
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "Reminder ID"
// @Success      200  {object}  dto.ReminderResponse
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /reminders/{id} [get]
func (h *ReminderHandler) Get(c *gin.Context) {
	r, err := h.svc.Get(c.Request.Context(), auth.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reminderToResponse(r))
}

// Update godoc
// @Summary      Overwrite a reminder
// @Tags         reminders
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        id    path      string               true  "Reminder ID"
// @Param        body  body      dto.ReminderRequest  true  "Reminder form"
// @Success      200   {object}  dto.ReminderResponse
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /reminders/{id} [put]
func (h *ReminderHandler) Update(c *gin.Context) {
	var req dto.ReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r, err := h.svc.Save(c.Request.Context(), auth.UserIDFromContext(c), c.Param("id"), formFromRequest(req))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reminderToResponse(r))
}

// ToggleDone godoc
// @Summary      Toggle done
// @Tags         reminders
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "Reminder ID"
// @Success      200  {object}  dto.ReminderResponse
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /reminders/{id}/done [post]
func (h *ReminderHandler) ToggleDone(c *gin.Context) {
	r, err := h.svc.ToggleDone(c.Request.Context(), auth.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reminderToResponse(r))
}

// TogglePinned godoc
// @Summary      Toggle pinned
// @Tags         reminders
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "Reminder ID"
// @Success      200  {object}  dto.ReminderResponse
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /reminders/{id}/pin [post]
func (h *ReminderHandler) TogglePinned(c *gin.Context) {
	r, err := h.svc.TogglePinned(c.Request.Context(), auth.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reminderToResponse(r))
}

// Delete godoc
// @Summary      Delete a reminder
// @Tags         reminders
// @Security     CookieAuth
// @Param        id   path  string  true  "Reminder ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /reminders/{id} [delete]
func (h *ReminderHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), auth.UserIDFromContext(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
