package handlers

import (
	"net/http"

	"remindme/internal/auth"
	"remindme/internal/dto"
	"remindme/internal/service"

	"github.com/gin-gonic/gin"
)

type ShoppingHandler struct {
	svc *service.ShoppingService
}

func NewShoppingHandler(svc *service.ShoppingService) *ShoppingHandler {
	return &ShoppingHandler{svc: svc}
}

// Categories godoc
// @Summary      Catalog sections with selection state
// @Tags         shopping
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.CategoriesResponse
// @Failure      500  {object}  map[string]string
// @Router       /categories [get]
func (h *ShoppingHandler) Categories(c *gin.Context) {
	cats, err := h.svc.Categories(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	resp := dto.CategoriesResponse{Sections: make([]dto.CategoryResponse, len(cats))}
	for i, cat := range cats {
		items := make([]dto.CategoryItemResponse, len(cat.Items))
		for j, it := range cat.Items {
			items[j] = dto.CategoryItemResponse{Name: it.Name, Selected: it.Selected}
		}
		resp.Sections[i] = dto.CategoryResponse{ID: cat.ID, Title: cat.Title, Items: items}
	}
	c.JSON(http.StatusOK, resp)
}

// Toggle godoc
// @Summary      Add or remove a catalog item
// @Tags         shopping
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        section  path      string                     true  "Section ID"
// @Param        body     body      dto.ToggleCategoryRequest  true  "Item name"
// @Success      200      {object}  dto.ToggleCategoryResponse
// @Failure      400      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /categories/{section}/toggle [post]
func (h *ShoppingHandler) Toggle(c *gin.Context) {
	var req dto.ToggleCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.svc.Toggle(c.Request.Context(), auth.UserIDFromContext(c), c.Param("section"), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToggleCategoryResponse{Added: res.Added, Item: itemToResponse(res.Item)})
}

// List godoc
// @Summary      Shopping list
// @Description  Unchecked items first, then by section title and name, plus groups by section title.
// @Tags         shopping
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.ShoppingListResponse
// @Failure      500  {object}  map[string]string
// @Router       /shopping [get]
func (h *ShoppingHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, shoppingToResponse(list))
}

// ToggleChecked godoc
// @Summary      Toggle checked
// @Tags         shopping
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "Item ID"
// @Success      200  {object}  dto.ShoppingItemResponse
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /shopping/{id}/check [post]
func (h *ShoppingHandler) ToggleChecked(c *gin.Context) {
	it, err := h.svc.ToggleChecked(c.Request.Context(), auth.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, itemToResponse(it))
}

// Remove godoc
// @Summary      Remove an item
// @Tags         shopping
// @Security     CookieAuth
// @Param        id   path  string  true  "Item ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /shopping/{id} [delete]
func (h *ShoppingHandler) Remove(c *gin.Context) {
	if err := h.svc.Remove(c.Request.Context(), auth.UserIDFromContext(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Clear godoc
// @Summary      Remove every item
// @Tags         shopping
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.ClearShoppingResponse
// @Failure      500  {object}  map[string]string
// @Router       /shopping [delete]
func (h *ShoppingHandler) Clear(c *gin.Context) {
	n, err := h.svc.Clear(c.Request.Context(), auth.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ClearShoppingResponse{Removed: n})
}
