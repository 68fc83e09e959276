package handlers

import (
	"errors"
	"io"
	"net/http"

	"remindme/internal/auth"
	"remindme/internal/dto"
	"remindme/internal/photos"

	"github.com/gin-gonic/gin"
)

// multipart headers and boundaries on top of the photo itself
const multipartOverhead = 64 << 10

type PhotoHandler struct {
	store *photos.Store
}

func NewPhotoHandler(store *photos.Store) *PhotoHandler {
	return &PhotoHandler{store: store}
}

// Upload godoc
// @Summary      Add a photo note
// @Tags         photos
// @Accept       multipart/form-data
// @Produce      json
// @Security     CookieAuth
// @Param        photo  formData  file  true  "Image"
// @Success      201    {object}  dto.PhotoResponse
// @Failure      400    {object}  map[string]string
// @Failure      413    {object}  map[string]string
// @Router       /photos [post]
func (h *PhotoHandler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.store.MaxBytes()+multipartOverhead)
	fh, err := c.FormFile("photo")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": photos.ErrTooLarge.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.store.MaxBytes()+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.store.Add(auth.UserIDFromContext(c), data)
	if err != nil {
		switch {
		case errors.Is(err, photos.ErrTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		case errors.Is(err, photos.ErrNotImage), errors.Is(err, photos.ErrEmpty):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			writeError(c, err)
		}
		return
	}
	c.JSON(http.StatusCreated, photoToResponse(p))
}

// List godoc
// @Summary      List photo notes, newest first
// @Tags         photos
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  dto.ListPhotosResponse
// @Router       /photos [get]
func (h *PhotoHandler) List(c *gin.Context) {
	list := h.store.List(auth.UserIDFromContext(c))
	resp := dto.ListPhotosResponse{Items: make([]dto.PhotoResponse, len(list))}
	for i, p := range list {
		resp.Items[i] = photoToResponse(p)
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Photo bytes for preview
// @Tags         photos
// @Produce      image/jpeg,image/png,image/gif,image/webp
// @Security     CookieAuth
// @Param        id   path  string  true  "Photo ID"
// @Success      200
// @Failure      404  {object}  map[string]string
// @Router       /photos/{id} [get]
func (h *PhotoHandler) Get(c *gin.Context) {
	p, err := h.store.Get(auth.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, p.ContentType, p.Data)
}

// Delete godoc
// @Summary      Delete a photo note
// @Tags         photos
// @Security     CookieAuth
// @Param        id   path  string  true  "Photo ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /photos/{id} [delete]
func (h *PhotoHandler) Delete(c *gin.Context) {
	if err := h.store.Delete(auth.UserIDFromContext(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
