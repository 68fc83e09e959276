package handlers

import (
	"errors"
	"net/http"

	dom "remindme/internal/domain"
	"remindme/internal/dto"
	"remindme/internal/feed"
	"remindme/internal/photos"
	"remindme/internal/service"
	"remindme/internal/validate"

	"github.com/gin-gonic/gin"
)

// writeError maps service errors to a status. Backend errors are passed
// through unmasked.
func writeError(c *gin.Context, err error) {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, photos.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUnknownItem):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func userToResponse(u dom.User) dto.UserResponse {
	return dto.UserResponse{ID: u.ID, Email: u.Email}
}

func reminderToResponse(r dom.Reminder) dto.ReminderResponse {
	return dto.ReminderResponse{
		ID:        r.ID,
		Title:     r.Title,
		DateLabel: r.DateLabel,
		TimeLabel: r.TimeLabel,
		Notes:     r.Notes,
		Pinned:    r.Pinned,
		Done:      r.Done,
		Rev:       r.Rev,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func remindersToResponses(list []dom.Reminder) []dto.ReminderResponse {
	out := make([]dto.ReminderResponse, len(list))
	for i := range list {
		out[i] = reminderToResponse(list[i])
	}
	return out
}

func homeToResponse(h feed.HomeFeed) dto.HomeResponse {
	resp := dto.HomeResponse{
		Items:  remindersToResponses(h.Reminders),
		Groups: make([]dto.ReminderGroup, len(h.Groups)),
	}
	if h.Next != nil {
		next := reminderToResponse(*h.Next)
		resp.Next = &next
	}
	for i, g := range h.Groups {
		resp.Groups[i] = dto.ReminderGroup{DateLabel: g.DateLabel, Items: remindersToResponses(g.Reminders)}
	}
	return resp
}

func itemToResponse(it dom.ShoppingItem) dto.ShoppingItemResponse {
	return dto.ShoppingItemResponse{
		ID:           it.ID,
		Name:         it.Name,
		SectionID:    it.SectionID,
		SectionTitle: it.SectionTitle,
		Checked:      it.Checked,
		Rev:          it.Rev,
		CreatedAt:    it.CreatedAt,
	}
}

func itemsToResponses(list []dom.ShoppingItem) []dto.ShoppingItemResponse {
	out := make([]dto.ShoppingItemResponse, len(list))
	for i := range list {
		out[i] = itemToResponse(list[i])
	}
	return out
}

func shoppingToResponse(f feed.ShoppingFeed) dto.ShoppingListResponse {
	resp := dto.ShoppingListResponse{
		Items:  itemsToResponses(f.Items),
		Groups: make([]dto.ShoppingGroup, len(f.Groups)),
	}
	for i, g := range f.Groups {
		resp.Groups[i] = dto.ShoppingGroup{SectionTitle: g.SectionTitle, Items: itemsToResponses(g.Items)}
	}
	return resp
}

func photoToResponse(p photos.Photo) dto.PhotoResponse {
	return dto.PhotoResponse{ID: p.ID, ContentType: p.ContentType, Size: p.Size, CreatedAt: p.CreatedAt}
}
