package dto

import "time"

type ShoppingItemResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	SectionID    string    `json:"section_id"`
	SectionTitle string    `json:"section_title"`
	Checked      bool      `json:"checked"`
	Rev          int64     `json:"rev"`
	CreatedAt    time.Time `json:"created_at"`
}

type ShoppingGroup struct {
	SectionTitle string                 `json:"section_title"`
	Items        []ShoppingItemResponse `json:"items"`
}

type ShoppingListResponse struct {
	Items  []ShoppingItemResponse `json:"items"`
	Groups []ShoppingGroup        `json:"groups"`
}

// ToggleCategoryRequest names the catalog item to add or remove.
type ToggleCategoryRequest struct {
	Name string `json:"name" binding:"required"`
}

type ToggleCategoryResponse struct {
	Added bool                 `json:"added"`
	Item  ShoppingItemResponse `json:"item"`
}

type CategoryItemResponse struct {
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

type CategoryResponse struct {
	ID    string                 `json:"id"`
	Title string                 `json:"title"`
	Items []CategoryItemResponse `json:"items"`
}

type CategoriesResponse struct {
	Sections []CategoryResponse `json:"sections"`
}

type ClearShoppingResponse struct {
	Removed int `json:"removed"`
}
