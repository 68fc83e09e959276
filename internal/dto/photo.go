package dto

import "time"

type PhotoResponse struct {
	ID          string    `json:"id"`
	ContentType string    `json:"content_type"`
	Size        int       `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

type ListPhotosResponse struct {
	Items []PhotoResponse `json:"items"`
}
