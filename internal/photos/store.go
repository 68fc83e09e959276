// Package photos keeps captured photo notes in memory. Nothing here is
// persisted; a restart drops every photo.
package photos

import (
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("photo not found")
	ErrTooLarge = errors.New("photo is too large")
	ErrNotImage = errors.New("file is not an image")
	ErrEmpty    = errors.New("photo is empty")
)

type Photo struct {
	ID          string
	ContentType string
	Size        int
	Data        []byte
	CreatedAt   time.Time
}

// Store holds photos per user, newest first.
type Store struct {
	mu         sync.RWMutex
	photos     map[string][]Photo
	maxBytes   int64
	maxPerUser int
}

func NewStore(maxBytes int64, maxPerUser int) *Store {
	return &Store{
		photos:     make(map[string][]Photo),
		maxBytes:   maxBytes,
		maxPerUser: maxPerUser,
	}
}

// MaxBytes is the largest accepted photo.
func (s *Store) MaxBytes() int64 { return s.maxBytes }

// Add prepends a photo. Past the per-user bound the oldest photo is dropped.
func (s *Store) Add(userID string, data []byte) (Photo, error) {
	if len(data) == 0 {
		return Photo{}, ErrEmpty
	}
	if int64(len(data)) > s.maxBytes {
		return Photo{}, ErrTooLarge
	}
	ct := http.DetectContentType(data)
	if !strings.HasPrefix(ct, "image/") {
		return Photo{}, ErrNotImage
	}

	p := Photo{
		ID:          uuid.NewString(),
		ContentType: ct,
		Size:        len(data),
		Data:        append([]byte(nil), data...),
		CreatedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list := append([]Photo{p}, s.photos[userID]...)
	if len(list) > s.maxPerUser {
		list = list[:s.maxPerUser]
	}
	s.photos[userID] = list
	return p, nil
}

// List returns photo metadata (without data), newest first.
func (s *Store) List(userID string) []Photo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Photo, 0, len(s.photos[userID]))
	for _, p := range s.photos[userID] {
		p.Data = nil
		out = append(out, p)
	}
	return out
}

func (s *Store) Get(userID, id string) (Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.photos[userID] {
		if p.ID == id {
			return p, nil
		}
	}
	return Photo{}, ErrNotFound
}

func (s *Store) Delete(userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.photos[userID]
	for i, p := range list {
		if p.ID == id {
			s.photos[userID] = append(list[:i:i], list[i+1:]...)
			if len(s.photos[userID]) == 0 {
				delete(s.photos, userID)
			}
			return nil
		}
	}
	return ErrNotFound
}
