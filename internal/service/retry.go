package service

import (
	"errors"

	"remindme/internal/repo"
)

// maxWriteAttempts bounds how often a guarded write is re-applied after
// another write to the same document committed first.
const maxWriteAttempts = 5

var ErrConflict = errors.New("document is being changed concurrently, try again")

// onFreshCopy runs write until it does not lose a revision race. write must
// re-read the document and take a new revision on every attempt, so the
// revision it stores is always above the one it replaces.
func onFreshCopy(write func() error) error {
	for i := 0; i < maxWriteAttempts; i++ {
		err := write()
		if !errors.Is(err, repo.ErrStale) {
			return err
		}
	}
	return ErrConflict
}
