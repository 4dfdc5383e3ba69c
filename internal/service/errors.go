package service

import (
	"errors"
	"fmt"

	"guildhall/internal/repository"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrServerNotFound  = errors.New("server not found")
	ErrChannelNotFound = errors.New("channel not found")
	ErrMemberNotFound  = errors.New("member not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrForbidden       = errors.New("action not allowed")
	ErrConflict        = errors.New("already exists")
)

// notFound replaces repository.ErrNotFound with the sentinel of the entity
// that was looked up and duplicates with ErrConflict. Other errors pass through.
func notFound(err, sentinel error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return sentinel
	}
	if errors.Is(err, repository.ErrDuplicate) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	return nil
}
