package repositories

import (
	"errors"
	"fmt"
)

type ErrNotFound struct {
	ID string
}

func (e *ErrNotFound) Error() string {
	if e.ID == "" {
		return "not found"
	}
	return fmt.Sprintf("match %s not found", e.ID)
}

func IsNotFound(err error) bool {
	var target *ErrNotFound
	return errors.As(err, &target)
}
