package registry

import (
	"errors"
	"fmt"

	"github.com/cbodonnell/scoreboard/pkg/repositories"
)

// ErrSchemaMismatch is returned when a stored match names a game that is not
// registered, usually because the game was renamed or removed.
type ErrSchemaMismatch struct {
	ID   string
	Mode string
}

func (e *ErrSchemaMismatch) Error() string {
	if e.Mode == "" {
		return fmt.Sprintf("match %s has no game", e.ID)
	}
	return fmt.Sprintf("match %s uses unknown game %s", e.ID, e.Mode)
}

func IsSchemaMismatch(err error) bool {
	var target *ErrSchemaMismatch
	return errors.As(err, &target)
}

// IsNotFound reports whether a match could not be loaded because it is
// missing or because its game is no longer registered.
func IsNotFound(err error) bool {
	return repositories.IsNotFound(err) || IsSchemaMismatch(err)
}
