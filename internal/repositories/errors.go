package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// ErrResultClosed is returned when a write targets a result that is already finished.
var ErrResultClosed = errors.New("result closed")

func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
