package model

import (
	"errors"
	"fmt"
)

// Ошибки предметной области
var (
	ErrAuthExpired            = errors.New("catalog authorization expired")
	ErrArtistNotFound         = errors.New("artist not found")
	ErrArtistAlreadyMonitored = errors.New("artist is already monitored")
	ErrNoCandidates           = errors.New("no artists found that closely match the search")
)

// LookupFailedError возвращается каталогом на не-2xx ответ
type LookupFailedError struct {
	Status int
	Body   string
}

func (e *LookupFailedError) Error() string {
	return fmt.Sprintf("catalog lookup failed with status %d: %s", e.Status, e.Body)
}

// IsLookupFailed проверяет, что ошибка является LookupFailedError
func IsLookupFailed(err error) bool {
	var lookupErr *LookupFailedError
	return errors.As(err, &lookupErr)
}
