package entry

import (
	"errors"
)

// Ошибки доменной модели записей
var (
	ErrInvalidID    = errors.New("invalid entry id")
	ErrNotFound     = errors.New("entry not found")
	ErrInvalidEntry = errors.New("invalid entry data")
)
