package users

import (
	"github.com/Aidin1998/usersapi/pkg/errors"
)

var (
	ErrUserNotFound      = errors.NotFound.Explain("User not found")
	ErrNameEmailRequired = errors.Invalid.Explain("Name and email are required")
	ErrInvalidMerge      = errors.Invalid.Explain("Name and email must be non-empty strings")
)
