package item

import "errors"

var (
	ErrNotFound      = errors.New("item not found")
	ErrAlreadyExists = errors.New("item already exists")
	ErrInvalidId     = errors.New("item id is required")
	ErrStore         = errors.New("store error")

	ErrInvalidPayload = errors.New("item payload must be a single JSON object")
)
