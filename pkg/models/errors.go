package models

import "errors"

// Sentinel errors for the scheduling engine. Callers branch on them with
// errors.Is; the HTTP layer maps them onto status codes.
var (
	ErrCardNotFound       = errors.New("card not found")
	ErrDuplicateSignature = errors.New("card already exists for signature")
	ErrInvalidQuality     = errors.New("quality outside accepted range")
	ErrStoreUnavailable   = errors.New("card store unavailable")
	ErrWordNotFound       = errors.New("word not found")
	ErrBatchNotFound      = errors.New("batch not found")
	ErrDatabaseNotFound   = errors.New("word database not found")
)
