package mediatx

import (
	"errors"
	"fmt"
)

// ErrPostNotFound is returned when the target post of an edit or delete
// does not exist. Store implementations translate their own not-found
// errors into this sentinel.
var ErrPostNotFound = errors.New("post not found")

// errMediaCapExceeded aborts the relational transaction when the in-tx
// recount finds more media rows than the cap allows.
var errMediaCapExceeded = errors.New("media cap exceeded")

// ValidationError reports bad input. It is always raised before any side
// effect, so no cleanup is implied.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// AuthorizationError reports that the caller does not own the resource.
type AuthorizationError struct {
	Msg string
}

func (e *AuthorizationError) Error() string { return e.Msg }

// MediaUploadError reports a failed or timed-out blob upload. By the time
// it is returned, every blob uploaded earlier in the same request has had a
// compensating delete attempted and the relational store is untouched.
type MediaUploadError struct {
	Err error
}

func (e *MediaUploadError) Error() string { return fmt.Sprintf("media upload failed: %v", e.Err) }

func (e *MediaUploadError) Unwrap() error { return e.Err }

// PersistenceError reports a failed relational transaction. The store is
// guaranteed unchanged and compensating deletes have been attempted for
// every blob uploaded during the request.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("persistence failed: %v", e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }
