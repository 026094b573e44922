package models

import "errors"

var (
	// ErrUnauthenticated indicates a missing, malformed or expired credential.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates the actor is not allowed to perform the operation.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInvalidContent indicates an empty or malformed message body.
	ErrInvalidContent = errors.New("invalid content")
	// ErrNotMember indicates the sender has no membership in the room.
	ErrNotMember = errors.New("not a member of this room")
	// ErrConflict indicates a duplicate insert, e.g. an existing membership.
	ErrConflict = errors.New("already exists")
)
