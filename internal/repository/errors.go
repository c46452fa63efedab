// Package repository implements data access over MySQL.  This file defines
// error values reused across repositories.  Sentinel errors let handlers
// distinguish failure scenarios: ErrForbidden maps to HTTP 403 when a user
// acts on a resource they do not control, ErrConflict to 409 when an
// operation cannot proceed due to existing state.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation they are
// not privileged for, such as a plain admin granting admin rights.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an update cannot be performed because of
// conflicting state, such as adding a user to a team they already belong to.
var ErrConflict = errors.New("conflict")
