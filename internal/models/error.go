package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")
)

// Reason codes attached to every login decision. The handler collapses
// wrong_login and wrong_password into one user-facing notice; banned and
// locked get distinct notices.
type Reason string

const (
	ReasonNone          Reason = ""
	ReasonBanned        Reason = "banned"
	ReasonLocked        Reason = "locked"
	ReasonWrongLogin    Reason = "wrong_login"
	ReasonWrongPassword Reason = "wrong_password"
)
