package gamification

import "errors"

// ErrorKind discriminates the recoverable group directory failures.
type ErrorKind string

const (
	KindNotPermitted  ErrorKind = "NOT_PERMITTED"
	KindInvalidCode   ErrorKind = "INVALID_CODE"
	KindDuplicateName ErrorKind = "DUPLICATE_NAME"
	KindEmptyName     ErrorKind = "EMPTY_NAME"
	KindAlreadyMember ErrorKind = "ALREADY_MEMBER"
)

// Error is a user-facing group directory failure.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrNotPermitted  = &Error{Kind: KindNotPermitted, Message: "guests cannot create or join groups"}
	ErrInvalidCode   = &Error{Kind: KindInvalidCode, Message: "invite code not found"}
	ErrDuplicateName = &Error{Kind: KindDuplicateName, Message: "a group with this name already exists"}
	ErrEmptyName     = &Error{Kind: KindEmptyName, Message: "group name cannot be empty"}
	ErrAlreadyMember = &Error{Kind: KindAlreadyMember, Message: "user is already a member of this group"}
)

// ErrCodeSpaceExhausted is returned when no unused invite code could be
// produced within the attempt budget.
var ErrCodeSpaceExhausted = errors.New("could not generate an unused invite code")

// KindOf returns the kind of a directory error, or "" for any other error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
