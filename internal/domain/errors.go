package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain failure so the transport layer can pick a status code.
type Kind int

const (
	KindUnknown Kind = iota
	KindBadRequest
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is a classified, user-presentable failure.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func BadRequest(msg string) error { return &Error{Kind: KindBadRequest, Message: msg} }
func Forbidden(msg string) error  { return &Error{Kind: KindForbidden, Message: msg} }
func NotFound(msg string) error   { return &Error{Kind: KindNotFound, Message: msg} }

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Sentinel errors for simple conditions without extra context.
var (
	ErrVendorNotFound     = &Error{Kind: KindNotFound, Message: "vendor not found"}
	ErrVendorExists       = &Error{Kind: KindBadRequest, Message: "The vendor already exists"}
	ErrInvitationNotFound = &Error{Kind: KindNotFound, Message: "invitation not found"}
	ErrInvitationAccepted = &Error{Kind: KindBadRequest, Message: "You have already accepted the invitation."}
	ErrInvitationExpired  = &Error{Kind: KindBadRequest, Message: "Your invitation expired. Please ask for a new one."}
	ErrAccountNotFound    = &Error{Kind: KindNotFound, Message: "User account does not exist. Please signup first."}
	ErrNoVendorAccess     = &Error{Kind: KindForbidden, Message: "You do not have access to the vendor"}
	ErrAlreadyMember      = &Error{Kind: KindForbidden, Message: "The user is already member of the vendor"}
	ErrNotMember          = &Error{Kind: KindForbidden, Message: "The user is not member of the vendor"}
	ErrAdminOnly          = &Error{Kind: KindForbidden, Message: "Only administrators can perform this action"}

	// ErrUserNotFound is reported by the user directory. Whether it is a
	// failure depends on the operation, so it carries no Kind.
	ErrUserNotFound = errors.New("user not found")
)

// VendorConflictError is returned when a vendor id is already taken by another vendor.
type VendorConflictError struct {
	ID string
}

func (e *VendorConflictError) Error() string {
	return fmt.Sprintf("vendor %q already exists", e.ID)
}

// Unwrap lets KindOf classify the conflict.
func (e *VendorConflictError) Unwrap() error {
	return &Error{Kind: KindConflict, Message: e.Error()}
}

// TransitionError is returned when an invitation lifecycle event is not allowed.
type TransitionError struct {
	Event   InvitationEvent
	Current InvitationState
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("event %q is not valid from state %q", e.Event, e.Current)
}
