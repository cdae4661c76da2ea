package domain

import "time"

// InvitationValidity is how long an invitation code can be accepted after creation.
const InvitationValidity = 24 * time.Hour

// InvitationState is the derived lifecycle state of an invitation.
type InvitationState string

const (
	InvitationPending  InvitationState = "pending"
	InvitationAccepted InvitationState = "accepted"
	InvitationExpired  InvitationState = "expired"
)

// InvitationEvent is an action applied to an invitation.
type InvitationEvent string

const (
	EventAccept InvitationEvent = "accept"
)

// InvitationTransition defines a valid state change for an invitation.
type InvitationTransition struct {
	Event InvitationEvent
	Src   InvitationState
	Dst   InvitationState
}

// InvitationTransitions lists every allowed invitation state change.
// Accepted and expired invitations are terminal.
var InvitationTransitions = []InvitationTransition{
	{Event: EventAccept, Src: InvitationPending, Dst: InvitationAccepted},
}

// Invitation grants an email address the right to join a vendor.
// The code is the capability; vendor and email are informational.
type Invitation struct {
	Vendor     string
	Email      string
	Code       string
	InvitedBy  string
	CreatedOn  time.Time
	AcceptedOn *time.Time
}

// NewInvitation creates a pending invitation stamped at now.
func NewInvitation(vendor, email, code, invitedBy string, now time.Time) Invitation {
	return Invitation{
		Vendor:    vendor,
		Email:     email,
		Code:      code,
		InvitedBy: invitedBy,
		CreatedOn: now.UTC(),
	}
}

// State derives the lifecycle state at the given instant.
func (i Invitation) State(now time.Time) InvitationState {
	if i.AcceptedOn != nil {
		return InvitationAccepted
	}
	if i.CreatedOn.Before(now.Add(-InvitationValidity)) {
		return InvitationExpired
	}
	return InvitationPending
}
