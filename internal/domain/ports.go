package domain

import (
	"context"
	"time"
)

// VendorRepository defines the persistence contract for vendors.
type VendorRepository interface {
	List(ctx context.Context, filter ListFilter) ([]Vendor, error)
	GetByID(ctx context.Context, id string) (Vendor, error)
	Create(ctx context.Context, vendor Vendor) error
	Update(ctx context.Context, id string, patch VendorPatch) error
	// CheckExists fails with ErrVendorNotFound when no vendor has the id.
	CheckExists(ctx context.Context, id string) error
	// CheckNotExists fails with a *VendorConflictError when the id is taken.
	CheckNotExists(ctx context.Context, id string) error
}

// ListFilter holds paging criteria for listing vendors.
type ListFilter struct {
	Offset int
	Limit  int
}

// InvitationRepository defines the persistence contract for invitations.
type InvitationRepository interface {
	Insert(ctx context.Context, inv Invitation) error
	GetByCode(ctx context.Context, code string) (Invitation, error)
	// MarkAccepted sets accepted_on to at for a still-pending invitation.
	// It returns ErrInvitationNotFound if the row is gone and
	// ErrInvitationAccepted if another caller accepted it first.
	MarkAccepted(ctx context.Context, code string, at time.Time) error
}

// UserDirectory is the authoritative store of users and their vendor memberships.
type UserDirectory interface {
	// FindUser looks a user up by email. A missing user is reported as
	// found=false with a nil error.
	FindUser(ctx context.Context, email string) (User, bool, error)
	// AddUserToVendor returns ErrUserNotFound if the user does not exist.
	AddUserToVendor(ctx context.Context, email, vendorID string) error
	// RemoveUserFromVendor returns ErrUserNotFound if the user does not exist.
	RemoveUserFromVendor(ctx context.Context, email, vendorID string) error
}

// Email is a transactional message.
type Email struct {
	To       string
	Subject  string
	FromName string
	HTMLBody string
}

// MessageRenderer renders the HTML bodies of emails sent to users.
type MessageRenderer interface {
	InvitationBody(vendorID, inviter, link string) (string, error)
	RemovalBody(vendorID, actor string) (string, error)
	ApprovedBody(vendorID string) (string, error)
}

// Notifier delivers transactional emails and administrator notifications.
type Notifier interface {
	Send(ctx context.Context, email Email) error
	ApproveVendor(ctx context.Context, vendorID, name string, requester Contact) error
	ApproveJoinVendor(ctx context.Context, req JoinRequest) error
}

// TransitionValidator decides whether an invitation event is allowed.
type TransitionValidator interface {
	Apply(ctx context.Context, current InvitationState, event InvitationEvent) (InvitationState, error)
}
