package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/neomorfeo/devportal/internal/domain"
)

const (
	defaultListLimit = 1000
	maxListLimit     = 1000
)

// VendorService orchestrates vendor membership operations across the
// vendor store, the user directory and the notifier.
type VendorService struct {
	vendors     domain.VendorRepository
	directory   domain.UserDirectory
	notifier    domain.Notifier
	messages    domain.MessageRenderer
	invitations *InvitationManager
	apiEndpoint string
	now         func() time.Time
}

// NewVendorService creates a service with the given adapters. apiEndpoint is
// the public base URL used in invitation links.
func NewVendorService(
	vendors domain.VendorRepository,
	directory domain.UserDirectory,
	notifier domain.Notifier,
	messages domain.MessageRenderer,
	invitations *InvitationManager,
	apiEndpoint string,
) *VendorService {
	return &VendorService{
		vendors:     vendors,
		directory:   directory,
		notifier:    notifier,
		messages:    messages,
		invitations: invitations,
		apiEndpoint: strings.TrimRight(apiEndpoint, "/"),
		now:         invitations.now,
	}
}

// List returns a page of vendors.
func (s *VendorService) List(ctx context.Context, offset, limit int) ([]domain.Vendor, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.vendors.List(ctx, domain.ListFilter{Offset: offset, Limit: limit})
}

// Get returns a vendor by id.
func (s *VendorService) Get(ctx context.Context, id string) (domain.Vendor, error) {
	return s.vendors.GetByID(ctx, id)
}

// Create inserts a vendor with the given approval flag.
func (s *VendorService) Create(ctx context.Context, vendor domain.Vendor, isApproved bool) error {
	vendor.IsApproved = isApproved

	if err := s.vendors.Create(ctx, vendor); err != nil {
		if errors.Is(err, domain.ErrVendorExists) {
			return domain.ErrVendorExists
		}
		return fmt.Errorf("creating vendor: %w", err)
	}
	return nil
}

// Approve marks a vendor approved. When newID is set and differs from id the
// vendor is renamed in the same update, and the email of the user who
// created it is returned so they can be told the new id.
func (s *VendorService) Approve(ctx context.Context, id, newID string) (string, error) {
	vendor, err := s.vendors.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	approved := true
	if newID == "" || newID == id {
		if err := s.vendors.Update(ctx, id, domain.VendorPatch{IsApproved: &approved}); err != nil {
			return "", fmt.Errorf("approving vendor: %w", err)
		}
		return "", nil
	}

	if err := s.vendors.CheckNotExists(ctx, newID); err != nil {
		return "", err
	}

	if err := s.vendors.Update(ctx, id, domain.VendorPatch{ID: &newID, IsApproved: &approved}); err != nil {
		return "", fmt.Errorf("approving vendor as %q: %w", newID, err)
	}

	return vendor.CreatedBy, nil
}

// Join adds the user to the vendor. Callers must already be allowed to self-join.
func (s *VendorService) Join(ctx context.Context, user domain.User, vendorID string) error {
	if err := s.vendors.CheckExists(ctx, vendorID); err != nil {
		return err
	}

	if err := s.directory.AddUserToVendor(ctx, user.Email, vendorID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrAccountNotFound
		}
		return fmt.Errorf("adding user to vendor: %w", err)
	}
	return nil
}

// RequestJoin lets administrators join directly and asks an administrator
// to approve everyone else.
func (s *VendorService) RequestJoin(ctx context.Context, user domain.User, vendorID string) error {
	if err := s.vendors.CheckExists(ctx, vendorID); err != nil {
		return err
	}

	if user.IsAdmin {
		return s.Join(ctx, user, vendorID)
	}

	if err := s.notifier.ApproveJoinVendor(ctx, domain.JoinRequest{Email: user.Email, Vendor: vendorID}); err != nil {
		return fmt.Errorf("requesting join approval: %w", err)
	}
	return nil
}

// SignUp creates an unapproved vendor on behalf of user, makes the user its
// first member and asks an administrator to approve it.
func (s *VendorService) SignUp(ctx context.Context, user domain.User, name, address, email string) (string, error) {
	id, err := generateVendorID(s.now())
	if err != nil {
		return "", fmt.Errorf("generating vendor id: %w", err)
	}

	vendor := domain.Vendor{
		ID:        id,
		Name:      name,
		Address:   address,
		Email:     email,
		CreatedBy: user.Email,
	}
	if err := s.Create(ctx, vendor, false); err != nil {
		return "", err
	}

	if err := s.directory.AddUserToVendor(ctx, user.Email, id); err != nil {
		return "", fmt.Errorf("adding creator to vendor: %w", err)
	}

	if err := s.notifier.ApproveVendor(ctx, id, name, domain.Contact{Name: name, Email: email}); err != nil {
		return "", fmt.Errorf("requesting vendor approval: %w", err)
	}

	return id, nil
}

// Invite creates an invitation for email to join the vendor and emails the
// acceptance link. The invitation is kept even if the email fails.
func (s *VendorService) Invite(ctx context.Context, vendorID, email string, inviter domain.User) error {
	if !inviter.IsMemberOf(vendorID) {
		return domain.ErrNoVendorAccess
	}

	if err := s.vendors.CheckExists(ctx, vendorID); err != nil {
		return err
	}

	invitee, found, err := s.directory.FindUser(ctx, email)
	if err != nil {
		return fmt.Errorf("looking up invitee: %w", err)
	}
	if found && invitee.IsMemberOf(vendorID) {
		return domain.ErrAlreadyMember
	}

	code, err := s.invitations.Create(ctx, vendorID, email, inviter.Email)
	if err != nil {
		return err
	}

	body, err := s.messages.InvitationBody(vendorID, displayName(inviter), invitationLink(s.apiEndpoint, vendorID, email, code))
	if err != nil {
		return err
	}

	if err := s.notifier.Send(ctx, domain.Email{
		To:       email,
		Subject:  fmt.Sprintf("Invitation to vendor %s", vendorID),
		FromName: fromName,
		HTMLBody: body,
	}); err != nil {
		return fmt.Errorf("sending invitation: %w", err)
	}

	return nil
}

// AcceptInvitation grants membership for a valid invitation code and returns
// the vendor the user joined. The code alone identifies the invitation;
// vendorID and email only label the link, and membership is granted from
// the stored invitation.
func (s *VendorService) AcceptInvitation(ctx context.Context, vendorID, email, code string) (string, error) {
	inv, err := s.invitations.Get(ctx, code)
	if err != nil {
		return "", err
	}

	if err := s.invitations.CheckAcceptable(ctx, inv); err != nil {
		return "", err
	}

	// Membership first: a failure here must leave the invitation pending.
	if err := s.directory.AddUserToVendor(ctx, inv.Email, inv.Vendor); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", domain.ErrAccountNotFound
		}
		return "", fmt.Errorf("adding user to vendor: %w", err)
	}

	if err := s.invitations.Accept(ctx, code); err != nil {
		return "", err
	}
	return inv.Vendor, nil
}

// RemoveUser takes email out of the vendor and, unless users remove
// themselves, tells them about it.
func (s *VendorService) RemoveUser(ctx context.Context, vendorID, email string, actor domain.User) error {
	if !actor.IsMemberOf(vendorID) {
		return domain.ErrNoVendorAccess
	}

	if err := s.vendors.CheckExists(ctx, vendorID); err != nil {
		return err
	}

	target, found, err := s.directory.FindUser(ctx, email)
	if err != nil {
		return fmt.Errorf("looking up user: %w", err)
	}
	if found && !target.IsMemberOf(vendorID) {
		return domain.ErrNotMember
	}

	if err := s.directory.RemoveUserFromVendor(ctx, email, vendorID); err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("removing user from vendor: %w", err)
	}

	if strings.EqualFold(actor.Email, email) {
		return nil
	}

	body, err := s.messages.RemovalBody(vendorID, displayName(actor))
	if err != nil {
		return err
	}

	if err := s.notifier.Send(ctx, domain.Email{
		To:       email,
		Subject:  fmt.Sprintf("Removal from vendor %s", vendorID),
		FromName: fromName,
		HTMLBody: body,
	}); err != nil {
		return fmt.Errorf("sending removal notice: %w", err)
	}

	return nil
}

// NotifyApproved tells the vendor's creator that it was approved under vendorID.
func (s *VendorService) NotifyApproved(ctx context.Context, to, vendorID string) error {
	body, err := s.messages.ApprovedBody(vendorID)
	if err != nil {
		return err
	}

	if err := s.notifier.Send(ctx, domain.Email{
		To:       to,
		Subject:  fmt.Sprintf("Vendor %s approved", vendorID),
		FromName: fromName,
		HTMLBody: body,
	}); err != nil {
		return fmt.Errorf("sending approval notice: %w", err)
	}
	return nil
}

func displayName(u domain.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
