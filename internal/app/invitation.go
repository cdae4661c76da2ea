package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neomorfeo/devportal/internal/domain"
)

// InvitationManager owns the invitation record lifecycle.
type InvitationManager struct {
	repo      domain.InvitationRepository
	validator domain.TransitionValidator
	now       func() time.Time
	newCode   func() (string, error)
}

// NewInvitationManager creates a manager over the given repository.
// A nil clock defaults to time.Now.
func NewInvitationManager(repo domain.InvitationRepository, validator domain.TransitionValidator, now func() time.Time) *InvitationManager {
	if now == nil {
		now = time.Now
	}
	return &InvitationManager{
		repo:      repo,
		validator: validator,
		now:       now,
		newCode:   generateInvitationCode,
	}
}

// Create stores a new pending invitation and returns its code.
// Repeated invitations for the same vendor and email each get their own code.
func (m *InvitationManager) Create(ctx context.Context, vendor, email, invitedBy string) (string, error) {
	code, err := m.newCode()
	if err != nil {
		return "", fmt.Errorf("generating invitation code: %w", err)
	}

	inv := domain.NewInvitation(vendor, email, code, invitedBy, m.now())
	if err := m.repo.Insert(ctx, inv); err != nil {
		return "", fmt.Errorf("creating invitation: %w", err)
	}

	return code, nil
}

// Get returns the invitation with the given code.
func (m *InvitationManager) Get(ctx context.Context, code string) (domain.Invitation, error) {
	return m.repo.GetByCode(ctx, code)
}

// CheckAcceptable fails with a BadRequest if the invitation was already
// accepted or has expired.
func (m *InvitationManager) CheckAcceptable(ctx context.Context, inv domain.Invitation) error {
	current := inv.State(m.now())

	if _, err := m.validator.Apply(ctx, current, domain.EventAccept); err != nil {
		var trErr *domain.TransitionError
		if !errors.As(err, &trErr) {
			return fmt.Errorf("validating invitation: %w", err)
		}
		switch trErr.Current {
		case domain.InvitationAccepted:
			return domain.ErrInvitationAccepted
		case domain.InvitationExpired:
			return domain.ErrInvitationExpired
		}
		return domain.BadRequest(trErr.Error())
	}

	return nil
}

// Accept marks the invitation accepted now.
func (m *InvitationManager) Accept(ctx context.Context, code string) error {
	return m.repo.MarkAccepted(ctx, code, m.now().UTC())
}
