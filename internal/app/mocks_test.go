package app_test

import (
	"context"
	"errors"
	"slices"
	"sort"
	"time"

	"github.com/neomorfeo/devportal/internal/domain"
)

// --- Vendor repository ---

type mockVendorRepo struct {
	vendors   map[string]domain.Vendor
	updateErr error
}

func newMockVendorRepo() *mockVendorRepo {
	return &mockVendorRepo{vendors: make(map[string]domain.Vendor)}
}

func (m *mockVendorRepo) List(_ context.Context, filter domain.ListFilter) ([]domain.Vendor, error) {
	ids := make([]string, 0, len(m.vendors))
	for id := range m.vendors {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]domain.Vendor, 0, len(ids))
	for i, id := range ids {
		if i < filter.Offset {
			continue
		}
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
		out = append(out, m.vendors[id])
	}
	return out, nil
}

func (m *mockVendorRepo) GetByID(_ context.Context, id string) (domain.Vendor, error) {
	v, ok := m.vendors[id]
	if !ok {
		return domain.Vendor{}, domain.ErrVendorNotFound
	}
	return v, nil
}

func (m *mockVendorRepo) Create(_ context.Context, v domain.Vendor) error {
	for _, existing := range m.vendors {
		if existing.ID == v.ID || existing.Name == v.Name {
			return domain.ErrVendorExists
		}
	}
	m.vendors[v.ID] = v
	return nil
}

func (m *mockVendorRepo) Update(_ context.Context, id string, patch domain.VendorPatch) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	v, ok := m.vendors[id]
	if !ok {
		return domain.ErrVendorNotFound
	}
	if patch.IsApproved != nil {
		v.IsApproved = *patch.IsApproved
	}
	if patch.ID != nil && *patch.ID != id {
		if _, taken := m.vendors[*patch.ID]; taken {
			return &domain.VendorConflictError{ID: *patch.ID}
		}
		delete(m.vendors, id)
		v.ID = *patch.ID
	}
	m.vendors[v.ID] = v
	return nil
}

func (m *mockVendorRepo) CheckExists(_ context.Context, id string) error {
	if _, ok := m.vendors[id]; !ok {
		return domain.ErrVendorNotFound
	}
	return nil
}

func (m *mockVendorRepo) CheckNotExists(_ context.Context, id string) error {
	if _, ok := m.vendors[id]; ok {
		return &domain.VendorConflictError{ID: id}
	}
	return nil
}

// --- Invitation repository ---

type mockInvitationRepo struct {
	invitations map[string]domain.Invitation
}

func newMockInvitationRepo() *mockInvitationRepo {
	return &mockInvitationRepo{invitations: make(map[string]domain.Invitation)}
}

func (m *mockInvitationRepo) Insert(_ context.Context, inv domain.Invitation) error {
	m.invitations[inv.Code] = inv
	return nil
}

func (m *mockInvitationRepo) GetByCode(_ context.Context, code string) (domain.Invitation, error) {
	inv, ok := m.invitations[code]
	if !ok {
		return domain.Invitation{}, domain.ErrInvitationNotFound
	}
	return inv, nil
}

func (m *mockInvitationRepo) MarkAccepted(_ context.Context, code string, at time.Time) error {
	inv, ok := m.invitations[code]
	if !ok {
		return domain.ErrInvitationNotFound
	}
	if inv.AcceptedOn != nil {
		return domain.ErrInvitationAccepted
	}
	inv.AcceptedOn = &at
	m.invitations[code] = inv
	return nil
}

func (m *mockInvitationRepo) byVendorEmail(vendor, email string) []domain.Invitation {
	var out []domain.Invitation
	for _, inv := range m.invitations {
		if inv.Vendor == vendor && inv.Email == email {
			out = append(out, inv)
		}
	}
	return out
}

// --- User directory ---

type mockDirectory struct {
	users   map[string]domain.User
	adds    int
	findErr error
}

func newMockDirectory(users ...domain.User) *mockDirectory {
	d := &mockDirectory{users: make(map[string]domain.User)}
	for _, u := range users {
		u.Vendors = slices.Clone(u.Vendors)
		d.users[u.Email] = u
	}
	return d
}

func (d *mockDirectory) FindUser(_ context.Context, email string) (domain.User, bool, error) {
	if d.findErr != nil {
		return domain.User{}, false, d.findErr
	}
	u, ok := d.users[email]
	return u, ok, nil
}

func (d *mockDirectory) AddUserToVendor(_ context.Context, email, vendorID string) error {
	u, ok := d.users[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	d.adds++
	if !u.IsMemberOf(vendorID) {
		u.Vendors = append(u.Vendors, vendorID)
	}
	d.users[email] = u
	return nil
}

func (d *mockDirectory) RemoveUserFromVendor(_ context.Context, email, vendorID string) error {
	u, ok := d.users[email]
	if !ok {
		return domain.ErrUserNotFound
	}
	var kept []string
	for _, v := range u.Vendors {
		if v != vendorID {
			kept = append(kept, v)
		}
	}
	u.Vendors = kept
	d.users[email] = u
	return nil
}

// --- Notifier ---

type mockNotifier struct {
	emails       []domain.Email
	vendorAsks   []string
	joinRequests []domain.JoinRequest
	sendErr      error
}

func (n *mockNotifier) Send(_ context.Context, e domain.Email) error {
	if n.sendErr != nil {
		return n.sendErr
	}
	n.emails = append(n.emails, e)
	return nil
}

func (n *mockNotifier) ApproveVendor(_ context.Context, vendorID, _ string, _ domain.Contact) error {
	n.vendorAsks = append(n.vendorAsks, vendorID)
	return nil
}

func (n *mockNotifier) ApproveJoinVendor(_ context.Context, req domain.JoinRequest) error {
	n.joinRequests = append(n.joinRequests, req)
	return nil
}

// --- Transition validator ---

type tableValidator struct{}

func (tableValidator) Apply(_ context.Context, current domain.InvitationState, event domain.InvitationEvent) (domain.InvitationState, error) {
	for _, t := range domain.InvitationTransitions {
		if t.Event == event && t.Src == current {
			return t.Dst, nil
		}
	}
	return "", &domain.TransitionError{Event: event, Current: current}
}

type failingValidator struct{}

func (failingValidator) Apply(context.Context, domain.InvitationState, domain.InvitationEvent) (domain.InvitationState, error) {
	return "", errors.New("validator unavailable")
}

// --- Clock ---

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }
