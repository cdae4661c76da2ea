package sqlite_test

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/neomorfeo/devportal/internal/adapter/sqlite"
	"github.com/neomorfeo/devportal/internal/domain"
)

func newDirectory(t *testing.T, vendorIDs ...string) *sqlite.UserDirectory {
	t.Helper()
	db := newTestDB(t)
	vendors := sqlite.NewVendorRepository(db)
	for _, id := range vendorIDs {
		mustCreateVendor(t, vendors, domain.Vendor{ID: id, Name: "Vendor " + id})
	}
	return sqlite.NewUserDirectory(db)
}

func TestDirectory_FindUser_NotFound(t *testing.T) {
	dir := newDirectory(t)

	_, found, err := dir.FindUser(context.Background(), "nobody@x.com")
	if err != nil {
		t.Fatalf("FindUser failed: %v", err)
	}
	if found {
		t.Error("found = true, want false")
	}
}

func TestDirectory_RegisterAndFind(t *testing.T) {
	dir := newDirectory(t, "V1", "V2")
	ctx := context.Background()
	mustRegister(t, dir, domain.User{Email: "alice@x.com", Name: "Alice", IsAdmin: true})

	for _, v := range []string{"V2", "V1"} {
		if err := dir.AddUserToVendor(ctx, "alice@x.com", v); err != nil {
			t.Fatalf("AddUserToVendor(%s) failed: %v", v, err)
		}
	}

	u, found, err := dir.FindUser(ctx, "ALICE@x.com")
	if err != nil || !found {
		t.Fatalf("FindUser = %v, %v", found, err)
	}
	if u.Email != "alice@x.com" || u.Name != "Alice" || !u.IsAdmin {
		t.Errorf("user = %+v", u)
	}
	if !slices.Equal(u.Vendors, []string{"V1", "V2"}) {
		t.Errorf("vendors = %v, want [V1 V2]", u.Vendors)
	}
}

func TestDirectory_RegisterKeepsAdminFlag(t *testing.T) {
	dir := newDirectory(t)
	ctx := context.Background()
	mustRegister(t, dir, domain.User{Email: "bob@y.com", Name: "Bob", IsAdmin: true})

	if err := dir.Register(ctx, "bob@y.com", "Robert"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	u, _, _ := dir.FindUser(ctx, "bob@y.com")
	if u.Name != "Robert" || !u.IsAdmin {
		t.Errorf("user = %+v, want new name and admin kept", u)
	}
}

func TestDirectory_SetAdmin(t *testing.T) {
	dir := newDirectory(t)
	ctx := context.Background()
	mustRegister(t, dir, domain.User{Email: "bob@y.com", IsAdmin: true})

	if err := dir.SetAdmin(ctx, "bob@y.com", false); err != nil {
		t.Fatalf("SetAdmin failed: %v", err)
	}
	u, _, _ := dir.FindUser(ctx, "bob@y.com")
	if u.IsAdmin {
		t.Error("admin flag should be revoked")
	}

	if err := dir.SetAdmin(ctx, "ghost@x.com", true); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("SetAdmin(ghost) = %v, want ErrUserNotFound", err)
	}
}

func TestDirectory_AddUserToVendor_Idempotent(t *testing.T) {
	dir := newDirectory(t, "V1")
	ctx := context.Background()
	mustRegister(t, dir, domain.User{Email: "bob@y.com"})

	for range 2 {
		if err := dir.AddUserToVendor(ctx, "bob@y.com", "V1"); err != nil {
			t.Fatalf("AddUserToVendor failed: %v", err)
		}
	}

	u, _, _ := dir.FindUser(ctx, "bob@y.com")
	if len(u.Vendors) != 1 {
		t.Errorf("vendors = %v, want exactly one membership", u.Vendors)
	}
}

func TestDirectory_UnknownUser(t *testing.T) {
	dir := newDirectory(t, "V1")
	ctx := context.Background()

	if err := dir.AddUserToVendor(ctx, "ghost@x.com", "V1"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("AddUserToVendor = %v, want ErrUserNotFound", err)
	}
	if err := dir.RemoveUserFromVendor(ctx, "ghost@x.com", "V1"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("RemoveUserFromVendor = %v, want ErrUserNotFound", err)
	}
}

func TestDirectory_RemoveUserFromVendor(t *testing.T) {
	dir := newDirectory(t, "V1", "V2")
	ctx := context.Background()
	mustRegister(t, dir, domain.User{Email: "bob@y.com"})
	_ = dir.AddUserToVendor(ctx, "bob@y.com", "V1")
	_ = dir.AddUserToVendor(ctx, "bob@y.com", "V2")

	if err := dir.RemoveUserFromVendor(ctx, "bob@y.com", "V1"); err != nil {
		t.Fatalf("RemoveUserFromVendor failed: %v", err)
	}

	u, _, _ := dir.FindUser(ctx, "bob@y.com")
	if u.IsMemberOf("V1") || !u.IsMemberOf("V2") {
		t.Errorf("vendors = %v, want only V2", u.Vendors)
	}
}
